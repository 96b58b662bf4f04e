package quarry

import (
	"log/slog"

	"github.com/hupe1980/quarry/analysis"
	"github.com/hupe1980/quarry/match"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	analyzers        map[string]analysis.Analyzer
	forceScalar      bool
	specialize       bool
	inTermThreshold  int
	maxSearchers     int64
	searchersPerSec  float64
	sortMemoryLimit  int64
}

// Option configures Open.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &quarry.BasicMetricsCollector{}
//	ix, _ := quarry.Open(src, quarry.WithMetricsCollector(metrics))
//	// ... search ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := quarry.NewJSONLogger(slog.LevelDebug)
//	ix, _ := quarry.Open(src, quarry.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithAnalyzer sets the analyzer EncodeTerm and the term queries apply to
// text of field. It must match the analyzer the index was built with.
// Fields without an analyzer are encoded verbatim.
func WithAnalyzer(field string, a analysis.Analyzer) Option {
	return func(o *options) {
		if o.analyzers == nil {
			o.analyzers = make(map[string]analysis.Analyzer)
		}
		o.analyzers[field] = a
	}
}

// WithForceScalar disables the accelerated kernels.
func WithForceScalar() Option {
	return func(o *options) {
		o.forceScalar = true
	}
}

// WithoutSpecialization makes binary matches use the generic merge for every
// operand pair.
func WithoutSpecialization() Option {
	return func(o *options) {
		o.specialize = false
	}
}

// WithInTermThreshold sets the largest In list evaluated as a tree of OR
// matches. Longer lists are accumulated into a bitmap.
func WithInTermThreshold(n int) Option {
	return func(o *options) {
		o.inTermThreshold = n
	}
}

// WithMaxConcurrentSearchers bounds the number of open searchers.
// Searcher blocks until a slot frees up or its context ends.
func WithMaxConcurrentSearchers(n int64) Option {
	return func(o *options) {
		o.maxSearchers = n
	}
}

// WithSearcherRate limits how many searchers may be opened per second.
func WithSearcherRate(perSecond float64) Option {
	return func(o *options) {
		o.searchersPerSec = perSecond
	}
}

// WithSortMemoryLimit bounds the memory all sorting stages and multi-term
// merges of an index may hold at once. Queries exceeding it fail with
// ErrMemoryLimitExceeded.
func WithSortMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.sortMemoryLimit = bytes
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		specialize:       true,
		inTermThreshold:  match.DefaultInTermThreshold,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
