package quarry

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems. The
// prommetrics package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordSearcherOpen is called after each searcher admission.
	// duration includes time spent waiting for a slot, err is nil if
	// successful.
	RecordSearcherOpen(duration time.Duration, err error)

	// RecordSearcherRejected is called when a searcher could not be admitted
	// before its context ended.
	RecordSearcherRejected()

	// RecordSearch is called after each search operation.
	// results is the number of results returned, duration is the time taken,
	// err is nil if successful.
	RecordSearch(results int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSearcherOpen(time.Duration, error) {}
func (NoopMetricsCollector) RecordSearcherRejected()                 {}
func (NoopMetricsCollector) RecordSearch(int, time.Duration, error)  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SearcherOpenCount  atomic.Int64
	SearcherOpenErrors atomic.Int64
	SearcherRejected   atomic.Int64
	SearcherWaitNanos  atomic.Int64
	SearchCount        atomic.Int64
	SearchErrors       atomic.Int64
	SearchResults      atomic.Int64
	SearchTotalNanos   atomic.Int64
}

// RecordSearcherOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearcherOpen(duration time.Duration, err error) {
	b.SearcherOpenCount.Add(1)
	b.SearcherWaitNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearcherOpenErrors.Add(1)
	}
}

// RecordSearcherRejected implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearcherRejected() {
	b.SearcherRejected.Add(1)
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(results int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	b.SearchResults.Add(int64(results))
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SearcherOpenCount:  b.SearcherOpenCount.Load(),
		SearcherOpenErrors: b.SearcherOpenErrors.Load(),
		SearcherRejected:   b.SearcherRejected.Load(),
		SearchCount:        b.SearchCount.Load(),
		SearchErrors:       b.SearchErrors.Load(),
		SearchResults:      b.SearchResults.Load(),
		SearchAvgNanos:     b.getAvgSearchNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SearcherOpenCount  int64
	SearcherOpenErrors int64
	SearcherRejected   int64
	SearchCount        int64
	SearchErrors       int64
	SearchResults      int64
	SearchAvgNanos     int64
}
