package quarry

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with quarry-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithSearcher adds the searcher id to the logger.
func (l *Logger) WithSearcher(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("searcher", id),
	}
}

// WithField adds a field name to the logger.
func (l *Logger) WithField(field string) *Logger {
	return &Logger{
		Logger: l.Logger.With("field", field),
	}
}

// LogSearcherOpen logs the admission of a searcher.
func (l *Logger) LogSearcherOpen(ctx context.Context, entries int64, accelerated bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open searcher failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "searcher opened",
			"entries", entries,
			"accelerated", accelerated,
		)
	}
}

// LogSearcherClose logs the release of a searcher.
func (l *Logger) LogSearcherClose(ctx context.Context, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close searcher failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "searcher closed")
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, limit, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"limit", limit,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"limit", limit,
			"results", resultsFound,
		)
	}
}

// LogPlan logs the rendered query tree at debug level.
func (l *Logger) LogPlan(ctx context.Context, plan string) {
	if !l.Enabled(ctx, slog.LevelDebug) {
		return
	}
	l.DebugContext(ctx, "query plan",
		"plan", plan,
	)
}
