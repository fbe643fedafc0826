package kmeans3d

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with kmeans3d-specific context.
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

// NewJSONLogger creates a Logger that outputs JSON-formatted logs to w.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithRunID adds a run_id field to the logger.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// LogLoad logs the outcome of loading a dataset.
func (l *Logger) LogLoad(ctx context.Context, source string, points, skipped int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "dataset load failed",
			"source", source,
			"error", err,
		)
		return
	}
	if skipped > 0 {
		l.WarnContext(ctx, "dataset loaded with malformed records",
			"source", source,
			"points", points,
			"skipped", skipped,
			"elapsed", elapsed,
		)
		return
	}
	l.InfoContext(ctx, "dataset loaded",
		"source", source,
		"points", points,
		"elapsed", elapsed,
	)
}

// LogConfig logs the outcome of reading the centroid configuration.
func (l *Logger) LogConfig(ctx context.Context, source, section string, k int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "config load failed",
			"source", source,
			"section", section,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "config loaded",
		"source", source,
		"section", section,
		"clusters", k,
	)
}

// LogRun logs the outcome of a clustering run.
func (l *Logger) LogRun(ctx context.Context, iterations, workers int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "run failed",
			"iterations", iterations,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "run completed",
		"iterations", iterations,
		"workers", workers,
		"elapsed", elapsed,
	)
}
