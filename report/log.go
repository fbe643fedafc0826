package report

import (
	"context"
	"log/slog"

	"github.com/hupe1980/kmeans3d/engine"
)

// Log writes structured progress records.
type Log struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLog creates a Log reporter emitting iteration records at level.
func NewLog(logger *slog.Logger, level slog.Level) *Log {
	return &Log{logger: logger, level: level}
}

// Begin implements Reporter.
func (l *Log) Begin(ctx context.Context, run Run) error {
	l.logger.LogAttrs(ctx, l.level, "run begin",
		slog.String("run_id", run.ID),
		slog.String("dataset", run.Dataset),
		slog.Int("points", run.Points),
		slog.Int("skipped", run.Skipped),
		slog.Int("clusters", len(run.Initial)),
	)
	return nil
}

// OnIteration implements engine.Observer.
func (l *Log) OnIteration(ctx context.Context, rep engine.IterationReport) {
	l.logger.LogAttrs(ctx, l.level, "iteration",
		slog.Int("iteration", rep.Iteration),
		slog.Any("counts", rep.Counts),
		slog.Any("empty", rep.Empty),
		slog.Duration("duration", rep.Duration),
	)
}

// Complete implements Reporter.
func (l *Log) Complete(ctx context.Context, run Run, res *engine.Result) error {
	l.logger.LogAttrs(ctx, l.level, "run complete",
		slog.String("run_id", run.ID),
		slog.Int("iterations", res.Iterations),
		slog.Int("workers", res.Workers),
		slog.String("merge", res.Merge.String()),
		slog.Duration("elapsed", res.Elapsed),
	)
	return nil
}
