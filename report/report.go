// Package report delivers run progress to people and systems.
package report

import (
	"context"
	"errors"

	"github.com/hupe1980/kmeans3d/engine"
	"github.com/hupe1980/kmeans3d/point"
)

// Run describes a clustering run before its first iteration.
type Run struct {
	ID      string
	Dataset string
	Points  int
	Skipped int
	Initial []point.Point
}

// Reporter receives the lifecycle of one run. OnIteration is called on the
// engine's serial worker and must not block for long.
type Reporter interface {
	engine.Observer
	Begin(ctx context.Context, run Run) error
	Complete(ctx context.Context, run Run, res *engine.Result) error
}

// Multi fans out to several reporters in order.
type Multi []Reporter

// Begin implements Reporter. Every reporter is called; errors are joined.
func (m Multi) Begin(ctx context.Context, run Run) error {
	var errs []error
	for _, r := range m {
		if err := r.Begin(ctx, run); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OnIteration implements engine.Observer.
func (m Multi) OnIteration(ctx context.Context, rep engine.IterationReport) {
	for _, r := range m {
		r.OnIteration(ctx, rep)
	}
}

// Complete implements Reporter. Every reporter is called; errors are joined.
func (m Multi) Complete(ctx context.Context, run Run, res *engine.Result) error {
	var errs []error
	for _, r := range m {
		if err := r.Complete(ctx, run, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop ignores everything.
type Nop struct{}

func (Nop) Begin(context.Context, Run) error                    { return nil }
func (Nop) OnIteration(context.Context, engine.IterationReport) {}
func (Nop) Complete(context.Context, Run, *engine.Result) error { return nil }
