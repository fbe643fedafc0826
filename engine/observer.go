package engine

import "context"

// Observer receives iteration reports. OnIteration is called from the
// elected serial worker while every other worker waits, so it should return
// quickly.
type Observer interface {
	OnIteration(ctx context.Context, report IterationReport)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, report IterationReport)

// OnIteration implements Observer.
func (f ObserverFunc) OnIteration(ctx context.Context, report IterationReport) {
	f(ctx, report)
}

// NoopObserver discards all reports.
type NoopObserver struct{}

func (NoopObserver) OnIteration(context.Context, IterationReport) {}
