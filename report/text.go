package report

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/hupe1980/kmeans3d/engine"
	"github.com/hupe1980/kmeans3d/point"
)

// Text prints human-readable progress:
//
//	Dataset loaded from data.csv
//	(10, 6, 0)
//	...
//
//	Iteration 1:
//
//	Cluster1 size: 500
//	...
//
//	(10.01, 5.99, 0.003)
//	...
//	Duration: 12 ms
type Text struct {
	mu  sync.Mutex
	w   *bufio.Writer
	err error
}

// NewText creates a Text reporter writing to w.
func NewText(w io.Writer) *Text {
	return &Text{w: bufio.NewWriter(w)}
}

// Begin implements Reporter.
func (t *Text) Begin(_ context.Context, run Run) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.printf("Dataset loaded from %s\n", run.Dataset)
	if run.Skipped > 0 {
		t.printf("Skipped %d malformed records\n", run.Skipped)
	}
	t.centroids(run.Initial)
	return t.flush()
}

// OnIteration implements engine.Observer. Write errors are reported by Complete.
func (t *Text) OnIteration(_ context.Context, rep engine.IterationReport) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.printf("\nIteration %d:\n\n", rep.Iteration+1)
	for j, n := range rep.Counts {
		t.printf("Cluster%d size: %d\n", j+1, n)
	}
	t.printf("\n")
	t.centroids(rep.Centroids)
	_ = t.flush()
}

// Complete implements Reporter.
func (t *Text) Complete(_ context.Context, _ Run, res *engine.Result) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.printf("Duration: %d ms\n", res.Elapsed.Milliseconds())
	return t.flush()
}

func (t *Text) centroids(cs []point.Point) {
	for _, c := range cs {
		t.printf("%s\n", c)
	}
}

func (t *Text) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

func (t *Text) flush() error {
	if t.err == nil {
		t.err = t.w.Flush()
	}
	return t.err
}
