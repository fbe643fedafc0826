package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hupe1980/kmeans3d/centroid"
	"github.com/hupe1980/kmeans3d/internal/accum"
	"github.com/hupe1980/kmeans3d/internal/barrier"
	"github.com/hupe1980/kmeans3d/point"
	"github.com/hupe1980/kmeans3d/resource"
	"golang.org/x/sync/errgroup"
)

// Driver runs k-means iterations over a fixed point store.
//
// A Driver mutates the centroid.State it was created with. Run must not be
// called concurrently; a second Run continues from the current centroids.
type Driver struct {
	store    point.Store
	state    *centroid.State
	cfg      Config
	logger   *slog.Logger
	observer Observer
	rc       *resource.Controller

	phase atomic.Int32
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithObserver sets the observer that receives one report per iteration.
func WithObserver(o Observer) Option {
	return func(d *Driver) {
		if o != nil {
			d.observer = o
		}
	}
}

// WithResourceController reserves worker slots from rc for the duration of
// each run and caps the pool size at its capacity.
func WithResourceController(rc *resource.Controller) Option {
	return func(d *Driver) {
		d.rc = rc
	}
}

// NewDriver creates a Driver. It fails if the store is empty, if K exceeds
// the number of points, or if cfg is invalid.
func NewDriver(store point.Store, state *centroid.State, cfg Config, optFns ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if state == nil {
		return nil, centroid.ErrNoCentroids
	}
	n := store.Len()
	if n == 0 {
		return nil, ErrNoPoints
	}
	if k := state.K(); k > n {
		return nil, &ClusterCountError{K: k, Points: n}
	}

	d := &Driver{
		store:    store,
		state:    state,
		cfg:      cfg.withDefaults(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer: NoopObserver{},
	}
	for _, fn := range optFns {
		fn(d)
	}
	return d, nil
}

// Phase returns the phase of the current run, or PhaseIdle/PhaseDone
// outside of one.
func (d *Driver) Phase() Phase {
	return Phase(d.phase.Load())
}

// Workers returns the pool size a run will use.
func (d *Driver) Workers() int {
	w := d.cfg.Workers
	if n := d.store.Len(); w > n {
		w = n
	}
	if capacity := d.rc.MaxWorkers(); capacity > 0 && w > capacity {
		w = capacity
	}
	return max(w, 1)
}

// Run executes the configured number of iterations.
//
// Cancellation of ctx is observed between iterations: the iteration in
// flight completes, its report is emitted, and Run returns ctx.Err().
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	workers := d.Workers()
	if err := d.rc.AcquireWorkers(ctx, workers); err != nil {
		return nil, fmt.Errorf("acquire %d workers: %w", workers, err)
	}
	defer d.rc.ReleaseWorkers(workers)

	r := d.newRun(workers)

	d.logger.Debug("run started",
		"points", r.n,
		"clusters", d.state.K(),
		"workers", workers,
		"iterations", d.cfg.Iterations,
		"merge", d.cfg.Merge.String(),
		"layout", d.store.Layout().String(),
	)

	start := time.Now()
	r.iterStart = start
	d.phase.Store(int32(PhaseAssigning))

	if workers == 1 {
		r.work(ctx, 0)
	} else {
		var g errgroup.Group
		for w := 0; w < workers; w++ {
			g.Go(func() error {
				r.work(ctx, w)
				return nil
			})
		}
		_ = g.Wait()
	}
	d.phase.Store(int32(PhaseDone))

	if r.err != nil {
		d.logger.Warn("run aborted", "iteration", r.completed, "error", r.err)
		return nil, r.err
	}

	res := &Result{
		Centroids:  d.state.Centroids(),
		Counts:     d.state.Counts(),
		Iterations: r.completed,
		Workers:    workers,
		Merge:      d.cfg.Merge,
		Elapsed:    time.Since(start),
		Labels:     r.labels,
	}
	d.logger.Debug("run finished", "iterations", res.Iterations, "elapsed", res.Elapsed)
	return res, nil
}

// run is the per-Run shared state. Fields written by the serial worker
// (err, stop, completed, iterStart) are published to the others by the
// second barrier wait of each iteration.
type run struct {
	d        *Driver
	n        int
	ranges   []Range
	partials []*accum.Partial
	merger   accum.Merger
	barrier  *barrier.Barrier
	labels   []uint32

	sums   []float64
	counts []int64

	iterStart time.Time
	completed int
	stop      bool
	err       error
}

func (d *Driver) newRun(workers int) *run {
	n, k := d.store.Len(), d.state.K()

	var merger accum.Merger
	switch d.cfg.Merge {
	case MergeLocked:
		merger = accum.NewLocked(k)
	default:
		merger = accum.NewAtomic(k)
	}

	r := &run{
		d:        d,
		n:        n,
		ranges:   Partition(n, workers),
		partials: accum.NewPartials(workers, k),
		merger:   merger,
		barrier:  barrier.New(workers),
		sums:     make([]float64, 3*k),
		counts:   make([]int64, k),
	}
	if d.cfg.RecordLabels {
		r.labels = make([]uint32, n)
	}
	return r
}

func (r *run) work(ctx context.Context, w int) {
	d := r.d
	part := r.partials[w]
	rg := r.ranges[w]

	for it := 0; it < d.cfg.Iterations; it++ {
		part.Reset()
		accum.Assign(part, d.store, rg.Lo, rg.Hi, d.state.View(), r.labels)

		d.phase.CompareAndSwap(int32(PhaseAssigning), int32(PhaseReducing))
		r.merger.Merge(part)

		if r.barrier.Wait() {
			r.recompute(ctx, it)
		}
		r.barrier.Wait()

		if r.stop {
			return
		}
	}
}

// recompute runs on exactly one worker per iteration while all others are
// parked between the two barrier waits.
func (r *run) recompute(ctx context.Context, it int) {
	d := r.d
	d.phase.Store(int32(PhaseRecomputing))

	r.merger.Totals(r.sums, r.counts)
	r.merger.Reset()

	var total int64
	for _, c := range r.counts {
		total += c
	}
	if total != int64(r.n) {
		r.abort(fmt.Errorf("%w: iteration %d assigned %d of %d", ErrCountMismatch, it, total, r.n))
		return
	}

	empty := d.state.Recompute(r.sums, r.counts)
	r.completed = it + 1

	now := time.Now()
	report := IterationReport{
		Iteration: it,
		Centroids: d.state.Centroids(),
		Counts:    d.state.Counts(),
		Empty:     empty,
		Duration:  now.Sub(r.iterStart),
	}
	r.iterStart = now

	d.logger.Debug("iteration complete", "iteration", it, "duration", report.Duration)
	if len(empty) > 0 {
		d.logger.Warn("empty clusters", "iteration", it, "clusters", empty, "policy", d.cfg.Empty.String())
	}
	d.observer.OnIteration(ctx, report)

	if len(empty) > 0 && d.cfg.Empty == EmptyFail {
		r.abort(&EmptyClusterError{Iteration: it, Clusters: empty})
		return
	}
	if err := ctx.Err(); err != nil && r.completed < d.cfg.Iterations {
		r.abort(err)
		return
	}

	d.phase.Store(int32(PhaseAssigning))
}

func (r *run) abort(err error) {
	r.err = err
	r.stop = true
}
