package kmeans3d

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/kmeans3d/blobstore"
	"github.com/hupe1980/kmeans3d/centroid"
	"github.com/hupe1980/kmeans3d/engine"
	"github.com/hupe1980/kmeans3d/point"
	"github.com/hupe1980/kmeans3d/report"
	"github.com/hupe1980/kmeans3d/resource"
	"golang.org/x/sync/errgroup"
)

// Source names a blob in a store.
type Source struct {
	Store blobstore.Store
	Name  string
	// URI is used in reports and logs. If empty, Name is used.
	URI string
}

// Local returns a Source for a file on the local file system.
func Local(path string) Source {
	return Source{Store: blobstore.NewLocalStore(""), Name: path}
}

// Remote returns a Source for name in store.
func Remote(store blobstore.Store, name string) Source {
	return Source{Store: store, Name: name}
}

func (s Source) String() string {
	if s.URI != "" {
		return s.URI
	}
	return s.Name
}

// Result is the outcome of Run.
type Result struct {
	RunID   string
	Dataset point.Stats
	*engine.Result
}

// Run loads the dataset and the centroid configuration concurrently, then
// runs the configured number of Lloyd iterations.
//
// Errors match ErrIngest, ErrConfig, ErrEmptyCluster or ErrInvalidInput with
// errors.Is; the package-specific error types remain reachable via errors.As.
func Run(ctx context.Context, dataset, config Source, optFns ...Option) (*Result, error) {
	o := applyOptions(optFns)

	runID := o.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := o.logger.WithRunID(runID)

	var (
		store point.Store
		stats point.Stats
		state *centroid.State
		k     int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loadOpts := []point.LoadOption{point.WithLayout(o.layout)}
		if o.resources != nil {
			loadOpts = append(loadOpts, point.WithThrottle(o.resources))
		}

		start := time.Now()
		s, st, err := point.LoadFrom(gctx, dataset.Store, dataset.Name, loadOpts...)
		elapsed := time.Since(start)

		o.metricsCollector.RecordLoad(st.Points, st.Skipped, st.Bytes, elapsed, err)
		logger.LogLoad(gctx, dataset.String(), st.Points, st.Skipped, elapsed, err)
		if err != nil {
			return err
		}
		store, stats = s, st
		return nil
	})
	g.Go(func() error {
		var err error
		state, k, err = centroid.InitializeFrom(gctx, config.Store, config.Name, o.section)
		logger.LogConfig(gctx, config.String(), o.section, k, err)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, translateError(err)
	}

	mem := point.SizeBytes(store)
	if err := reserveMemory(ctx, o, mem); err != nil {
		return nil, fmt.Errorf("reserve %d bytes for points: %w", mem, err)
	}
	defer o.resources.ReleaseMemory(mem)

	run := report.Run{
		ID:      runID,
		Dataset: dataset.String(),
		Points:  stats.Points,
		Skipped: stats.Skipped,
		Initial: state.Centroids(),
	}

	obs := engine.ObserverFunc(func(ctx context.Context, rep engine.IterationReport) {
		o.metricsCollector.RecordIteration(rep.Duration, len(rep.Empty))
		o.reporter.OnIteration(ctx, rep)
	})

	driver, err := engine.NewDriver(store, state, o.engine,
		engine.WithLogger(logger.Logger),
		engine.WithObserver(obs),
		engine.WithResourceController(o.resources),
	)
	if err != nil {
		return nil, translateError(err)
	}

	if err := o.reporter.Begin(ctx, run); err != nil {
		return nil, fmt.Errorf("report run begin: %w", err)
	}

	start := time.Now()
	res, err := driver.Run(ctx)
	elapsed := time.Since(start)

	iterations := 0
	if res != nil {
		iterations = res.Iterations
	}
	o.metricsCollector.RecordRun(iterations, elapsed, err)
	logger.LogRun(ctx, iterations, driver.Workers(), elapsed, err)
	if err != nil {
		return nil, translateError(err)
	}

	if err := o.reporter.Complete(ctx, run, res); err != nil {
		return nil, fmt.Errorf("report run result: %w", err)
	}

	logger.Debug("clusters", "k", k, "counts", res.Counts)

	return &Result{
		RunID:   runID,
		Dataset: stats,
		Result:  res,
	}, nil
}

func reserveMemory(ctx context.Context, o options, bytes int64) error {
	if o.waitForMemory {
		return o.resources.AcquireMemory(ctx, bytes)
	}
	if !o.resources.TryAcquireMemory(bytes) {
		return resource.ErrMemoryLimit
	}
	return nil
}
