package kmeans3d

import (
	"github.com/hupe1980/kmeans3d/engine"
	"github.com/hupe1980/kmeans3d/point"
	"github.com/hupe1980/kmeans3d/report"
	"github.com/hupe1980/kmeans3d/resource"
)

// DefaultSection is the configuration section read when none is given.
const DefaultSection = "4_cluster"

type options struct {
	engine           engine.Config
	layout           point.Layout
	section          string
	runID            string
	logger           *Logger
	metricsCollector MetricsCollector
	reporter         report.Reporter
	resources        *resource.Controller
	waitForMemory    bool
}

func defaultOptions() options {
	return options{
		engine:           engine.DefaultConfig(),
		layout:           point.Columnar,
		section:          DefaultSection,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		reporter:         report.Nop{},
	}
}

func applyOptions(optFns []Option) options {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// Option configures Run.
type Option func(*options)

// WithWorkers sets the worker pool size. Zero uses runtime.GOMAXPROCS(0).
// One worker runs the sequential variant.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.engine.Workers = n
	}
}

// WithIterations sets the fixed iteration count. Values below one make Run
// fail with ErrConfig.
func WithIterations(n int) Option {
	return func(o *options) {
		o.engine.Iterations = n
	}
}

// WithMergeStrategy selects how worker partials are combined.
func WithMergeStrategy(m engine.MergeStrategy) Option {
	return func(o *options) {
		o.engine.Merge = m
	}
}

// WithEmptyPolicy selects what happens when a cluster receives no points.
func WithEmptyPolicy(p engine.EmptyPolicy) Option {
	return func(o *options) {
		o.engine.Empty = p
	}
}

// WithLayout selects the in-memory point layout.
func WithLayout(l point.Layout) Option {
	return func(o *options) {
		o.layout = l
	}
}

// WithSection selects the configuration section holding cluster_num and the
// initial centroids.
func WithSection(section string) Option {
	return func(o *options) {
		o.section = section
	}
}

// WithLabels records the final cluster of every point in Result.Labels.
func WithLabels() Option {
	return func(o *options) {
		o.engine.RecordLabels = true
	}
}

// WithRunID sets the run identifier. By default a random UUID is used.
func WithRunID(id string) Option {
	return func(o *options) {
		o.runID = id
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example:
//
//	logger := kmeans3d.NewJSONLogger(os.Stderr, slog.LevelDebug)
//	res, err := kmeans3d.Run(ctx, dataset, config, kmeans3d.WithLogger(logger))
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &kmeans3d.BasicMetricsCollector{}
//	res, err := kmeans3d.Run(ctx, dataset, config, kmeans3d.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithReporter receives the run lifecycle (initial centroids, iterations, result).
func WithReporter(r report.Reporter) Option {
	return func(o *options) {
		if r == nil {
			r = report.Nop{}
		}
		o.reporter = r
	}
}

// WithResourceController shares worker, memory and ingest limits across runs.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithMemoryWait makes Run block until the resource controller can reserve
// memory for the points instead of failing with ErrMemoryLimit.
func WithMemoryWait() Option {
	return func(o *options) {
		o.waitForMemory = true
	}
}
