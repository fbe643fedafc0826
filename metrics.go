package kmeans3d

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    iterationHistogram prometheus.Histogram
//	    emptyClusters      prometheus.Counter
//	}
//
//	func (p *PrometheusCollector) RecordIteration(duration time.Duration, empty int) {
//	    p.iterationHistogram.Observe(duration.Seconds())
//	    p.emptyClusters.Add(float64(empty))
//	}
type MetricsCollector interface {
	// RecordLoad is called after the dataset was read.
	// points and skipped count accepted and malformed records.
	RecordLoad(points, skipped int, bytes int64, duration time.Duration, err error)

	// RecordIteration is called once per completed iteration.
	// empty is the number of clusters that received no points.
	RecordIteration(duration time.Duration, empty int)

	// RecordRun is called once per run, after the last iteration or on failure.
	RecordRun(iterations int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int, int, int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordIteration(time.Duration, int)               {}
func (NoopMetricsCollector) RecordRun(int, time.Duration, error)              {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount         atomic.Int64
	LoadErrors        atomic.Int64
	PointsLoaded      atomic.Int64
	RecordsSkipped    atomic.Int64
	BytesLoaded       atomic.Int64
	IterationCount    atomic.Int64
	IterationNanos    atomic.Int64
	EmptyClusterCount atomic.Int64
	RunCount          atomic.Int64
	RunErrors         atomic.Int64
	RunTotalNanos     atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(points, skipped int, bytes int64, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.PointsLoaded.Add(int64(points))
	b.RecordsSkipped.Add(int64(skipped))
	b.BytesLoaded.Add(bytes)
}

// RecordIteration implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIteration(duration time.Duration, empty int) {
	b.IterationCount.Add(1)
	b.IterationNanos.Add(duration.Nanoseconds())
	b.EmptyClusterCount.Add(int64(empty))
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(iterations int, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:         b.LoadCount.Load(),
		LoadErrors:        b.LoadErrors.Load(),
		PointsLoaded:      b.PointsLoaded.Load(),
		RecordsSkipped:    b.RecordsSkipped.Load(),
		BytesLoaded:       b.BytesLoaded.Load(),
		IterationCount:    b.IterationCount.Load(),
		IterationAvgNanos: b.getAvgIterationNanos(),
		EmptyClusterCount: b.EmptyClusterCount.Load(),
		RunCount:          b.RunCount.Load(),
		RunErrors:         b.RunErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgIterationNanos() int64 {
	count := b.IterationCount.Load()
	if count == 0 {
		return 0
	}
	return b.IterationNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount         int64
	LoadErrors        int64
	PointsLoaded      int64
	RecordsSkipped    int64
	BytesLoaded       int64
	IterationCount    int64
	IterationAvgNanos int64
	EmptyClusterCount int64
	RunCount          int64
	RunErrors         int64
}
