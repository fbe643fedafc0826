package engine

import (
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/kmeans3d/point"
)

// Phase is the state of a running iteration.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseAssigning
	PhaseReducing
	PhaseRecomputing
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAssigning:
		return "assigning"
	case PhaseReducing:
		return "reducing"
	case PhaseRecomputing:
		return "recomputing"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// IterationReport describes one completed iteration.
type IterationReport struct {
	// Iteration is zero-based.
	Iteration int
	Centroids []point.Point
	Counts    []int64
	// Empty lists clusters that received no points. Their centroids were not moved.
	Empty    []int
	Duration time.Duration
}

// Result is the outcome of a run.
type Result struct {
	Centroids  []point.Point
	Counts     []int64
	Iterations int
	Workers    int
	Merge      MergeStrategy
	Elapsed    time.Duration

	// Labels holds the cluster of every point after the last assignment.
	// It is nil unless Config.RecordLabels is set.
	Labels []uint32
}

// Members returns one bitmap of point indexes per cluster, built from
// Labels. It returns nil when labels were not recorded.
func (r *Result) Members() []*roaring.Bitmap {
	if r.Labels == nil {
		return nil
	}
	members := make([]*roaring.Bitmap, len(r.Centroids))
	for j := range members {
		members[j] = roaring.New()
	}
	for i, j := range r.Labels {
		members[j].Add(uint32(i))
	}
	for _, bm := range members {
		bm.RunOptimize()
	}
	return members
}
