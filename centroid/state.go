package centroid

import (
	"errors"

	"github.com/hupe1980/kmeans3d/point"
)

// ErrNoCentroids is returned when a State would have zero centroids.
var ErrNoCentroids = errors.New("at least one centroid is required")

// State owns the K current centroids and the membership counts of the last
// completed assignment phase.
//
// Centroids may be read concurrently by any number of goroutines as long as
// no Recompute is running; Recompute must be called by a single goroutine.
type State struct {
	centroids []point.Point
	counts    []int64
}

// New creates a State from initial centroid values. seeds is copied.
func New(seeds []point.Point) (*State, error) {
	if len(seeds) == 0 {
		return nil, ErrNoCentroids
	}
	c := make([]point.Point, len(seeds))
	copy(c, seeds)
	return &State{
		centroids: c,
		counts:    make([]int64, len(seeds)),
	}, nil
}

// K returns the number of clusters.
func (s *State) K() int { return len(s.centroids) }

// View returns the live centroid slice. Callers must not modify it and must
// not retain it across a Recompute.
func (s *State) View() []point.Point { return s.centroids }

// Centroids returns a copy of the current centroids.
func (s *State) Centroids() []point.Point {
	out := make([]point.Point, len(s.centroids))
	copy(out, s.centroids)
	return out
}

// Counts returns a copy of the membership counts of the last Recompute.
func (s *State) Counts() []int64 {
	out := make([]int64, len(s.counts))
	copy(out, s.counts)
	return out
}

// Recompute overwrites every centroid with sum/count from the iteration
// totals (sums holds 3*K values laid out x0,y0,z0,x1,...).
// Clusters with a zero count keep their previous centroid and are returned.
func (s *State) Recompute(sums []float64, counts []int64) (empty []int) {
	for j := range s.centroids {
		n := counts[j]
		s.counts[j] = n
		if n == 0 {
			empty = append(empty, j)
			continue
		}
		fn := float64(n)
		s.centroids[j] = point.Point{
			X: float32(sums[3*j] / fn),
			Y: float32(sums[3*j+1] / fn),
			Z: float32(sums[3*j+2] / fn),
		}
	}
	return empty
}
