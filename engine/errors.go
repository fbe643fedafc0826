package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPoints is returned when the point store is empty.
	ErrNoPoints = errors.New("point store is empty")

	// ErrInvalidConfig is returned for a Config that fails validation.
	ErrInvalidConfig = errors.New("invalid engine config")

	// ErrCountMismatch is returned when an assignment phase does not account
	// for every point exactly once.
	ErrCountMismatch = errors.New("assigned point count does not match store size")
)

// ClusterCountError is returned when K exceeds the number of points.
type ClusterCountError struct {
	K      int
	Points int
}

func (e *ClusterCountError) Error() string {
	return fmt.Sprintf("cluster count %d exceeds point count %d", e.K, e.Points)
}

// EmptyClusterError is returned under EmptyFail when an iteration leaves one
// or more clusters without points.
type EmptyClusterError struct {
	Iteration int
	Clusters  []int
}

func (e *EmptyClusterError) Error() string {
	return fmt.Sprintf("iteration %d: clusters %v received no points", e.Iteration, e.Clusters)
}
