package kmeans3d

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kmeans3d/centroid"
	"github.com/hupe1980/kmeans3d/engine"
	"github.com/hupe1980/kmeans3d/point"
)

var (
	// ErrIngest is returned when the dataset cannot be opened or read.
	ErrIngest = errors.New("dataset ingest failed")

	// ErrConfig is returned when the centroid configuration is unusable.
	ErrConfig = errors.New("invalid configuration")

	// ErrEmptyCluster is returned under the fail policy when a cluster receives no points.
	ErrEmptyCluster = errors.New("empty cluster")

	// ErrInvalidInput is returned when the dataset and configuration do not fit
	// together, e.g. more clusters than points.
	ErrInvalidInput = errors.New("invalid input")
)

// ErrClusterCount indicates that K exceeds the number of points.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrClusterCount struct {
	K      int
	Points int
	cause  error
}

func (e *ErrClusterCount) Error() string {
	return fmt.Sprintf("cluster count %d exceeds point count %d", e.K, e.Points)
}

func (e *ErrClusterCount) Unwrap() []error { return []error{ErrInvalidInput, e.cause} }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ie *point.IngestError
	if errors.As(err, &ie) {
		return fmt.Errorf("%w: %w", ErrIngest, err)
	}
	var ce *centroid.ConfigError
	if errors.As(err, &ce) {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if errors.Is(err, engine.ErrInvalidConfig) {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	var ece *engine.EmptyClusterError
	if errors.As(err, &ece) {
		return fmt.Errorf("%w: %w", ErrEmptyCluster, err)
	}

	var cce *engine.ClusterCountError
	if errors.As(err, &cce) {
		return &ErrClusterCount{K: cce.K, Points: cce.Points, cause: err}
	}
	if errors.Is(err, engine.ErrNoPoints) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return err
}
