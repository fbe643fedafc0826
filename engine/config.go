package engine

import (
	"fmt"
	"runtime"
	"strings"
)

// MergeStrategy selects how worker partials are folded into the shared accumulator.
type MergeStrategy int

const (
	// MergeAtomic adds every scalar with an atomic operation. No lock is taken.
	MergeAtomic MergeStrategy = iota
	// MergeLocked folds a whole partial under one mutex acquisition.
	MergeLocked
)

func (m MergeStrategy) String() string {
	switch m {
	case MergeAtomic:
		return "atomic"
	case MergeLocked:
		return "locked"
	default:
		return fmt.Sprintf("MergeStrategy(%d)", int(m))
	}
}

// ParseMergeStrategy parses "atomic" or "locked".
func ParseMergeStrategy(s string) (MergeStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "atomic", "":
		return MergeAtomic, nil
	case "locked", "mutex":
		return MergeLocked, nil
	default:
		return 0, fmt.Errorf("unknown merge strategy %q", s)
	}
}

// EmptyPolicy decides what happens when a cluster receives no points.
type EmptyPolicy int

const (
	// EmptyFreeze keeps the previous centroid of an empty cluster.
	EmptyFreeze EmptyPolicy = iota
	// EmptyFail aborts the run with an *EmptyClusterError.
	EmptyFail
)

func (p EmptyPolicy) String() string {
	switch p {
	case EmptyFreeze:
		return "freeze"
	case EmptyFail:
		return "fail"
	default:
		return fmt.Sprintf("EmptyPolicy(%d)", int(p))
	}
}

// ParseEmptyPolicy parses "freeze" or "fail".
func ParseEmptyPolicy(s string) (EmptyPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "freeze", "":
		return EmptyFreeze, nil
	case "fail":
		return EmptyFail, nil
	default:
		return 0, fmt.Errorf("unknown empty cluster policy %q", s)
	}
}

// DefaultIterations is the iteration count of DefaultConfig.
const DefaultIterations = 10

// Config controls a run.
type Config struct {
	// Workers is the size of the worker pool. Zero means runtime.GOMAXPROCS(0).
	// The effective count is clamped to the number of points.
	Workers int

	// Iterations is the fixed number of Lloyd iterations. It must be at least one.
	Iterations int

	Merge MergeStrategy
	Empty EmptyPolicy

	// RecordLabels keeps the final cluster of every point in Result.Labels.
	RecordLabels bool
}

// DefaultConfig returns the default run configuration.
func DefaultConfig() Config {
	return Config{
		Workers:    runtime.GOMAXPROCS(0),
		Iterations: DefaultIterations,
		Merge:      MergeAtomic,
		Empty:      EmptyFreeze,
	}
}

// Validate reports invalid settings.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidConfig, c.Iterations)
	}
	if c.Merge != MergeAtomic && c.Merge != MergeLocked {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, c.Merge)
	}
	if c.Empty != EmptyFreeze && c.Empty != EmptyFail {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, c.Empty)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return c
}
