package accum

import (
	"math"
	"sync"
	"sync/atomic"
)

// Merger combines worker Partials into iteration totals.
// Merge is safe for concurrent use; Totals and Reset must only be called
// while no Merge is in flight.
type Merger interface {
	// Merge folds p into the shared totals.
	Merge(p *Partial)
	// Totals copies the accumulated sums (3*K) and counts (K) into dst slices.
	Totals(sums []float64, counts []int64)
	// Reset zeroes the shared totals.
	Reset()
}

// Atomic merges with one atomic add per scalar; no lock is taken.
type Atomic struct {
	sums   []atomic.Uint64 // float64 bit patterns
	counts []atomic.Int64
}

// NewAtomic creates an Atomic merger for k clusters.
func NewAtomic(k int) *Atomic {
	return &Atomic{
		sums:   make([]atomic.Uint64, 3*k),
		counts: make([]atomic.Int64, k),
	}
}

// Merge implements Merger.
func (a *Atomic) Merge(p *Partial) {
	for j := range a.counts {
		n := p.counts[j]
		if n == 0 {
			continue
		}
		addFloat64(&a.sums[3*j], p.sums[3*j])
		addFloat64(&a.sums[3*j+1], p.sums[3*j+1])
		addFloat64(&a.sums[3*j+2], p.sums[3*j+2])
		a.counts[j].Add(n)
	}
}

// Totals implements Merger.
func (a *Atomic) Totals(sums []float64, counts []int64) {
	for i := range a.sums {
		sums[i] = math.Float64frombits(a.sums[i].Load())
	}
	for j := range a.counts {
		counts[j] = a.counts[j].Load()
	}
}

// Reset implements Merger.
func (a *Atomic) Reset() {
	for i := range a.sums {
		a.sums[i].Store(0)
	}
	for j := range a.counts {
		a.counts[j].Store(0)
	}
}

func addFloat64(v *atomic.Uint64, delta float64) {
	for {
		old := v.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if v.CompareAndSwap(old, next) {
			return
		}
	}
}

// Locked merges a whole Partial under a single mutex acquisition.
type Locked struct {
	mu     sync.Mutex
	sums   []float64
	counts []int64
}

// NewLocked creates a Locked merger for k clusters.
func NewLocked(k int) *Locked {
	return &Locked{
		sums:   make([]float64, 3*k),
		counts: make([]int64, k),
	}
}

// Merge implements Merger.
func (l *Locked) Merge(p *Partial) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, s := range p.sums {
		l.sums[i] += s
	}
	for j, n := range p.counts {
		l.counts[j] += n
	}
}

// Totals implements Merger.
func (l *Locked) Totals(sums []float64, counts []int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	copy(sums, l.sums)
	copy(counts, l.counts)
}

// Reset implements Merger.
func (l *Locked) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	clear(l.sums)
	clear(l.counts)
}
