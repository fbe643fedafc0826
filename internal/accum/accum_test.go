package accum

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/hupe1980/kmeans3d/point"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearest(t *testing.T) {
	centroids := []point.Point{
		{X: 10, Y: 6},
		{X: 10, Y: 3},
		{X: 10, Y: -3},
		{X: 10, Y: -6},
	}

	tests := []struct {
		name string
		pt   point.Point
		want int
	}{
		{"first", point.Point{X: 10, Y: 7}, 0},
		{"second", point.Point{X: 9, Y: 3.2}, 1},
		{"third", point.Point{X: 11, Y: -2.5}, 2},
		{"last", point.Point{X: 10, Y: -100}, 3},
		// Equidistant from centroids 1 and 2: the lower index wins.
		{"tie", point.Point{X: 10, Y: 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Nearest(tt.pt, centroids))
		})
	}
}

func TestNearest_TieAlwaysLowestIndex(t *testing.T) {
	same := point.Point{X: 1, Y: 1, Z: 1}
	centroids := []point.Point{{X: 5}, same, same, same}
	assert.Equal(t, 1, Nearest(point.Point{X: 1, Y: 1, Z: 1}, centroids))
}

func TestNearest_OrderIndependentForDistinctDistances(t *testing.T) {
	centroids := []point.Point{{X: 0}, {X: 4}, {X: 9}, {X: -7}}
	reversed := []point.Point{{X: -7}, {X: 9}, {X: 4}, {X: 0}}

	for _, x := range []float32{-10, -3, 1, 3, 5, 8, 20} {
		pt := point.Point{X: x}
		a := centroids[Nearest(pt, centroids)]
		b := reversed[Nearest(pt, reversed)]
		assert.Equal(t, a, b, "x=%v", x)
	}
}

func TestPartial_AddReset(t *testing.T) {
	p := NewPartial(2)
	p.Add(1, point.Point{X: 1, Y: 2, Z: 3})
	p.Add(1, point.Point{X: 3, Y: 2, Z: 1})
	p.Add(0, point.Point{X: -1})

	assert.Equal(t, 2, p.K())
	assert.Equal(t, int64(1), p.Count(0))
	assert.Equal(t, int64(2), p.Count(1))
	x, y, z := p.Sum(1)
	assert.Equal(t, []float64{4, 4, 4}, []float64{x, y, z})

	p.Reset()
	assert.Zero(t, p.Count(1))
	x, _, _ = p.Sum(0)
	assert.Zero(t, x)
}

func TestNewPartials_NoSharedCacheLines(t *testing.T) {
	parts := NewPartials(4, 3)
	require.Len(t, parts, 4)

	for _, p := range parts {
		assert.Zero(t, uintptr(unsafe.Pointer(&p.sums[0]))%uintptr(cacheLineBytes))
		assert.Zero(t, uintptr(unsafe.Pointer(&p.counts[0]))%uintptr(cacheLineBytes))
	}

	// Writes through one partial never leak into another.
	parts[0].Add(2, point.Point{X: 1})
	for _, p := range parts[1:] {
		x, _, _ := p.Sum(2)
		assert.Zero(t, x)
	}
}

func TestAssign_Labels(t *testing.T) {
	store := point.FromPoints(point.Interleaved, []point.Point{
		{X: 0}, {X: 1}, {X: 9}, {X: 10},
	})
	centroids := []point.Point{{X: 0}, {X: 10}}
	labels := make([]uint32, store.Len())

	p := NewPartial(2)
	Assign(p, store, 1, 4, centroids, labels)

	assert.Equal(t, []uint32{0, 0, 1, 1}, labels)
	assert.Equal(t, int64(1), p.Count(0))
	assert.Equal(t, int64(2), p.Count(1))
}

func TestMergers_Equivalent(t *testing.T) {
	const (
		k       = 5
		workers = 8
		perW    = 1000
	)

	mergers := map[string]Merger{
		"atomic": NewAtomic(k),
		"locked": NewLocked(k),
	}

	for name, m := range mergers {
		t.Run(name, func(t *testing.T) {
			parts := NewPartials(workers, k)
			for w, p := range parts {
				for i := 0; i < perW; i++ {
					p.Add((w+i)%k, point.Point{X: 1, Y: 2, Z: float32(w)})
				}
			}

			var wg sync.WaitGroup
			for _, p := range parts {
				wg.Add(1)
				go func(p *Partial) {
					defer wg.Done()
					m.Merge(p)
				}(p)
			}
			wg.Wait()

			sums := make([]float64, 3*k)
			counts := make([]int64, k)
			m.Totals(sums, counts)

			var total int64
			for j := 0; j < k; j++ {
				total += counts[j]
				assert.InDelta(t, float64(counts[j]), sums[3*j], 1e-9)
				assert.InDelta(t, 2*float64(counts[j]), sums[3*j+1], 1e-9)
			}
			assert.Equal(t, int64(workers*perW), total)

			m.Reset()
			m.Totals(sums, counts)
			for j := 0; j < k; j++ {
				assert.Zero(t, counts[j])
				assert.Zero(t, sums[3*j])
			}
		})
	}
}
