package accum

import (
	"unsafe"

	"github.com/hupe1980/kmeans3d/point"
	"golang.org/x/sys/cpu"
)

const cacheLineBytes = int(unsafe.Sizeof(cpu.CacheLinePad{}))

// Partial holds one worker's coordinate sums and counts for K clusters.
// It is not safe for concurrent use.
type Partial struct {
	sums   []float64 // len 3*K, laid out x0,y0,z0,x1,...
	counts []int64   // len K
}

// NewPartial creates a zeroed Partial for k clusters.
func NewPartial(k int) *Partial {
	return &Partial{
		sums:   make([]float64, 3*k),
		counts: make([]int64, k),
	}
}

// NewPartials creates n zeroed Partials for k clusters. Each Partial's
// storage starts on its own cache line, so concurrent workers do not contend
// on writes.
func NewPartials(n, k int) []*Partial {
	sumStride := roundUp(3*k*8, cacheLineBytes) / 8
	cntStride := roundUp(k*8, cacheLineBytes) / 8

	sums := alignedFloat64s(n * sumStride)
	counts := alignedInt64s(n * cntStride)

	parts := make([]*Partial, n)
	for w := 0; w < n; w++ {
		s := w * sumStride
		c := w * cntStride
		parts[w] = &Partial{
			sums:   sums[s : s+3*k : s+3*k],
			counts: counts[c : c+k : c+k],
		}
	}
	return parts
}

func roundUp(n, m int) int {
	return (n + m - 1) / m * m
}

// alignOffset returns how many 8-byte words to skip from p to reach the next
// cache-line boundary.
func alignOffset(p unsafe.Pointer) int {
	rem := int(uintptr(p) % uintptr(cacheLineBytes))
	if rem == 0 {
		return 0
	}
	return (cacheLineBytes - rem) / 8
}

func alignedFloat64s(n int) []float64 {
	buf := make([]float64, n+cacheLineBytes/8)
	off := alignOffset(unsafe.Pointer(&buf[0]))
	return buf[off : off+n : off+n]
}

func alignedInt64s(n int) []int64 {
	buf := make([]int64, n+cacheLineBytes/8)
	off := alignOffset(unsafe.Pointer(&buf[0]))
	return buf[off : off+n : off+n]
}

// K returns the number of clusters.
func (p *Partial) K() int { return len(p.counts) }

// Add accumulates pt into cluster j.
func (p *Partial) Add(j int, pt point.Point) {
	s := p.sums[3*j : 3*j+3 : 3*j+3]
	s[0] += float64(pt.X)
	s[1] += float64(pt.Y)
	s[2] += float64(pt.Z)
	p.counts[j]++
}

// Count returns the number of points accumulated into cluster j.
func (p *Partial) Count(j int) int64 { return p.counts[j] }

// Sum returns the coordinate sums of cluster j.
func (p *Partial) Sum(j int) (x, y, z float64) {
	return p.sums[3*j], p.sums[3*j+1], p.sums[3*j+2]
}

// Reset zeroes all sums and counts.
func (p *Partial) Reset() {
	clear(p.sums)
	clear(p.counts)
}

// Nearest returns the index of the centroid closest to pt by squared
// Euclidean distance. Ties resolve to the lowest index. centroids must not
// be empty.
func Nearest(pt point.Point, centroids []point.Point) int {
	best := 0
	bestDist := pt.SquaredDist(centroids[0])
	for j := 1; j < len(centroids); j++ {
		if d := pt.SquaredDist(centroids[j]); d < bestDist {
			best = j
			bestDist = d
		}
	}
	return best
}

// Assign runs the assignment step over store[lo:hi]: every point is added to
// its nearest centroid in p. When labels is non-nil, labels[i] receives the
// cluster of point i.
func Assign(p *Partial, store point.Store, lo, hi int, centroids []point.Point, labels []uint32) {
	for i := lo; i < hi; i++ {
		pt := store.At(i)
		j := Nearest(pt, centroids)
		p.Add(j, pt)
		if labels != nil {
			labels[i] = uint32(j)
		}
	}
}
