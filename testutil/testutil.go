package testutil

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"sync"

	"github.com/hupe1980/kmeans3d/point"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// UniformPoints generates n points with every coordinate in [minVal, maxVal).
func (r *RNG) UniformPoints(n int, minVal, maxVal float32) []point.Point {
	r.mu.Lock()
	defer r.mu.Unlock()

	span := maxVal - minVal
	pts := make([]point.Point, n)
	for i := range pts {
		pts[i] = point.Point{
			X: minVal + r.rand.Float32()*span,
			Y: minVal + r.rand.Float32()*span,
			Z: minVal + r.rand.Float32()*span,
		}
	}
	return pts
}

// GaussianBlobs generates perCenter points around each center with the given
// standard deviation per axis. Points are interleaved round-robin across
// centers; labels[i] is the center index of point i.
func (r *RNG) GaussianBlobs(centers []point.Point, perCenter int, stddev float64) (pts []point.Point, labels []int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pts = make([]point.Point, 0, len(centers)*perCenter)
	labels = make([]int, 0, len(centers)*perCenter)
	for i := 0; i < perCenter; i++ {
		for c, ctr := range centers {
			pts = append(pts, point.Point{
				X: ctr.X + float32(r.rand.NormFloat64()*stddev),
				Y: ctr.Y + float32(r.rand.NormFloat64()*stddev),
				Z: ctr.Z + float32(r.rand.NormFloat64()*stddev),
			})
			labels = append(labels, c)
		}
	}
	return pts, labels
}

// ClusterMeans returns the per-label mean of pts, computed in float64.
func ClusterMeans(pts []point.Point, labels []int, k int) []point.Point {
	sums := make([][3]float64, k)
	counts := make([]int, k)
	for i, p := range pts {
		j := labels[i]
		sums[j][0] += float64(p.X)
		sums[j][1] += float64(p.Y)
		sums[j][2] += float64(p.Z)
		counts[j]++
	}
	means := make([]point.Point, k)
	for j := range means {
		if counts[j] == 0 {
			continue
		}
		n := float64(counts[j])
		means[j] = point.Point{X: float32(sums[j][0] / n), Y: float32(sums[j][1] / n), Z: float32(sums[j][2] / n)}
	}
	return means
}

// Lloyd is a straightforward sequential reference implementation used as
// ground truth. Empty clusters keep their previous centroid.
func Lloyd(pts []point.Point, seeds []point.Point, iterations int) (centroids []point.Point, counts []int) {
	centroids = append([]point.Point(nil), seeds...)
	k := len(seeds)
	labels := make([]int, len(pts))

	for it := 0; it < iterations; it++ {
		for i, p := range pts {
			best, bestDist := 0, p.SquaredDist(centroids[0])
			for j := 1; j < k; j++ {
				if d := p.SquaredDist(centroids[j]); d < bestDist {
					best, bestDist = j, d
				}
			}
			labels[i] = best
		}

		means := ClusterMeans(pts, labels, k)
		counts = make([]int, k)
		for _, l := range labels {
			counts[l]++
		}
		for j := range centroids {
			if counts[j] > 0 {
				centroids[j] = means[j]
			}
		}
	}
	return centroids, counts
}

// WriteDataset writes one "x<delim>y<delim>z" line per point.
func WriteDataset(w io.Writer, pts []point.Point, delim byte) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 64)
	for _, p := range pts {
		buf = buf[:0]
		buf = strconv.AppendFloat(buf, float64(p.X), 'g', -1, 32)
		buf = append(buf, delim)
		buf = strconv.AppendFloat(buf, float64(p.Y), 'g', -1, 32)
		buf = append(buf, delim)
		buf = strconv.AppendFloat(buf, float64(p.Z), 'g', -1, 32)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteConfig writes an INI section holding cluster_num and one centroidI
// entry per seed.
func WriteConfig(w io.Writer, section string, seeds []point.Point) error {
	if _, err := fmt.Fprintf(w, "[%s]\ncluster_num = %d\n", section, len(seeds)); err != nil {
		return err
	}
	for i, s := range seeds {
		if _, err := fmt.Fprintf(w, "centroid%d = %g,%g,%g\n", i, s.X, s.Y, s.Z); err != nil {
			return err
		}
	}
	return nil
}
