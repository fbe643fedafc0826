package kmeans3d_bench_test

import (
	"context"
	"testing"

	"github.com/hupe1980/kmeans3d/centroid"
	"github.com/hupe1980/kmeans3d/engine"
	"github.com/hupe1980/kmeans3d/point"
	"github.com/hupe1980/kmeans3d/testutil"
)

// fixture returns n points spread over k Gaussian blobs and k seeds taken
// from the first point of every blob.
func fixture(n, k int) ([]point.Point, []point.Point) {
	rng := testutil.NewRNG(42)
	centers := rng.UniformPoints(k, -100, 100)
	pts, _ := rng.GaussianBlobs(centers, n/k, 4)
	return pts, pts[:k]
}

func runOnce(b *testing.B, store point.Store, seeds []point.Point, cfg engine.Config) {
	b.Helper()
	state, err := centroid.New(seeds)
	if err != nil {
		b.Fatal(err)
	}
	d, err := engine.NewDriver(store, state, cfg)
	if err != nil {
		b.Fatal(err)
	}
	if _, err := d.Run(context.Background()); err != nil {
		b.Fatal(err)
	}
}
