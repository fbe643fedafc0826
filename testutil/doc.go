// Package testutil provides testing utilities for kmeans3d.
//
// It is used by tests and by the generate command of the CLI.
// It provides helpers for generating random points, a sequential
// reference Lloyd implementation, and writers for datasets and configs.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.UniformPoints(1000, -10, 10)
//	pts, labels := rng.GaussianBlobs(centers, 500, 0.1)
//
// # Ground Truth
//
//	centroids, counts := testutil.Lloyd(pts, seeds, 10)
package testutil
