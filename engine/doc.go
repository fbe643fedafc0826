// Package engine runs Lloyd's k-means iterations over a point.Store.
//
// A Driver owns one run: a fixed pool of workers created up front, a static
// contiguous partition of the points, one cache-line aligned partial
// accumulator per worker, and a shared accumulator (the Merger).
//
// # Iteration Protocol
//
// Every iteration moves through the same phases:
//
//   - Assigning: each worker finds the nearest centroid for each point of its
//     slice and accumulates coordinates and counts locally.
//   - Reducing: each worker folds its partial into the shared accumulator
//     (MergeAtomic or MergeLocked) and arrives at the barrier.
//   - Recomputing: the last worker to arrive recomputes the centroids, resets
//     the shared accumulator, emits the IterationReport and decides whether
//     the run must stop.
//
// A second barrier wait publishes the new centroids (or the stop decision) to
// every worker before the next Assigning phase. Workers never block anywhere
// else.
//
// With a single worker the same code path runs with a trivial barrier, so the
// sequential and parallel variants differ only in summation order.
package engine
