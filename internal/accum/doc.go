// Package accum implements nearest-centroid assignment and the per-iteration
// reduction of coordinate sums and membership counts.
//
// Each worker owns a Partial. After its assignment pass it folds the Partial
// into a shared Merger, which is either lock-free (Atomic) or mutex-guarded
// (Locked). Both yield the same totals up to floating-point summation order.
package accum
