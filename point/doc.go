// Package point provides immutable storage for the 3-dimensional input points.
//
// Two storage layouts are available:
//
//   - Columnar: one slice per coordinate (structure of arrays)
//   - Interleaved: one struct per point (array of structures)
//
// Both implement Store and are safe for concurrent reads once built.
//
//	store, err := point.Load(ctx, r, point.WithLayout(point.Columnar))
//	for i := 0; i < store.Len(); i++ {
//	    p := store.At(i)
//	}
package point
