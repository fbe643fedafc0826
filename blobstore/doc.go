// Package blobstore provides the storage abstraction from which datasets and
// centroid configurations are read.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem
//   - MemoryStore: In-memory, for tests
//   - s3.Store: Amazon S3 with parallel ranged downloads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Compression
//
// OpenReader decompresses blobs by name suffix: ".zst" (zstd) and ".lz4" (lz4 frame).
//
//	rc, err := blobstore.OpenReader(ctx, store, "blobs_400k.csv.zst")
package blobstore
