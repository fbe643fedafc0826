// Package s3 provides an S3 implementation of the blobstore.Store interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	client := s3.NewFromConfig(cfg)
//	store := s3store.NewStore(client, "my-bucket", "datasets/")
//	points, _, err := point.LoadFrom(ctx, store, "blobs_400k.csv.zst")
//
// Full reads of objects larger than the download threshold are fetched with
// concurrent ranged GETs (feature/s3/manager).
package s3
