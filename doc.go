// Package kmeans3d clusters 3-dimensional points with Lloyd's k-means algorithm.
//
// The iteration engine runs on a fixed pool of worker goroutines that
// cooperate on every iteration: each worker assigns a static slice of the
// points to their nearest centroid, the partial sums are merged (atomically or
// under a mutex), and one elected worker recomputes the centroids between two
// barrier waits. With one worker the same engine runs sequentially.
//
// # Quick Start
//
//	ctx := context.Background()
//	res, err := kmeans3d.Run(ctx,
//	    kmeans3d.Local("datasets/blobs.csv"),
//	    kmeans3d.Local("config_sets.ini"),
//	    kmeans3d.WithSection("4_cluster"),
//	    kmeans3d.WithIterations(10),
//	)
//	for j, c := range res.Centroids {
//	    fmt.Println(j, c, res.Counts[j])
//	}
//
// # Inputs
//
// The dataset holds one point per line, three numbers separated by any single
// character ("1.5,2,3" or "1.5;2;3"). Malformed lines are skipped and counted.
// Names ending in .zst or .lz4 are decompressed on the fly.
//
// The configuration is an INI document:
//
//	[4_cluster]
//	cluster_num = 4
//	centroid0 = 10,6,0
//	centroid1 = 10,3,0
//	centroid2 = 10,-3,0
//	centroid3 = 10,-6,0
//
// Both are read through blobstore.Store, so they may live on local disk, in
// memory, in Amazon S3 (blobstore/s3) or in MinIO (blobstore/minio):
//
//	st := s3store.NewStore(s3.NewFromConfig(cfg), "my-bucket", "kmeans/")
//	res, err := kmeans3d.Run(ctx, kmeans3d.Remote(st, "blobs.csv.zst"), kmeans3d.Local("config.ini"))
//
// # Variants
//
//	kmeans3d.WithWorkers(1)                                 // sequential
//	kmeans3d.WithMergeStrategy(engine.MergeLocked)          // mutex-guarded fold
//	kmeans3d.WithLayout(point.Interleaved)                  // one struct per point
//
// # Empty Clusters
//
// By default a cluster that receives no points keeps its previous centroid
// and is listed in the iteration report. WithEmptyPolicy(engine.EmptyFail)
// aborts the run with ErrEmptyCluster instead.
//
// # Observability
//
// WithLogger, WithMetricsCollector and WithReporter receive the run
// lifecycle. report.NewText prints progress in the classic format;
// report/ddb persists every run to DynamoDB.
package kmeans3d
