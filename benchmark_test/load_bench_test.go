package kmeans3d_bench_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/hupe1980/kmeans3d/blobstore"
	"github.com/hupe1980/kmeans3d/point"
	"github.com/hupe1980/kmeans3d/testutil"
)

// BenchmarkLoad measures parsing throughput for plain and compressed datasets.
func BenchmarkLoad(b *testing.B) {
	pts, _ := fixture(100_000, 4)
	var raw bytes.Buffer
	if err := testutil.WriteDataset(&raw, pts, ','); err != nil {
		b.Fatal(err)
	}

	ctx := context.Background()
	st := blobstore.NewMemoryStore()

	for _, name := range []string{"blobs.csv", "blobs.csv.zst", "blobs.csv.lz4"} {
		data, err := blobstore.Compress(raw.Bytes(), blobstore.CompressionFor(name))
		if err != nil {
			b.Fatal(err)
		}
		if err := st.Put(ctx, name, data); err != nil {
			b.Fatal(err)
		}

		b.Run(name, func(b *testing.B) {
			b.SetBytes(int64(raw.Len()))
			for i := 0; i < b.N; i++ {
				s, _, err := point.LoadFrom(ctx, st, name, point.WithSizeHint(len(pts)))
				if err != nil {
					b.Fatal(err)
				}
				if s.Len() != len(pts) {
					b.Fatalf("loaded %d points, want %d", s.Len(), len(pts))
				}
			}
		})
	}
}
