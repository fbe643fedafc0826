package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/kmeans3d"
	miniostore "github.com/hupe1980/kmeans3d/blobstore/minio"
	s3store "github.com/hupe1980/kmeans3d/blobstore/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type location struct {
	scheme string // "", "s3" or "minio"
	host   string // minio endpoint
	bucket string
	key    string
}

// parseLocation splits s3://bucket/key and minio://host:port/bucket/key.
// Anything without a known scheme is a local path.
func parseLocation(uri string) (location, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return location{key: uri}, nil
	}

	var loc location
	switch scheme {
	case "s3":
		loc.scheme = scheme
		loc.bucket, loc.key, _ = strings.Cut(rest, "/")
	case "minio":
		loc.scheme = scheme
		var path string
		loc.host, path, _ = strings.Cut(rest, "/")
		loc.bucket, loc.key, _ = strings.Cut(path, "/")
		if loc.host == "" {
			return location{}, fmt.Errorf("%s: missing endpoint", uri)
		}
	default:
		return location{}, fmt.Errorf("%s: unsupported scheme %q", uri, scheme)
	}
	if loc.bucket == "" || loc.key == "" {
		return location{}, fmt.Errorf("%s: expected %s://.../bucket/key", uri, scheme)
	}
	return loc, nil
}

func resolveSource(ctx context.Context, uri string) (kmeans3d.Source, error) {
	loc, err := parseLocation(uri)
	if err != nil {
		return kmeans3d.Source{}, err
	}

	switch loc.scheme {
	case "s3":
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return kmeans3d.Source{}, fmt.Errorf("load AWS config: %w", err)
		}
		st := s3store.NewStore(s3.NewFromConfig(cfg), loc.bucket, "")
		return kmeans3d.Source{Store: st, Name: loc.key, URI: uri}, nil
	case "minio":
		client, err := minio.New(loc.host, &minio.Options{
			Creds:  credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
			Secure: os.Getenv("MINIO_SECURE") == "true",
		})
		if err != nil {
			return kmeans3d.Source{}, fmt.Errorf("create MinIO client: %w", err)
		}
		st := miniostore.NewStore(client, loc.bucket, "")
		return kmeans3d.Source{Store: st, Name: loc.key, URI: uri}, nil
	default:
		src := kmeans3d.Local(loc.key)
		src.URI = uri
		return src, nil
	}
}
