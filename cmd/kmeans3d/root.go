package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/hupe1980/kmeans3d"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "kmeans3d",
		Short: "Parallel k-means clustering of 3-D points",
		Long: `kmeans3d partitions 3-D points into a fixed number of clusters using
Lloyd's algorithm on a pool of cooperating workers.

Datasets and configurations are addressed by path or URI:
  ./data/blobs.csv                     local file
  s3://bucket/key                      Amazon S3 (default AWS credential chain)
  minio://host:port/bucket/key         MinIO (MINIO_ACCESS_KEY, MINIO_SECRET_KEY)

Names ending in .zst or .lz4 are decompressed on the fly.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "log format (text, json)")

	cmd.AddCommand(newRunCmd(g))
	cmd.AddCommand(newGenerateCmd(g))
	return cmd
}

func (g *globalFlags) logger(w io.Writer) (*kmeans3d.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", g.logLevel)
	}
	switch strings.ToLower(g.logFormat) {
	case "text":
		return kmeans3d.NewTextLogger(w, level), nil
	case "json":
		return kmeans3d.NewJSONLogger(w, level), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q", g.logFormat)
	}
}
