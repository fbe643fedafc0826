package main

import (
	"bytes"
	"fmt"

	"github.com/hupe1980/kmeans3d"
	"github.com/hupe1980/kmeans3d/blobstore"
	"github.com/hupe1980/kmeans3d/point"
	"github.com/hupe1980/kmeans3d/testutil"
	"github.com/spf13/cobra"
)

var defaultCenters = []string{"10,6,0", "10,3,0", "10,-3,0", "10,-6,0"}

type generateFlags struct {
	out        string
	configOut  string
	section    string
	centers    []string
	clusters   int
	spread     float32
	perCluster int
	stddev     float64
	seed       int64
	delimiter  string
}

func newGenerateCmd(g *globalFlags) *cobra.Command {
	f := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic Gaussian blob dataset",
		Long: `Write a synthetic dataset of Gaussian blobs, one "x,y,z" point per line.

The output format follows the extension: .zst and .lz4 are compressed.
With --config-out a matching INI configuration is written whose initial
centroids are the first point of every blob.

Examples:
  kmeans3d generate --out blobs.csv --per-cluster 100000
  kmeans3d generate --out s3://data/blobs.csv.zst --clusters 8 --config-out s3://data/config.ini`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, g, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.out, "out", "", "dataset path or URI (required)")
	fl.StringVar(&f.configOut, "config-out", "", "write a configuration to this path or URI")
	fl.StringVar(&f.section, "section", kmeans3d.DefaultSection, "configuration section")
	fl.StringArrayVar(&f.centers, "center", defaultCenters, "blob center as x,y,z (repeatable)")
	fl.IntVar(&f.clusters, "clusters", 0, "use this many random centers instead of --center")
	fl.Float32Var(&f.spread, "spread", 20, "random centers are drawn from [-spread, spread)")
	fl.IntVar(&f.perCluster, "per-cluster", 1000, "points per blob")
	fl.Float64Var(&f.stddev, "stddev", 0.5, "per-axis standard deviation")
	fl.Int64Var(&f.seed, "seed", 1, "random seed")
	fl.StringVar(&f.delimiter, "delimiter", ",", "field delimiter (one character)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func (f *generateFlags) blobCenters(rng *testutil.RNG) ([]point.Point, error) {
	if f.clusters > 0 {
		return rng.UniformPoints(f.clusters, -f.spread, f.spread), nil
	}
	centers := make([]point.Point, 0, len(f.centers))
	for _, c := range f.centers {
		p, ok := point.ParseTriple(c)
		if !ok {
			return nil, fmt.Errorf("invalid --center %q", c)
		}
		centers = append(centers, p)
	}
	if len(centers) == 0 {
		return nil, fmt.Errorf("at least one center is required")
	}
	return centers, nil
}

func runGenerate(cmd *cobra.Command, g *globalFlags, f *generateFlags) error {
	ctx := cmd.Context()

	logger, err := g.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if len(f.delimiter) != 1 || f.delimiter[0] == ' ' {
		return fmt.Errorf("--delimiter must be a single non-space character")
	}
	if f.perCluster <= 0 {
		return fmt.Errorf("--per-cluster must be positive, got %d", f.perCluster)
	}

	rng := testutil.NewRNG(f.seed)
	centers, err := f.blobCenters(rng)
	if err != nil {
		return err
	}
	pts, _ := rng.GaussianBlobs(centers, f.perCluster, f.stddev)

	var buf bytes.Buffer
	if err := testutil.WriteDataset(&buf, pts, f.delimiter[0]); err != nil {
		return err
	}

	dst, err := resolveSource(ctx, f.out)
	if err != nil {
		return err
	}
	data, err := blobstore.Compress(buf.Bytes(), blobstore.CompressionFor(dst.Name))
	if err != nil {
		return err
	}
	if err := dst.Store.Put(ctx, dst.Name, data); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	logger.InfoContext(ctx, "dataset written", "out", dst.String(), "points", len(pts), "bytes", len(data))

	if f.configOut != "" {
		var cfg bytes.Buffer
		if err := testutil.WriteConfig(&cfg, f.section, pts[:len(centers)]); err != nil {
			return err
		}
		cdst, err := resolveSource(ctx, f.configOut)
		if err != nil {
			return err
		}
		if err := cdst.Store.Put(ctx, cdst.Name, cfg.Bytes()); err != nil {
			return fmt.Errorf("write %s: %w", cdst, err)
		}
		logger.InfoContext(ctx, "config written", "out", cdst.String(), "section", f.section, "clusters", len(centers))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d points in %d clusters to %s\n", len(pts), len(centers), dst)
	return nil
}
