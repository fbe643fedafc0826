package main

import (
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/hupe1980/kmeans3d"
	"github.com/hupe1980/kmeans3d/engine"
	"github.com/hupe1980/kmeans3d/point"
	"github.com/hupe1980/kmeans3d/report"
	"github.com/hupe1980/kmeans3d/report/ddb"
	"github.com/hupe1980/kmeans3d/resource"
	"github.com/spf13/cobra"
)

type runFlags struct {
	dataset    string
	config     string
	section    string
	iterations int
	workers    int
	merge      string
	layout     string
	empty      string
	labels     bool
	ddbTable   string
	ioLimit    int64
	memLimit   int64
	quiet      bool
}

func newRunCmd(g *globalFlags) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Cluster a dataset",
		Long: `Cluster a dataset with a fixed number of Lloyd iterations.

Examples:
  kmeans3d run --dataset blobs.csv --config config_sets.ini
  kmeans3d run --dataset s3://data/blobs.csv.zst --config config.ini --section 8_cluster --workers 16
  kmeans3d run --dataset blobs.csv --config config.ini --workers 1 --layout interleaved`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, g, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.dataset, "dataset", "", "dataset path or URI (required)")
	fl.StringVar(&f.config, "config", "", "INI configuration path or URI (required)")
	fl.StringVar(&f.section, "section", kmeans3d.DefaultSection, "configuration section")
	fl.IntVar(&f.iterations, "iterations", engine.DefaultIterations, "number of iterations")
	fl.IntVar(&f.workers, "workers", 0, "worker count (0 = GOMAXPROCS, 1 = sequential)")
	fl.StringVar(&f.merge, "merge", "atomic", "merge strategy (atomic, locked)")
	fl.StringVar(&f.layout, "layout", "columnar", "point layout (columnar, interleaved)")
	fl.StringVar(&f.empty, "empty", "freeze", "empty cluster policy (freeze, fail)")
	fl.BoolVar(&f.labels, "labels", false, "record per-point labels and print cluster membership summaries")
	fl.StringVar(&f.ddbTable, "ddb-table", "", "DynamoDB table to store the run in")
	fl.Int64Var(&f.ioLimit, "io-limit", 0, "dataset read limit in bytes per second (0 = unlimited)")
	fl.Int64Var(&f.memLimit, "memory-limit", 0, "point memory limit in bytes (0 = unlimited)")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "suppress progress output")
	_ = cmd.MarkFlagRequired("dataset")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func (f *runFlags) options() ([]kmeans3d.Option, error) {
	merge, err := engine.ParseMergeStrategy(f.merge)
	if err != nil {
		return nil, err
	}
	layout, err := point.ParseLayout(f.layout)
	if err != nil {
		return nil, err
	}
	empty, err := engine.ParseEmptyPolicy(f.empty)
	if err != nil {
		return nil, err
	}
	if f.iterations <= 0 {
		return nil, fmt.Errorf("--iterations must be positive, got %d", f.iterations)
	}
	if f.workers < 0 {
		return nil, fmt.Errorf("--workers must not be negative, got %d", f.workers)
	}

	opts := []kmeans3d.Option{
		kmeans3d.WithSection(f.section),
		kmeans3d.WithIterations(f.iterations),
		kmeans3d.WithWorkers(f.workers),
		kmeans3d.WithMergeStrategy(merge),
		kmeans3d.WithLayout(layout),
		kmeans3d.WithEmptyPolicy(empty),
	}
	if f.labels {
		opts = append(opts, kmeans3d.WithLabels())
	}
	if rc := f.controller(); rc != nil {
		opts = append(opts, kmeans3d.WithResourceController(rc))
	}
	return opts, nil
}

// controller returns the resource controller for --io-limit and
// --memory-limit, or nil if neither is set. Its worker capacity follows
// --workers so the limits never shrink the requested pool.
func (f *runFlags) controller() *resource.Controller {
	if f.ioLimit <= 0 && f.memLimit <= 0 {
		return nil
	}
	return resource.NewController(resource.Config{
		MaxWorkers:         int64(f.workers),
		MemoryLimitBytes:   f.memLimit,
		IOLimitBytesPerSec: f.ioLimit,
	})
}

func runRun(cmd *cobra.Command, g *globalFlags, f *runFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	opts, err := f.options()
	if err != nil {
		return err
	}

	logger, err := g.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	opts = append(opts, kmeans3d.WithLogger(logger))

	var reporters report.Multi
	if !f.quiet {
		reporters = append(reporters, report.NewText(out))
	}
	reporters = append(reporters, report.NewLog(logger.Logger, slog.LevelDebug))
	if f.ddbTable != "" {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("load AWS config: %w", err)
		}
		reporters = append(reporters, ddb.NewSink(dynamodb.NewFromConfig(cfg), f.ddbTable))
	}
	opts = append(opts, kmeans3d.WithReporter(reporters))

	dataset, err := resolveSource(ctx, f.dataset)
	if err != nil {
		return err
	}
	cfgSrc, err := resolveSource(ctx, f.config)
	if err != nil {
		return err
	}

	res, err := kmeans3d.Run(ctx, dataset, cfgSrc, opts...)
	if err != nil {
		return err
	}

	if f.labels && !f.quiet {
		for j, bm := range res.Members() {
			first, last := "-", "-"
			if !bm.IsEmpty() {
				first, last = fmt.Sprint(bm.Minimum()), fmt.Sprint(bm.Maximum())
			}
			fmt.Fprintf(out, "Cluster%d members: %d (first %s, last %s)\n", j+1, bm.GetCardinality(), first, last)
		}
	}
	if f.ddbTable != "" {
		fmt.Fprintf(out, "Run ID: %s\n", res.RunID)
	}
	return nil
}
