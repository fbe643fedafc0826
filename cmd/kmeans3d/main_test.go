package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/hupe1980/kmeans3d/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		uri  string
		want location
	}{
		{"data/blobs.csv", location{key: "data/blobs.csv"}},
		{"s3://bucket/dir/blobs.csv", location{scheme: "s3", bucket: "bucket", key: "dir/blobs.csv"}},
		{"minio://localhost:9000/bucket/blobs.csv.zst", location{scheme: "minio", host: "localhost:9000", bucket: "bucket", key: "blobs.csv.zst"}},
	}
	for _, tt := range tests {
		got, err := parseLocation(tt.uri)
		require.NoError(t, err, tt.uri)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"s3://bucket", "s3:///key", "minio:///bucket/key", "gs://bucket/key"} {
		_, err := parseLocation(bad)
		assert.Error(t, err, bad)
	}
}

func TestGenerateAndRun(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "blobs.csv.zst")
	cfg := filepath.Join(dir, "config.ini")

	out, err := execute(t, "generate", "--out", data, "--config-out", cfg, "--per-cluster", "200", "--stddev", "0.1")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 800 points in 4 clusters")

	ini, err := os.ReadFile(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(ini), "cluster_num = 4")

	out, err = execute(t, "run", "--dataset", data, "--config", cfg, "--workers", "3", "--iterations", "5", "--labels")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Dataset loaded from "+data+"\n"))
	assert.Equal(t, 5, strings.Count(out, "\nIteration "))
	for _, line := range []string{"Cluster1 size: 200", "Cluster4 size: 200", "Cluster4 members: 200", "Duration: "} {
		assert.Contains(t, out, line)
	}
}

func TestRun_SequentialInterleavedLocked(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "blobs.txt")
	cfg := filepath.Join(dir, "config.ini")

	_, err := execute(t, "generate", "--out", data, "--config-out", cfg, "--section", "s", "--delimiter", ";", "--per-cluster", "50")
	require.NoError(t, err)

	out, err := execute(t, "run", "--dataset", data, "--config", cfg, "--section", "s",
		"--workers", "1", "--layout", "interleaved", "--merge", "locked", "--quiet")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRun_InvalidFlags(t *testing.T) {
	for _, args := range [][]string{
		{"run", "--dataset", "x", "--config", "y", "--merge", "bogus"},
		{"run", "--dataset", "x", "--config", "y", "--layout", "bogus"},
		{"run", "--dataset", "x", "--config", "y", "--empty", "bogus"},
		{"run", "--dataset", "x", "--config", "y", "--iterations", "0"},
		{"run", "--dataset", "x", "--config", "y", "--log-level", "loud"},
		{"run", "--config", "y"},
		{"generate", "--out", "x", "--delimiter", "ab"},
	} {
		_, err := execute(t, args...)
		assert.Error(t, err, args)
	}
}

func TestRunFlags_Controller(t *testing.T) {
	assert.Nil(t, (&runFlags{workers: 64}).controller())

	rc := (&runFlags{workers: 64, ioLimit: 1 << 20}).controller()
	require.NotNil(t, rc)
	assert.Equal(t, 64, rc.MaxWorkers())

	rc = (&runFlags{memLimit: 1 << 30}).controller()
	require.NotNil(t, rc)
	assert.Equal(t, runtime.GOMAXPROCS(0), rc.MaxWorkers())
}

func TestRun_MemoryLimitFlag(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "blobs.csv")
	cfg := filepath.Join(dir, "config.ini")

	_, err := execute(t, "generate", "--out", data, "--config-out", cfg, "--per-cluster", "50")
	require.NoError(t, err)

	_, err = execute(t, "run", "--dataset", data, "--config", cfg, "--memory-limit", "64", "--quiet")
	require.ErrorIs(t, err, resource.ErrMemoryLimit)

	out, err := execute(t, "run", "--dataset", data, "--config", cfg, "--workers", "32", "--io-limit", "1073741824", "--iterations", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\nIteration "))
}

func TestRun_ConfigError(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "d.csv")
	cfg := filepath.Join(dir, "c.ini")
	require.NoError(t, os.WriteFile(data, []byte("1,2,3\n"), 0o644))
	require.NoError(t, os.WriteFile(cfg, []byte("[4_cluster]\ncluster_num = 0\n"), 0o644))

	out, err := execute(t, "run", "--dataset", data, "--config", cfg)
	require.Error(t, err)
	assert.NotContains(t, out, "Iteration")
}
