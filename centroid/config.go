package centroid

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/go-ini/ini"
	"github.com/hupe1980/kmeans3d/blobstore"
	"github.com/hupe1980/kmeans3d/point"
)

const (
	// KeyClusterNum is the key holding the number of clusters.
	KeyClusterNum = "cluster_num"
	// KeyCentroidPrefix prefixes the per-cluster seed keys (centroid0, centroid1, ...).
	KeyCentroidPrefix = "centroid"
)

// Initialize reads the cluster count and initial centroids from section of
// the INI document in r. Section and key names are case-insensitive.
//
// Seed lines that do not parse as a coordinate triple are skipped; if fewer
// than cluster_num seeds remain, a *ConfigError is returned.
func Initialize(r io.Reader, section string) (*State, int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, &ConfigError{Section: section, Reason: "unreadable source", cause: err}
	}
	return parse(data, section)
}

// InitializeFrom reads the configuration named name from store.
func InitializeFrom(ctx context.Context, store blobstore.Store, name, section string) (*State, int, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, 0, &ConfigError{Section: section, Reason: fmt.Sprintf("unreadable source %q", name), cause: err}
	}
	return parse(data, section)
}

func parse(data []byte, section string) (*State, int, error) {
	f, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, data)
	if err != nil {
		return nil, 0, &ConfigError{Section: section, Reason: "parse error", cause: err}
	}

	sec, err := f.GetSection(section)
	if err != nil {
		return nil, 0, &ConfigError{Section: section, Reason: "section not found", cause: err}
	}

	if !sec.HasKey(KeyClusterNum) {
		return nil, 0, &ConfigError{Section: section, Reason: KeyClusterNum + " is missing"}
	}
	k, err := sec.Key(KeyClusterNum).Int()
	if err != nil {
		return nil, 0, &ConfigError{Section: section, Reason: KeyClusterNum + " is not an integer", cause: err}
	}
	if k <= 0 {
		return nil, 0, &ConfigError{Section: section, Reason: fmt.Sprintf("%s must be positive, got %d", KeyClusterNum, k)}
	}

	// Every seed needs its own key next to cluster_num.
	if entries := len(sec.Keys()) - 1; k > entries {
		return nil, 0, &ConfigError{
			Section: section,
			Reason:  fmt.Sprintf("%s is %d but the section holds only %d centroid entries", KeyClusterNum, k, entries),
		}
	}

	seeds := make([]point.Point, 0, k)
	for i := 0; i < k; i++ {
		p, ok := point.ParseTriple(sec.Key(KeyCentroidPrefix + strconv.Itoa(i)).String())
		if !ok {
			continue
		}
		seeds = append(seeds, p)
	}
	if len(seeds) != k {
		return nil, 0, &ConfigError{
			Section: section,
			Reason:  fmt.Sprintf("%s is %d but only %d centroids are valid", KeyClusterNum, k, len(seeds)),
		}
	}

	s, err := New(seeds)
	if err != nil {
		return nil, 0, &ConfigError{Section: section, Reason: "invalid centroids", cause: err}
	}
	return s, k, nil
}
