package centroid

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hupe1980/kmeans3d/blobstore"
	"github.com/hupe1980/kmeans3d/point"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configSets = `
[1_cluster]
cluster_num = 1
centroid0 = 0,0,0

[4_cluster]
cluster_num = 4
centroid0 = 10,6,0
centroid1 = 10,3,0
centroid2 = 10,-3,0
centroid3 = 10,-6,0

[Mixed_Case]
Cluster_Num = 2
CENTROID0 = 1|2|3
centroid1 = 4 , 5 , 6

[zero]
cluster_num = 0

[negative]
cluster_num = -2

[missing]
centroid0 = 1,2,3

[short]
cluster_num = 3
centroid0 = 1,2,3
centroid1 = not a point
centroid2 = 7,8,9

[nan]
cluster_num = abc

[huge]
cluster_num = 1152921504606846976
centroid0 = 1,2,3
`

func TestInitialize(t *testing.T) {
	s, k, err := Initialize(strings.NewReader(configSets), "4_cluster")
	require.NoError(t, err)
	assert.Equal(t, 4, k)
	assert.Equal(t, 4, s.K())
	assert.Equal(t, []point.Point{
		{X: 10, Y: 6}, {X: 10, Y: 3}, {X: 10, Y: -3}, {X: 10, Y: -6},
	}, s.Centroids())
	assert.Equal(t, []int64{0, 0, 0, 0}, s.Counts())
}

func TestInitialize_CaseInsensitive(t *testing.T) {
	s, k, err := Initialize(strings.NewReader(configSets), "mixed_case")
	require.NoError(t, err)
	assert.Equal(t, 2, k)
	assert.Equal(t, []point.Point{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}}, s.Centroids())
}

func TestInitialize_Errors(t *testing.T) {
	tests := []struct {
		section string
		reason  string
	}{
		{"zero", "must be positive"},
		{"negative", "must be positive"},
		{"missing", "is missing"},
		{"short", "only 2 centroids are valid"},
		{"nan", "not an integer"},
		{"huge", "holds only 1 centroid entries"},
		{"no_such_section", "section not found"},
	}
	for _, tt := range tests {
		t.Run(tt.section, func(t *testing.T) {
			_, _, err := Initialize(strings.NewReader(configSets), tt.section)
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.section, ce.Section)
			assert.Contains(t, ce.Error(), tt.reason)
		})
	}
}

func TestInitialize_Unreadable(t *testing.T) {
	_, _, err := Initialize(failingReader{}, "4_cluster")
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, errBoom)
}

func TestInitialize_ParseError(t *testing.T) {
	_, _, err := Initialize(strings.NewReader("[unterminated\ncluster_num = 1\n"), "unterminated")
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestInitializeFrom(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "config_sets.ini", []byte(configSets)))

	s, k, err := InitializeFrom(ctx, store, "config_sets.ini", "1_cluster")
	require.NoError(t, err)
	assert.Equal(t, 1, k)
	assert.Equal(t, []point.Point{{}}, s.Centroids())

	_, _, err = InitializeFrom(ctx, store, "absent.ini", "1_cluster")
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestNew_Empty(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNoCentroids)
}

func TestRecompute(t *testing.T) {
	s, err := New([]point.Point{{X: 1}, {X: 2}, {X: 3}})
	require.NoError(t, err)

	sums := []float64{
		4, 8, 12, // cluster 0: 4 points
		0, 0, 0, // cluster 1: empty
		-3, 3, 0, // cluster 2: 3 points
	}
	counts := []int64{4, 0, 3}

	empty := s.Recompute(sums, counts)
	assert.Equal(t, []int{1}, empty)
	assert.Equal(t, []point.Point{
		{X: 1, Y: 2, Z: 3},
		{X: 2}, // frozen
		{X: -1, Y: 1, Z: 0},
	}, s.Centroids())
	assert.Equal(t, counts, s.Counts())

	// Returned copies are detached from the state.
	c := s.Centroids()
	c[0].X = 99
	assert.Equal(t, float32(1), s.View()[0].X)
}

var errBoom = errors.New("boom")

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errBoom }
