package blobstore

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressionFor(t *testing.T) {
	assert.Equal(t, CompressionZSTD, CompressionFor("a.csv.zst"))
	assert.Equal(t, CompressionLZ4, CompressionFor("a.csv.lz4"))
	assert.Equal(t, CompressionNone, CompressionFor("a.csv"))
}

func TestOpenReader_RoundTrip(t *testing.T) {
	ctx := context.Background()
	payload := []byte(strings.Repeat("10.5,-3.25,0\n", 1000))

	for _, c := range []CompressionType{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			store := NewMemoryStore()
			enc, err := Compress(payload, c)
			require.NoError(t, err)
			if c != CompressionNone {
				assert.Less(t, len(enc), len(payload))
			}

			name := "points.csv" + c.Extension()
			require.NoError(t, store.Put(ctx, name, enc))

			got, err := ReadAll(ctx, store, name)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(payload, got))
		})
	}
}

func TestOpenReader_Corrupt(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "bad.csv.zst", []byte("not zstd at all")))

	_, err := ReadAll(ctx, store, "bad.csv.zst")
	assert.Error(t, err)
}

func TestParseCompression(t *testing.T) {
	c, err := ParseCompression("zstd")
	require.NoError(t, err)
	assert.Equal(t, CompressionZSTD, c)

	_, err = ParseCompression("brotli")
	assert.Error(t, err)
}
