package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType defines the compression algorithm of a blob.
type CompressionType uint8

const (
	// CompressionNone indicates no compression.
	CompressionNone CompressionType = 0
	// CompressionLZ4 indicates an LZ4 frame (fast, moderate ratio).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD indicates a zstd frame (better ratio).
	CompressionZSTD CompressionType = 2
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("CompressionType(%d)", uint8(c))
	}
}

// Extension returns the file name suffix conventionally used for c.
func (c CompressionType) Extension() string {
	switch c {
	case CompressionLZ4:
		return ".lz4"
	case CompressionZSTD:
		return ".zst"
	default:
		return ""
	}
}

// ParseCompression converts a name ("none", "lz4", "zstd") into a CompressionType.
func ParseCompression(s string) (CompressionType, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd", "zst":
		return CompressionZSTD, nil
	default:
		return CompressionNone, fmt.Errorf("unknown compression %q", s)
	}
}

// CompressionFor infers the compression of a blob from its name.
func CompressionFor(name string) CompressionType {
	switch {
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		return CompressionZSTD
	case strings.HasSuffix(name, ".lz4"):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// ZSTD decoder pool; decoders are expensive to set up.
var zstdDecoderPool sync.Pool

func getZstdDecoder(r io.Reader) (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		dec := v.(*zstd.Decoder)
		if err := dec.Reset(r); err != nil {
			return nil, err
		}
		return dec, nil
	}
	return zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
}

func putZstdDecoder(dec *zstd.Decoder) {
	// Drop the reference to the source before pooling.
	_ = dec.Reset(nil)
	zstdDecoderPool.Put(dec)
}

// OpenReader opens name in s and returns a reader over its decompressed content.
func OpenReader(ctx context.Context, s Store, name string) (io.ReadCloser, error) {
	blob, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	rc, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		_ = blob.Close()
		return nil, err
	}
	raw := &blobReader{ReadCloser: rc, blob: blob}

	dr, err := Decompress(raw, CompressionFor(name))
	if err != nil {
		_ = raw.Close()
		return nil, err
	}
	return dr, nil
}

// Decompress wraps rc with a decoder for c. Closing the result closes rc.
func Decompress(rc io.ReadCloser, c CompressionType) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return rc, nil
	case CompressionLZ4:
		return &decodeReader{Reader: lz4.NewReader(rc), src: rc}, nil
	case CompressionZSTD:
		dec, err := getZstdDecoder(rc)
		if err != nil {
			return nil, err
		}
		return &decodeReader{Reader: dec, src: rc, release: func() { putZstdDecoder(dec) }}, nil
	default:
		return nil, fmt.Errorf("unsupported compression type: %d", c)
	}
}

// Compress encodes data with c.
func Compress(data []byte, c CompressionType) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionZSTD:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
	default:
		return nil, fmt.Errorf("unsupported compression type: %d", c)
	}
}

type blobReader struct {
	io.ReadCloser
	blob Blob
}

func (r *blobReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.blob.Close(); err == nil {
		err = cerr
	}
	return err
}

type decodeReader struct {
	io.Reader
	src     io.Closer
	release func()
	once    sync.Once
}

func (r *decodeReader) Close() error {
	var err error
	r.once.Do(func() {
		if r.release != nil {
			r.release()
		}
		err = r.src.Close()
	})
	return err
}
