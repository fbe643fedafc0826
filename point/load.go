package point

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/hupe1980/kmeans3d/blobstore"
)

// Throttle limits ingest throughput. It is satisfied by *resource.Controller.
type Throttle interface {
	AcquireIO(ctx context.Context, bytes int) error
}

// Stats describes the outcome of a Load.
type Stats struct {
	// Points is the number of records stored.
	Points int
	// Skipped is the number of malformed records that were ignored.
	Skipped int
	// Bytes is the number of bytes consumed from the source.
	Bytes int64
}

type loadOptions struct {
	layout   Layout
	sizeHint int
	throttle Throttle
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithLayout selects the storage layout of the returned Store. Default: Columnar.
func WithLayout(l Layout) LoadOption {
	return func(o *loadOptions) {
		o.layout = l
	}
}

// WithSizeHint pre-sizes the store for the expected number of points.
func WithSizeHint(n int) LoadOption {
	return func(o *loadOptions) {
		o.sizeHint = n
	}
}

// WithThrottle rate-limits reads from the source.
func WithThrottle(t Throttle) LoadOption {
	return func(o *loadOptions) {
		o.throttle = t
	}
}

const ctxCheckInterval = 4096

// Load reads one point per line from r. Lines that do not parse as exactly
// three delimited numbers are skipped. Read failures are reported as
// *IngestError.
func Load(ctx context.Context, r io.Reader, optFns ...LoadOption) (Store, Stats, error) {
	o := loadOptions{layout: Columnar}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	if o.throttle != nil {
		r = &throttledReader{ctx: ctx, r: r, t: o.throttle}
	}

	var stats Stats
	b := NewBuilder(o.layout, o.sizeHint)
	br := bufio.NewReaderSize(r, 64*1024)

	for line := 0; ; line++ {
		if line%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}

		s, err := br.ReadString('\n')
		stats.Bytes += int64(len(s))
		if len(s) > 0 {
			if p, ok := ParseTriple(s); ok {
				b.Append(p)
			} else if !isBlank(s) {
				stats.Skipped++
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, stats, &IngestError{cause: err}
		}
	}

	stats.Points = b.Len()
	return b.Build(), stats, nil
}

// LoadFrom opens name in store (transparently decompressing .zst and .lz4
// blobs) and loads it with Load.
func LoadFrom(ctx context.Context, store blobstore.Store, name string, optFns ...LoadOption) (Store, Stats, error) {
	rc, err := blobstore.OpenReader(ctx, store, name)
	if err != nil {
		return nil, Stats{}, &IngestError{Source: name, cause: err}
	}
	defer rc.Close()

	s, stats, err := Load(ctx, rc, optFns...)
	if err != nil {
		var ie *IngestError
		if errors.As(err, &ie) {
			ie.Source = name
		}
		return nil, stats, err
	}
	return s, stats, nil
}

func isBlank(s string) bool {
	return skipSpace(s, 0) == len(s)
}

const throttleChunk = 32 * 1024

type throttledReader struct {
	ctx context.Context
	r   io.Reader
	t   Throttle
}

func (tr *throttledReader) Read(p []byte) (int, error) {
	if len(p) > throttleChunk {
		p = p[:throttleChunk]
	}
	n, err := tr.r.Read(p)
	if n > 0 {
		if werr := tr.t.AcquireIO(tr.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
