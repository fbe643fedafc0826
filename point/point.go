package point

import (
	"fmt"
	"strconv"
)

// Point is a 3-dimensional coordinate.
type Point struct {
	X, Y, Z float32
}

// SquaredDist returns the squared Euclidean distance between p and q.
func (p Point) SquaredDist(q Point) float32 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	dz := p.Z - q.Z
	return dx*dx + dy*dy + dz*dz
}

// String formats the point as "(x, y, z)".
func (p Point) String() string {
	return fmt.Sprintf("(%s, %s, %s)", formatCoord(p.X), formatCoord(p.Y), formatCoord(p.Z))
}

func formatCoord(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', 6, 32)
}

// Layout selects the in-memory representation of a Store.
type Layout int

const (
	// Columnar stores xs, ys and zs in separate slices.
	Columnar Layout = iota
	// Interleaved stores one Point struct per element.
	Interleaved
)

func (l Layout) String() string {
	switch l {
	case Columnar:
		return "columnar"
	case Interleaved:
		return "interleaved"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// ParseLayout converts a layout name into a Layout.
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "columnar", "soa":
		return Columnar, nil
	case "interleaved", "aos":
		return Interleaved, nil
	default:
		return 0, fmt.Errorf("unknown layout %q", s)
	}
}

// Store is a read-only, indexed sequence of points.
type Store interface {
	// Len returns the number of points.
	Len() int
	// At returns the i-th point. It panics if i is out of range.
	At(i int) Point
	// Layout reports the storage layout.
	Layout() Layout
}

// SizeBytes returns the approximate memory footprint of the coordinates held by s.
func SizeBytes(s Store) int64 {
	return int64(s.Len()) * 12
}

// Mean returns the arithmetic mean of all points in s.
// The zero Point is returned for an empty store.
func Mean(s Store) Point {
	n := s.Len()
	if n == 0 {
		return Point{}
	}
	var sx, sy, sz float64
	for i := 0; i < n; i++ {
		p := s.At(i)
		sx += float64(p.X)
		sy += float64(p.Y)
		sz += float64(p.Z)
	}
	inv := 1 / float64(n)
	return Point{X: float32(sx * inv), Y: float32(sy * inv), Z: float32(sz * inv)}
}

type columnar struct {
	xs, ys, zs []float32
}

func (c *columnar) Len() int       { return len(c.xs) }
func (c *columnar) Layout() Layout { return Columnar }

func (c *columnar) At(i int) Point {
	return Point{X: c.xs[i], Y: c.ys[i], Z: c.zs[i]}
}

type interleaved struct {
	points []Point
}

func (s *interleaved) Len() int       { return len(s.points) }
func (s *interleaved) Layout() Layout { return Interleaved }
func (s *interleaved) At(i int) Point { return s.points[i] }

// Builder accumulates points and produces an immutable Store.
// A Builder must not be used after Build.
type Builder struct {
	layout Layout
	col    columnar
	pts    []Point
}

// NewBuilder creates a Builder for the given layout. capacity is a size hint.
func NewBuilder(layout Layout, capacity int) *Builder {
	b := &Builder{layout: layout}
	if capacity > 0 {
		switch layout {
		case Interleaved:
			b.pts = make([]Point, 0, capacity)
		default:
			b.col.xs = make([]float32, 0, capacity)
			b.col.ys = make([]float32, 0, capacity)
			b.col.zs = make([]float32, 0, capacity)
		}
	}
	return b
}

// Append adds p to the store being built.
func (b *Builder) Append(p Point) {
	if b.layout == Interleaved {
		b.pts = append(b.pts, p)
		return
	}
	b.col.xs = append(b.col.xs, p.X)
	b.col.ys = append(b.col.ys, p.Y)
	b.col.zs = append(b.col.zs, p.Z)
}

// Len returns the number of points appended so far.
func (b *Builder) Len() int {
	if b.layout == Interleaved {
		return len(b.pts)
	}
	return len(b.col.xs)
}

// Build returns the finished Store.
func (b *Builder) Build() Store {
	if b.layout == Interleaved {
		return &interleaved{points: b.pts}
	}
	c := b.col
	return &c
}

// FromPoints builds a Store from pts using the given layout. pts is copied.
func FromPoints(layout Layout, pts []Point) Store {
	b := NewBuilder(layout, len(pts))
	for _, p := range pts {
		b.Append(p)
	}
	return b.Build()
}
