package engine

// Range is a half-open interval [Lo, Hi) of point indexes.
type Range struct {
	Lo, Hi int
}

// Len returns the number of points in the range.
func (r Range) Len() int { return r.Hi - r.Lo }

// Partition splits [0, n) into parts contiguous ranges whose sizes differ by
// at most one. The first n%parts ranges get the extra point.
func Partition(n, parts int) []Range {
	if parts < 1 {
		parts = 1
	}
	ranges := make([]Range, parts)
	base, extra := n/parts, n%parts
	lo := 0
	for w := range ranges {
		size := base
		if w < extra {
			size++
		}
		ranges[w] = Range{Lo: lo, Hi: lo + size}
		lo += size
	}
	return ranges
}
