package point

import (
	"math"
	"strconv"
)

// ParseTriple parses a record of the form "x<d>y<d>z", where each <d> is a
// single non-space delimiter character. Whitespace around fields is ignored.
// It reports false for anything else, including non-finite values and
// trailing content after the third field.
func ParseTriple(s string) (Point, bool) {
	var p Point
	var ok bool
	i := 0

	if p.X, i, ok = scanFloat(s, i); !ok {
		return Point{}, false
	}
	if i, ok = scanDelim(s, i); !ok {
		return Point{}, false
	}
	if p.Y, i, ok = scanFloat(s, i); !ok {
		return Point{}, false
	}
	if i, ok = scanDelim(s, i); !ok {
		return Point{}, false
	}
	if p.Z, i, ok = scanFloat(s, i); !ok {
		return Point{}, false
	}
	if skipSpace(s, i) != len(s) {
		return Point{}, false
	}
	return p, true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func scanDelim(s string, i int) (int, bool) {
	i = skipSpace(s, i)
	if i >= len(s) {
		return i, false
	}
	return i + 1, true
}

// scanFloat consumes the longest decimal floating-point prefix starting at i
// (after leading whitespace): [+-]digits[.digits][(e|E)[+-]digits].
func scanFloat(s string, i int) (float32, int, bool) {
	i = skipSpace(s, i)
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, start, false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	v, err := strconv.ParseFloat(s[start:i], 32)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, start, false
	}
	return float32(v), i, true
}
