// SPDX-License-Identifier: MPL-2.0

// Package version compares pack version strings and evaluates inclusive
// version ranges.
//
// Versions are parsed as up to three dot-separated unsigned integers
// (major[.minor[.patch]]), with missing trailing components treated as 0.
// When either operand does not parse, the two strings are compared byte-wise
// as a whole. Engine-side validation relies on this exact behavior, so the
// fallback must not be replaced with a partial numeric comparison.
package version

import (
	"strconv"
	"strings"
)

const (
	// Less means the left operand orders before the right operand.
	Less Ordering = -1
	// Equal means both operands order the same.
	Equal Ordering = 0
	// Greater means the left operand orders after the right operand.
	Greater Ordering = 1

	maxComponents = 3
)

type (
	// Ordering is the result of Compare.
	Ordering int

	// Range is an inclusive version range. A nil bound is unbounded.
	Range struct {
		Min *string
		Max *string
	}

	// parsed holds the numeric components of a dotted version.
	parsed [maxComponents]uint64
)

// String returns the ordering name.
func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Equal:
		return "equal"
	case Greater:
		return "greater"
	default:
		return "ordering(" + strconv.Itoa(int(o)) + ")"
	}
}

// Compare orders a and b.
func Compare(a, b string) Ordering {
	pa, okA := parse(a)
	pb, okB := parse(b)
	if !okA || !okB {
		return Ordering(strings.Compare(a, b))
	}

	for i := range maxComponents {
		if pa[i] == pb[i] {
			continue
		}
		if pa[i] < pb[i] {
			return Less
		}
		return Greater
	}
	return Equal
}

// InRange reports whether v lies within r, both bounds inclusive.
func InRange(v string, r Range) bool {
	if r.Min != nil && Compare(v, *r.Min) == Less {
		return false
	}
	if r.Max != nil && Compare(v, *r.Max) == Greater {
		return false
	}
	return true
}

// String renders the range as "[min, max]" with "*" for open bounds.
func (r Range) String() string {
	lo, hi := "*", "*"
	if r.Min != nil {
		lo = *r.Min
	}
	if r.Max != nil {
		hi = *r.Max
	}
	return "[" + lo + ", " + hi + "]"
}

// Unbounded reports whether neither bound is set.
func (r Range) Unbounded() bool {
	return r.Min == nil && r.Max == nil
}

func parse(s string) (parsed, bool) {
	var out parsed
	if s == "" {
		return out, false
	}

	parts := strings.Split(s, ".")
	if len(parts) > maxComponents {
		return out, false
	}

	for i, part := range parts {
		if part == "" {
			return out, false
		}
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return out, false
		}
		out[i] = n
	}
	return out, true
}
