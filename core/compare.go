package core

import "strings"

// CompareValues orders two Values, generalizing the teacher's
// datalog/compare.go numeric-widening + lexicographic-by-kind algorithm
// (datalog/compare.go:CompareValues) to the closed Value sum type required
// by spec.md §3: "Total order is defined lexicographically per kind;
// arithmetic on mismatched numeric kinds follows widening".
//
// Returns -1, 0, or 1. Null values sort before any non-null value of the
// same or a different kind, matching the teacher's "nil is less than any
// non-nil value" rule.
func CompareValues(a, b Value) int {
	if a.IsNull() && b.IsNull() {
		return 0
	}
	if a.IsNull() {
		return -1
	}
	if b.IsNull() {
		return 1
	}

	if a.IsNumeric() && b.IsNumeric() {
		av, _ := a.Numeric()
		bv, _ := b.Numeric()
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	}

	if a.kind != b.kind {
		// Cross-kind comparisons are a type mismatch; order by kind tag so
		// the ordering is at least total and stable, as the teacher's
		// fallback to stringValue() comparison does for unknown types.
		if a.kind < b.kind {
			return -1
		}
		return 1
	}

	switch a.kind {
	case KindBool:
		if a.b == b.b {
			return 0
		}
		if !a.b && b.b {
			return -1
		}
		return 1
	case KindString:
		return strings.Compare(a.s, b.s)
	case KindDate, KindTime, KindDateTime:
		switch {
		case a.t.Before(b.t):
			return -1
		case a.t.After(b.t):
			return 1
		default:
			return 0
		}
	case KindVertex:
		return compareBytes(a.vertex.ID.Bytes(), b.vertex.ID.Bytes())
	case KindEdge:
		return compareEdges(*a.edge, *b.edge)
	case KindList, KindSet:
		return compareValueSlices(a.sliceOf(), b.sliceOf())
	default:
		return 0
	}
}

func (v Value) sliceOf() []Value {
	if v.kind == KindSet {
		return v.set
	}
	return v.list
}

func compareValueSlices(a, b []Value) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := CompareValues(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func compareEdges(a, b Edge) int {
	if c := compareBytes(a.Src.Bytes(), b.Src.Bytes()); c != 0 {
		return c
	}
	if a.Type != b.Type {
		if a.Type < b.Type {
			return -1
		}
		return 1
	}
	if a.Rank != b.Rank {
		if a.Rank < b.Rank {
			return -1
		}
		return 1
	}
	return compareBytes(a.Dst.Bytes(), b.Dst.Bytes())
}

// compareBytes compares two equal-length byte slices lexicographically,
// matching the teacher's 20-byte-hash comparison in datalog/compare.go.
func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// ValuesEqual reports structural equality, matching the teacher's
// datalog/compare.go:ValuesEqual semantics generalized to Value.
func ValuesEqual(a, b Value) bool {
	return CompareValues(a, b) == 0 && a.kind == b.kind
}
