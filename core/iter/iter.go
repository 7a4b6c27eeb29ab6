// Package iter implements the row-streaming abstraction every operator
// in core/operator consumes and produces. Grounded on the teacher's
// executor/relation.go Iterator interface and the lazy-composition style
// of executor/buffered_iterator.go / iterator_composition.go, but
// enum-dispatched rather than built from an open set of wrapper structs
// behind an interface: spec.md §9 explicitly prefers a virtual-call-per-row
// design be replaced with a Kind tag resolved once per Next() call
// ("enum-dispatched iterators with a next() that resolves the variant
// once and then hot-loops").
package iter

import "graphd/core"

// Kind tags which specialization an Iterator is, so callers needing a
// typed accessor (GetSrcID, GetEdgeProp, GetDstID, ...) can assert the
// concrete type cheaply instead of probing with interface type switches
// on every row.
type Kind uint8

const (
	// KindDefault is a generic materialized row iterator.
	KindDefault Kind = iota
	// KindSequential walks an append-only row slice in order, the same
	// shape as KindDefault but reserved for operators that need to
	// distinguish "plain materialized dataset" from "freshly produced,
	// not yet possibly reordered" sources (e.g. Dedup's erase semantics
	// care about this).
	KindSequential
	// KindGetNeighbors wraps a neighbor-traversal response, understanding
	// its storage-layout columns (src/edge-type/rank/dst/props).
	KindGetNeighbors
	// KindProp wraps a vertex/edge property fetch response.
	KindProp
	// KindJoin wraps the output of a join operator, which may carry
	// null-padded rows from a LeftJoin.
	KindJoin
)

func (k Kind) String() string {
	switch k {
	case KindDefault:
		return "Default"
	case KindSequential:
		return "Sequential"
	case KindGetNeighbors:
		return "GetNeighbors"
	case KindProp:
		return "Prop"
	case KindJoin:
		return "Join"
	default:
		return "Unknown"
	}
}

// Iterator is the interface every row source implements, per spec.md
// §4.7: "valid, next, row, reset, size, and two deletion primitives:
// erase (stable) and unstableErase". It is consumed destructively by its
// reader — a caller needing to re-read must Reset or copy the rows first
// (spec.md §4.5's result-cache note).
type Iterator interface {
	// KindOf reports which specialization this is, for typed-accessor
	// type assertions.
	KindOf() Kind

	// Valid reports whether the cursor currently refers to a live row.
	Valid() bool

	// Next advances the cursor, returning whether a row is now valid.
	Next() bool

	// Row returns the row at the current cursor position. Valid must be
	// true.
	Row() core.Row

	// Reset rewinds the cursor to before the first row.
	Reset()

	// Size returns the number of rows remaining to be visited
	// (including the current one, if Valid).
	Size() int

	// Erase removes the current row, preserving the relative order of
	// every other row, and steps the cursor back so the next Next()
	// visits the row that moved into its slot. Valid must be true.
	Erase()

	// UnstableErase removes the current row by swapping in the last
	// remaining row, which is O(1) but does not preserve order. Valid
	// must be true.
	UnstableErase()
}

// ColNames is implemented by iterators that know their backing column
// layout, which every concrete iterator in this package does.
type ColNames interface {
	ColNames() []string
}
