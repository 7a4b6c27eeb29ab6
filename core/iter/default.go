package iter

import "graphd/core"

// base is the materialized-slice iterator shared by every specialization
// in this package: a column layout plus a row slice and a cursor,
// grounded on executor/buffered_iterator.go's slice-backed buffering
// (rather than the teacher's lazily-pulled streaming relation, since
// spec.md §4.5's result cache holds fully materialized datasets per
// variable).
type base struct {
	kind     Kind
	colNames []string
	rows     []core.Row
	cursor   int
}

func newBase(kind Kind, ds *core.DataSet) *base {
	rows := make([]core.Row, len(ds.Rows))
	copy(rows, ds.Rows)
	return &base{kind: kind, colNames: ds.ColNames, rows: rows, cursor: -1}
}

func (b *base) KindOf() Kind       { return b.kind }
func (b *base) ColNames() []string { return b.colNames }
func (b *base) Valid() bool        { return b.cursor >= 0 && b.cursor < len(b.rows) }
func (b *base) Next() bool {
	b.cursor++
	return b.Valid()
}
func (b *base) Row() core.Row { return b.rows[b.cursor] }
func (b *base) Reset()        { b.cursor = -1 }
func (b *base) Size() int {
	switch {
	case b.cursor < 0:
		return len(b.rows)
	case b.cursor >= len(b.rows):
		return 0
	default:
		return len(b.rows) - b.cursor
	}
}

// Erase removes the current row, preserving order of the rest, per
// spec.md §4.7's stable deletion primitive. The cursor is stepped back so
// the next Next() lands on the row that slid into the erased slot.
func (b *base) Erase() {
	copy(b.rows[b.cursor:], b.rows[b.cursor+1:])
	b.rows = b.rows[:len(b.rows)-1]
	b.cursor--
}

// UnstableErase removes the current row by swapping in the last
// remaining row, per spec.md §4.7's unstable deletion primitive — O(1)
// but does not preserve the relative order of the rest.
func (b *base) UnstableErase() {
	last := len(b.rows) - 1
	b.rows[b.cursor] = b.rows[last]
	b.rows = b.rows[:last]
	b.cursor--
}

// ColumnIndex returns the position of a column name, or -1 if absent.
func (b *base) ColumnIndex(name string) int {
	for i, c := range b.colNames {
		if c == name {
			return i
		}
	}
	return -1
}

// Default is a generic materialized dataset iterator with no
// specialization, the graph-query analogue of the teacher's plain
// slice-backed Relation iterator.
type Default struct{ *base }

// NewDefault wraps a dataset for plain row-at-a-time access.
func NewDefault(ds *core.DataSet) *Default {
	return &Default{base: newBase(KindDefault, ds)}
}

// Sequential is a Default iterator over a freshly produced, append-only
// row source — distinguished from Default so operators like Dedup (which
// rely on pointer-stable hashing within one produced dataset, spec.md
// §4.8) can assert they're iterating a source they themselves control the
// provenance of.
type Sequential struct{ *base }

// NewSequential wraps a freshly produced dataset.
func NewSequential(ds *core.DataSet) *Sequential {
	return &Sequential{base: newBase(KindSequential, ds)}
}
