package iter

import "graphd/core"

// Neighbors wraps a GetNeighbors traversal response: each row carries at
// least an "__edge" column (the Edge traversed) and a "__dst" column
// (the Vertex arrived at), plus whatever properties were requested.
// Grounded on the teacher's neighbors-shaped storage iterators
// (storage/matcher_iterator_unbound.go) understanding their own
// response layout, generalized to this package's column-name-addressed
// rows.
type Neighbors struct {
	*base
	edgeIdx, dstIdx int
}

// NewNeighbors wraps a dataset produced by a GetNeighbors operator.
func NewNeighbors(ds *core.DataSet) *Neighbors {
	b := newBase(KindGetNeighbors, ds)
	return &Neighbors{base: b, edgeIdx: b.ColumnIndex("__edge"), dstIdx: b.ColumnIndex("__dst")}
}

// currentEdge returns the Edge of the current row, or nil if the column
// is absent or not yet bound.
func (n *Neighbors) currentEdge() *core.Edge {
	if n.edgeIdx < 0 || !n.Valid() {
		return nil
	}
	return n.Row().Get(n.edgeIdx).AsEdge()
}

// GetSrcID returns the source vertex id of the edge at the current row.
func (n *Neighbors) GetSrcID() core.VertexID {
	if e := n.currentEdge(); e != nil {
		return e.Src
	}
	return core.VertexID{}
}

// GetDstID returns the destination vertex id of the edge at the current
// row.
func (n *Neighbors) GetDstID() core.VertexID {
	if e := n.currentEdge(); e != nil {
		return e.Dst
	}
	if n.dstIdx >= 0 && n.Valid() {
		if v := n.Row().Get(n.dstIdx).AsVertex(); v != nil {
			return v.ID
		}
	}
	return core.VertexID{}
}

// GetEdgeProp returns a named property of the current row's edge.
func (n *Neighbors) GetEdgeProp(name string) (core.Value, bool) {
	if e := n.currentEdge(); e != nil {
		return e.Prop(name)
	}
	return core.Value{}, false
}

// GetDstVertex returns the destination vertex of the current row, if the
// dataset carries one.
func (n *Neighbors) GetDstVertex() *core.Vertex {
	if n.dstIdx < 0 || !n.Valid() {
		return nil
	}
	return n.Row().Get(n.dstIdx).AsVertex()
}

// Prop wraps a vertex/edge property-fetch response: each row carries a
// "__subject" column (the Vertex or Edge fetched) plus the requested
// property columns, grounded on storage/matcher.go's tag-lookup response
// shape.
type Prop struct {
	*base
	subjectIdx int
}

// NewProp wraps a dataset produced by a GetVertices/GetEdges operator.
func NewProp(ds *core.DataSet) *Prop {
	b := newBase(KindProp, ds)
	return &Prop{base: b, subjectIdx: b.ColumnIndex("__subject")}
}

// GetVertex returns the current row's subject vertex, if it is one.
func (p *Prop) GetVertex() *core.Vertex {
	if p.subjectIdx < 0 || !p.Valid() {
		return nil
	}
	return p.Row().Get(p.subjectIdx).AsVertex()
}

// GetEdge returns the current row's subject edge, if it is one.
func (p *Prop) GetEdge() *core.Edge {
	if p.subjectIdx < 0 || !p.Valid() {
		return nil
	}
	return p.Row().Get(p.subjectIdx).AsEdge()
}

// Join wraps the output of an InnerJoin/LeftJoin/CartesianProduct
// operator, tagging whether the current row is a null-padded LeftJoin
// miss so downstream operators (or EXPLAIN rendering) can special-case
// it without re-deriving it from the row's contents.
type Join struct {
	*base
	padded []bool
}

// NewJoin wraps a joined dataset. padded[i] records whether row i was a
// null-padded LeftJoin miss; pass nil if the caller doesn't need this
// distinction (e.g. InnerJoin/CartesianProduct never pad).
func NewJoin(ds *core.DataSet, padded []bool) *Join {
	return &Join{base: newBase(KindJoin, ds), padded: padded}
}

// IsPadded reports whether the current row is a LeftJoin null-pad.
func (j *Join) IsPadded() bool {
	if j.padded == nil || !j.Valid() {
		return false
	}
	return j.padded[j.cursor]
}

// Erase keeps the padded bookkeeping in sync with the row slice.
func (j *Join) Erase() {
	if j.padded != nil {
		copy(j.padded[j.cursor:], j.padded[j.cursor+1:])
		j.padded = j.padded[:len(j.padded)-1]
	}
	j.base.Erase()
}

// UnstableErase keeps the padded bookkeeping in sync with the row slice.
func (j *Join) UnstableErase() {
	if j.padded != nil {
		last := len(j.padded) - 1
		j.padded[j.cursor] = j.padded[last]
		j.padded = j.padded[:last]
	}
	j.base.UnstableErase()
}
