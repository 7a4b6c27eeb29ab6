// Package ast defines the statement tree the validator lowers into a
// plan. No parser/lexer is in scope (spec.md §1 — "assume a parsed AST is
// delivered"), so this package exists purely as the delivery shape,
// mirrored after the teacher's query.Query{Find,In,Where,OrderBy} AST
// generalized from Datalog find/where clauses to graph statement clauses.
package ast

import "graphd/core/expr"

// Statement is one parsed query or mutation, a sequence of chained
// clauses the validator lowers left to right (spec.md §4.3).
type Statement struct {
	Clauses []Clause
}

// Clause is any statement step the validator knows how to lower.
type Clause interface {
	clause()
}

// StepSpec names the edge types and direction one hop of a Match/Go
// traverses, mirrored after query.Pattern's attribute-slot matching
// generalized to edge type + direction.
type StepSpec struct {
	EdgeTypes []string
	Outbound  bool
	Inbound   bool
	MinHop    int
	MaxHop    int // 0 means exactly MinHop hops
}

// MatchClause walks a pattern of steps starting from a bound or literal
// set of source vertices, binding path/vertex/edge variables along the
// way.
type MatchClause struct {
	FromVar   string // bound variable supplying starting vertices, or ""
	FromIDs   []string
	Steps     []StepSpec
	BindPath  string // variable to bind the resulting Path to, or ""
	BindSteps []string
}

func (MatchClause) clause() {}

// FetchClause loads vertices or edges by id and tag/edge type, the
// graph-query analogue of a direct point lookup.
type FetchClause struct {
	IsEdge   bool
	TagOrEdge string
	IDs      []expr.Expression
	Props    []string
}

func (FetchClause) clause() {}

// GoClause is a traversal clause (`GO N STEPS FROM ... OVER ...`),
// grounded on the teacher's GetNeighbors-shaped pattern matching
// generalized to explicit hop count and edge filter support.
type GoClause struct {
	Hops      int
	FromVar   string
	FromIDs   []string
	EdgeTypes []string
	Outbound  bool
	Where     expr.Expression
	Yield     []YieldItem
}

func (GoClause) clause() {}

// YieldItem projects one expression to an output column.
type YieldItem struct {
	Expr  expr.Expression
	Alias string
}

// YieldClause is a terminal projection clause, analogous to the
// teacher's Find clause.
type YieldClause struct {
	Items    []YieldItem
	Distinct bool
}

func (YieldClause) clause() {}

// WhereClause filters the current row set by a predicate expression.
type WhereClause struct {
	Predicate expr.Expression
}

func (WhereClause) clause() {}

// OrderByClause sorts the current row set.
type OrderByClause struct {
	Terms []OrderItem
}

func (OrderByClause) clause() {}

// OrderItem is one sort key.
type OrderItem struct {
	Expr expr.Expression
	Desc bool
}

// LimitClause bounds the row set.
type LimitClause struct {
	Offset, Count int64
}

func (LimitClause) clause() {}

// InsertVerticesClause inserts one or more tagged vertices.
type InsertVerticesClause struct {
	Tag    string
	Rows   []InsertVertexRow
	Upsert bool
}

func (InsertVerticesClause) clause() {}

// InsertVertexRow is one vertex to insert.
type InsertVertexRow struct {
	ID    expr.Expression
	Props map[string]expr.Expression
}

// InsertEdgesClause inserts one or more edges.
type InsertEdgesClause struct {
	EdgeType string
	Rows     []InsertEdgeRow
	Upsert   bool
}

func (InsertEdgesClause) clause() {}

// InsertEdgeRow is one edge to insert.
type InsertEdgeRow struct {
	Src, Dst expr.Expression
	Rank     expr.Expression
	Props    map[string]expr.Expression
}

// DeleteVerticesClause deletes vertices (and, if WithEdges, their incident
// edges).
type DeleteVerticesClause struct {
	IDs       []expr.Expression
	WithEdges bool
}

func (DeleteVerticesClause) clause() {}

// DeleteTagsClause removes named tags from vertices.
type DeleteTagsClause struct {
	IDs  []expr.Expression
	Tags []string
}

func (DeleteTagsClause) clause() {}

// DeleteEdgesClause deletes edges by endpoints/type/rank.
type DeleteEdgesClause struct {
	EdgeType string
	Edges    []DeleteEdgeRow
}

func (DeleteEdgesClause) clause() {}

// DeleteEdgeRow identifies a single edge.
type DeleteEdgeRow struct {
	Src, Dst expr.Expression
	Rank     expr.Expression
}

// UpdateClause updates vertex/edge properties in place.
type UpdateClause struct {
	IsEdge   bool
	TagOrEdge string
	ID       expr.Expression // vertex id, or src for edges
	Dst      expr.Expression // edges only
	Rank     expr.Expression // edges only
	Set      map[string]expr.Expression
	Where    expr.Expression
}

func (UpdateClause) clause() {}

// DDLClause is one admin/schema statement (CREATE SPACE, CREATE TAG, ...),
// stubbed at execution per spec.md §9 Open Questions: it produces an
// empty dataset with SUCCEEDED and delegates the side effect to the
// catalog client.
type DDLClause struct {
	Name string
	Args map[string]string
}

func (DDLClause) clause() {}
