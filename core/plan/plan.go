// Package plan defines the operator DAG produced by the validator,
// rewritten in place by the optimizer, and walked by the scheduler.
// Grounded on the teacher's datalog/planner/types.go QueryPlan/Phase
// shape (one struct carrying every kind's fields, populated per kind),
// generalized from a Datalog phase list to a general operator DAG stored
// in a per-query Arena addressed by integer NodeRef handles (spec.md §9:
// "shared ownership via smart pointers" -> "arena + integer handles").
package plan

import (
	"fmt"

	"graphd/core"
	"graphd/core/expr"
)

// Kind tags the operator a Node represents.
type Kind uint8

const (
	KindStart Kind = iota
	KindPassThrough
	KindProject
	KindFilter
	KindLimit
	KindOrderBy
	KindTopN
	KindDedup
	KindUnion
	KindIntersect
	KindMinus
	KindInnerJoin
	KindLeftJoin
	KindCartesianProduct
	KindDataCollect
	KindAggregate
	KindGetNeighbors
	KindGetVertices
	KindGetEdges
	KindIndexScan
	KindLoop
	KindSelect
	KindMultiOutputs
	KindInsertVertices
	KindInsertEdges
	KindDeleteVertices
	KindDeleteTags
	KindDeleteEdges
	KindUpdate
	// DDL/admin leaves, stubbed per spec.md §9 Open Questions: produce an
	// empty dataset with SUCCEEDED and delegate side effects to the
	// catalog client.
	KindCreateSpace
	KindCreateTag
	KindCreateEdge
	KindCreateIndex
	KindShowX
)

func (k Kind) String() string {
	names := [...]string{
		"Start", "PassThrough", "Project", "Filter", "Limit", "OrderBy",
		"TopN", "Dedup", "Union", "Intersect", "Minus", "InnerJoin",
		"LeftJoin", "CartesianProduct", "DataCollect", "Aggregate",
		"GetNeighbors", "GetVertices", "GetEdges", "IndexScan", "Loop",
		"Select", "MultiOutputs", "InsertVertices", "InsertEdges",
		"DeleteVertices", "DeleteTags", "DeleteEdges", "Update",
		"CreateSpace", "CreateTag", "CreateEdge", "CreateIndex", "ShowX",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// IsDDL reports whether this is one of the stubbed DDL/admin leaves.
func (k Kind) IsDDL() bool { return k >= KindCreateSpace }

// NodeRef is an opaque handle into an Arena. The zero value refers to no
// node.
type NodeRef uint64

// OrderTerm is one key of an OrderBy/TopN sort, ascending unless Desc.
type OrderTerm struct {
	Expr expr.Expression
	Desc bool
}

// JoinKey pairs the left/right key expressions for InnerJoin/LeftJoin.
type JoinKey struct {
	Left, Right expr.Expression
}

// AggregateFunc names a single aggregate computed by an Aggregate node.
type AggregateFunc struct {
	Name   string // "count", "sum", "avg", "min", "max", "collect"
	Arg    expr.Expression
	Output string
}

// EdgeSpec selects which edge types (and direction) GetNeighbors/GetEdges
// traverses.
type EdgeSpec struct {
	Types    []int32
	Outbound bool
	Inbound  bool
}

// Node is every plan operator, kept as one struct with kind-specific
// fields populated according to Kind — the same shape the teacher's
// Phase struct uses for its many plan-shaping concerns, generalized to a
// DAG node.
type Node struct {
	ID        NodeRef
	Kind      Kind
	Inputs    []NodeRef
	OutputVar string
	ColNames  []string
	Cost      float64

	// Project
	ProjectExprs []expr.Expression
	ProjectNames []string

	// Filter
	Predicate expr.Expression

	// Limit
	Offset, Count int64

	// OrderBy / TopN
	OrderTerms []OrderTerm
	TopN       int64

	// Dedup: no extra fields, dedups on the full row.

	// InnerJoin / LeftJoin
	JoinKeys []JoinKey

	// GetNeighbors / GetEdges
	Edges    EdgeSpec
	SrcVar   string

	// GetVertices
	VertexIDs []core.VertexID

	// IndexScan
	IndexName string
	TagOrEdge string
	Ranges    []IndexRange
	ReturnCols []string

	// Aggregate
	GroupBy    []expr.Expression
	Aggregates []AggregateFunc

	// Loop
	Condition expr.Expression
	Body      *SubPlan

	// Select
	Then, Else *SubPlan

	// Mutation ops (Insert/Delete/Update)
	Space    string
	Tag      string
	EdgeType string
	Items    []MutationItem
	Upsert   bool

	// DDL leaves
	DDLName string
	DDLArgs map[string]string

	Description []DescriptionEntry
}

// IndexRange describes one scan range over an index.
type IndexRange struct {
	Column     string
	Low, High  core.Value
	LowIncl    bool
	HighIncl   bool
}

// MutationItem is one vertex/edge/tag write, carrying its id/endpoint/
// property expressions unevaluated: literals and bound parameters alike
// are resolved by the operator at execution time (spec.md §4.8), the
// same deferred-evaluation treatment Filter/Project give their
// expressions.
type MutationItem struct {
	VertexID expr.Expression
	Src, Dst expr.Expression
	Rank     expr.Expression
	Props    map[string]expr.Expression
}

// SubPlan is the `{root, tail}` shape the validator chains clauses
// through (spec.md §4.3): root is the terminal node of the subplan, tail
// is the first operator to execute, consuming the upstream chain.
type SubPlan struct {
	Root NodeRef
	Tail NodeRef
}

// DescriptionEntry is one {key, value} pair in a Node's EXPLAIN output.
type DescriptionEntry struct {
	Key, Value string
}

// Arena owns every Node of one query. No node is shared across queries
// (spec.md §3 lifecycle note); the arena is append-only except for
// Replace, which substitutes a node in place so existing NodeRefs held by
// other nodes' Inputs keep resolving correctly after an optimizer
// rewrite.
type Arena struct {
	nodes []*Node
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// New allocates a fresh Node of the given kind and returns its ref.
func (a *Arena) New(kind Kind) *Node {
	n := &Node{ID: NodeRef(len(a.nodes) + 1), Kind: kind}
	a.nodes = append(a.nodes, n)
	return n
}

// Get resolves a NodeRef to its Node, or nil if out of range.
func (a *Arena) Get(ref NodeRef) *Node {
	if ref == 0 || int(ref) > len(a.nodes) {
		return nil
	}
	return a.nodes[ref-1]
}

// Replace substitutes the node at ref with newNode, preserving ref's
// identity so every other node's Inputs referencing it still resolve —
// this is the mechanism optimizer rules use to rewrite the plan in place
// (spec.md §9: "rewrites become context.replace(nodeId, newNode)").
func (a *Arena) Replace(ref NodeRef, newNode *Node) error {
	if ref == 0 || int(ref) > len(a.nodes) {
		return fmt.Errorf("plan: replace: ref %d out of range", ref)
	}
	newNode.ID = ref
	a.nodes[ref-1] = newNode
	return nil
}

// Len returns the number of nodes ever allocated (including any later
// replaced).
func (a *Arena) Len() int { return len(a.nodes) }

// Describe renders a Node's kind-specific metadata as {key,value} pairs
// for EXPLAIN, augmenting any explicitly-set Description.
func (n *Node) Describe() []DescriptionEntry {
	entries := append([]DescriptionEntry(nil), n.Description...)
	switch n.Kind {
	case KindFilter:
		if n.Predicate != nil {
			entries = append(entries, DescriptionEntry{"predicate", n.Predicate.String()})
		}
	case KindLimit:
		entries = append(entries, DescriptionEntry{"offset", fmt.Sprint(n.Offset)}, DescriptionEntry{"count", fmt.Sprint(n.Count)})
	case KindTopN:
		entries = append(entries, DescriptionEntry{"limit", fmt.Sprint(n.TopN)})
	case KindGetNeighbors, KindGetEdges:
		entries = append(entries, DescriptionEntry{"edgeTypes", fmt.Sprint(n.Edges.Types)})
	case KindIndexScan:
		entries = append(entries, DescriptionEntry{"index", n.IndexName})
	}
	return entries
}
