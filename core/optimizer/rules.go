package optimizer

import (
	"graphd/core/expr"
	"graphd/core/plan"
)

// and combines two predicates with AND, or returns whichever side is
// non-nil if only one is set.
func and(a, b expr.Expression) expr.Expression {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return expr.BinaryLogical{Op: expr.LogicalAnd, Left: a, Right: b}
}

// onlyChild returns the single upstream input of n, or 0 if n doesn't
// have exactly one.
func onlyChild(n *plan.Node) plan.NodeRef {
	if len(n.Inputs) != 1 {
		return 0
	}
	return n.Inputs[0]
}

// CollapseProject merges a Project directly feeding another Project into
// one node, grounded on predicate_rewriter.go's adjacent-phase merging.
// The lower Project's columns disappear once its node is removed, so the
// upper's expressions are rewritten to reference whatever the lower
// computed for each column it read, through substituteColumnRefs.
func CollapseProject() Rule {
	return Rule{
		Name: "CollapseProject",
		Match: func(a *plan.Arena, ref plan.NodeRef) bool {
			n := a.Get(ref)
			if n == nil || n.Kind != plan.KindProject {
				return false
			}
			child := a.Get(onlyChild(n))
			return child != nil && child.Kind == plan.KindProject
		},
		Transform: func(a *plan.Arena, ref plan.NodeRef) (*plan.Node, bool) {
			n := a.Get(ref)
			child := a.Get(onlyChild(n))

			subst := make(map[string]expr.Expression, len(child.ProjectNames))
			for i, name := range child.ProjectNames {
				subst[name] = child.ProjectExprs[i]
			}
			var sole expr.Expression
			if len(child.ProjectNames) == 1 {
				sole = child.ProjectExprs[0]
			}

			merged := *n
			merged.Inputs = child.Inputs
			merged.ProjectExprs = make([]expr.Expression, len(n.ProjectExprs))
			for i, e := range n.ProjectExprs {
				merged.ProjectExprs[i] = substituteColumnRefs(e, subst, sole)
			}
			return &merged, true
		},
	}
}

// substituteColumnRefs rewrites every VarProp/InputProp in e that names a
// column the lower Project produced into a reference against whatever
// expression computed that column, so the fused Project no longer depends
// on the node CollapseProject is removing. VarProp matches by variable
// name; InputProp matches the lower's sole output column, mirroring
// RowContext.GetInputProp's fallback to a dataset's one column.
func substituteColumnRefs(e expr.Expression, subst map[string]expr.Expression, sole expr.Expression) expr.Expression {
	return expr.Rewrite(e, func(node expr.Expression) expr.Expression {
		switch t := node.(type) {
		case expr.VarProp:
			if repl, ok := subst[t.Var]; ok {
				return composeProp(repl, t.Prop)
			}
		case expr.InputProp:
			if sole != nil {
				return composeProp(sole, t.Prop)
			}
		}
		return node
	})
}

// composeProp reads prop off repl. An empty prop is a whole-value
// reference, so repl is substituted in outright; a non-empty prop composes
// through a rename chain (repl itself a whole-value VarProp/InputProp) by
// rewriting prop onto repl's own variable, since this expression tree has
// no generic "property of an arbitrary subexpression" node; any other repl
// is returned as-is, since accessing a further property of a computed
// value has no representation here.
func composeProp(repl expr.Expression, prop string) expr.Expression {
	if prop == "" {
		return repl
	}
	switch r := repl.(type) {
	case expr.VarProp:
		if r.Prop == "" {
			return expr.VarProp{Var: r.Var, Prop: prop}
		}
	case expr.InputProp:
		if r.Prop == "" {
			return expr.InputProp{Prop: prop}
		}
	}
	return repl
}

// PushFilterDownGetNeighbors moves a Filter's predicate onto the
// GetNeighbors node it directly wraps, letting the traversal operator
// itself discard non-matching neighbors instead of materializing every
// hop first. Grounded on predicate_rewriter.go's pushdown-past-pattern
// pass, generalized from Datalog pattern clauses to GetNeighbors.
func PushFilterDownGetNeighbors() Rule {
	return Rule{
		Name: "PushFilterDownGetNeighbors",
		Match: func(a *plan.Arena, ref plan.NodeRef) bool {
			n := a.Get(ref)
			if n == nil || n.Kind != plan.KindFilter {
				return false
			}
			child := a.Get(onlyChild(n))
			return child != nil && child.Kind == plan.KindGetNeighbors
		},
		Transform: func(a *plan.Arena, ref plan.NodeRef) (*plan.Node, bool) {
			n := a.Get(ref)
			childRef := onlyChild(n)
			child := a.Get(childRef)
			merged := *child
			merged.Predicate = and(child.Predicate, n.Predicate)
			return &merged, true
		},
	}
}

// PushFilterDownLeftJoin moves a post-join filter onto the LeftJoin node
// itself, evaluated during the join rather than as a separate pass over
// its output. Grounded on predicate_rewriter.go's join-predicate
// attachment.
func PushFilterDownLeftJoin() Rule {
	return Rule{
		Name: "PushFilterDownLeftJoin",
		Match: func(a *plan.Arena, ref plan.NodeRef) bool {
			n := a.Get(ref)
			if n == nil || n.Kind != plan.KindFilter {
				return false
			}
			child := a.Get(onlyChild(n))
			return child != nil && child.Kind == plan.KindLeftJoin
		},
		Transform: func(a *plan.Arena, ref plan.NodeRef) (*plan.Node, bool) {
			n := a.Get(ref)
			childRef := onlyChild(n)
			child := a.Get(childRef)
			merged := *child
			merged.Predicate = and(child.Predicate, n.Predicate)
			return &merged, true
		},
	}
}

// PushFilterDownAggregate pushes a filter below an Aggregate when the
// predicate only reaches variables the aggregate groups by (never an
// aggregate's own output), so filtering before aggregation discards rows
// earlier without changing which groups survive. Grounded on
// phase_reordering.go's available-before-provides check, here checking
// the predicate's VarProp/InputProp names against the aggregate's output
// columns rather than Phase.Available.
func PushFilterDownAggregate() Rule {
	return Rule{
		Name: "PushFilterDownAggregate",
		Match: func(a *plan.Arena, ref plan.NodeRef) bool {
			n := a.Get(ref)
			if n == nil || n.Kind != plan.KindFilter || n.Predicate == nil {
				return false
			}
			child := a.Get(onlyChild(n))
			if child == nil || child.Kind != plan.KindAggregate {
				return false
			}
			return !referencesAny(n.Predicate, aggregateOutputNames(child))
		},
		Transform: func(a *plan.Arena, ref plan.NodeRef) (*plan.Node, bool) {
			n := a.Get(ref)
			childRef := onlyChild(n)
			child := a.Get(childRef)

			pushedFilter := a.New(plan.KindFilter)
			pushedFilter.Inputs = child.Inputs
			pushedFilter.Predicate = n.Predicate
			pushedFilter.ColNames = inputColNames(a, child.Inputs)

			newAgg := *child
			newAgg.Inputs = []plan.NodeRef{pushedFilter.ID}
			return &newAgg, true
		},
	}
}

func inputColNames(a *plan.Arena, inputs []plan.NodeRef) []string {
	if len(inputs) != 1 {
		return nil
	}
	if in := a.Get(inputs[0]); in != nil {
		return in.ColNames
	}
	return nil
}

func aggregateOutputNames(n *plan.Node) map[string]bool {
	names := make(map[string]bool, len(n.Aggregates))
	for _, agg := range n.Aggregates {
		names[agg.Output] = true
	}
	return names
}

// referencesAny reports whether e reads a VarProp/InputProp whose name is
// in names.
func referencesAny(e expr.Expression, names map[string]bool) bool {
	found := false
	e.Visit(func(node expr.Expression) bool {
		switch t := node.(type) {
		case expr.VarProp:
			if names[t.Prop] {
				found = true
			}
		case expr.InputProp:
			if names[t.Prop] {
				found = true
			}
		}
		return !found
	})
	return found
}

// OptimizeTagIndexScanByFilter folds a Filter's relational comparison on
// an indexed column into the IndexScan's own Ranges, so the scan itself
// bounds what it reads instead of reading a full column scan and
// discarding rows after the fact. Grounded on
// datalog/storage/matcher.go's range-constrained lookup construction.
func OptimizeTagIndexScanByFilter() Rule {
	return Rule{
		Name: "OptimizeTagIndexScanByFilter",
		Match: func(a *plan.Arena, ref plan.NodeRef) bool {
			n := a.Get(ref)
			if n == nil || n.Kind != plan.KindFilter {
				return false
			}
			child := a.Get(onlyChild(n))
			if child == nil || child.Kind != plan.KindIndexScan {
				return false
			}
			_, ok := rangeFromPredicate(n.Predicate)
			return ok
		},
		Transform: func(a *plan.Arena, ref plan.NodeRef) (*plan.Node, bool) {
			n := a.Get(ref)
			childRef := onlyChild(n)
			child := a.Get(childRef)
			r, ok := rangeFromPredicate(n.Predicate)
			if !ok {
				return nil, false
			}
			merged := *child
			merged.Ranges = append(append([]plan.IndexRange(nil), child.Ranges...), r)
			return &merged, true
		},
	}
}

// rangeFromPredicate recognizes `col <op> constant` / `constant <op> col`
// shaped predicates and turns them into an IndexRange; anything else is
// left for a later Filter pass to evaluate directly.
func rangeFromPredicate(e expr.Expression) (plan.IndexRange, bool) {
	rel, ok := e.(expr.BinaryRelational)
	if !ok {
		return plan.IndexRange{}, false
	}
	prop, constVal, flipped, ok := splitColumnConstant(rel.Left, rel.Right)
	if !ok {
		return plan.IndexRange{}, false
	}
	op := rel.Op
	if flipped {
		op = flipRelational(op)
	}
	r := plan.IndexRange{Column: prop}
	switch op {
	case expr.RelEQ:
		r.Low, r.High = constVal.Value, constVal.Value
		r.LowIncl, r.HighIncl = true, true
	case expr.RelLT:
		r.High = constVal.Value
	case expr.RelLTE:
		r.High = constVal.Value
		r.HighIncl = true
	case expr.RelGT:
		r.Low = constVal.Value
	case expr.RelGTE:
		r.Low = constVal.Value
		r.LowIncl = true
	default:
		return plan.IndexRange{}, false
	}
	return r, true
}

func splitColumnConstant(left, right expr.Expression) (prop string, constVal expr.Constant, flipped bool, ok bool) {
	if vp, isVar := left.(expr.VarProp); isVar {
		if c, isConst := right.(expr.Constant); isConst {
			return vp.Prop, c, false, true
		}
	}
	if vp, isVar := right.(expr.VarProp); isVar {
		if c, isConst := left.(expr.Constant); isConst {
			return vp.Prop, c, true, true
		}
	}
	return "", expr.Constant{}, false, false
}

func flipRelational(op expr.RelationalOp) expr.RelationalOp {
	switch op {
	case expr.RelLT:
		return expr.RelGT
	case expr.RelLTE:
		return expr.RelGTE
	case expr.RelGT:
		return expr.RelLT
	case expr.RelGTE:
		return expr.RelLTE
	default:
		return op
	}
}

// PushTopNDownIndexRangeScan pushes a TopN's limit into an upstream
// IndexScan whose own lead OrderTerm matches the TopN's, so the scan can
// stop early instead of reading every row in range before truncating.
// Grounded on matcher.go's early-termination-on-limit scan behavior.
func PushTopNDownIndexRangeScan() Rule {
	return Rule{
		Name: "PushTopNDownIndexRangeScan",
		Match: func(a *plan.Arena, ref plan.NodeRef) bool {
			n := a.Get(ref)
			if n == nil || n.Kind != plan.KindTopN || len(n.OrderTerms) == 0 {
				return false
			}
			child := a.Get(onlyChild(n))
			if child == nil || child.Kind != plan.KindIndexScan {
				return false
			}
			vp, ok := n.OrderTerms[0].Expr.(expr.VarProp)
			return ok && vp.Prop == leadRangeColumn(child)
		},
		Transform: func(a *plan.Arena, ref plan.NodeRef) (*plan.Node, bool) {
			n := a.Get(ref)
			childRef := onlyChild(n)
			child := a.Get(childRef)
			merged := *child
			merged.TopN = n.TopN
			return &merged, true
		},
	}
}

func leadRangeColumn(n *plan.Node) string {
	if len(n.Ranges) == 0 {
		return ""
	}
	return n.Ranges[0].Column
}

// IndexFullScan marks an IndexScan with no Ranges as a full scan in its
// EXPLAIN description, the graph-query analogue of the teacher's
// full-table-scan warning in matcher.go when a query supplies no
// selective clause.
func IndexFullScan() Rule {
	return Rule{
		Name: "IndexFullScan",
		Match: func(a *plan.Arena, ref plan.NodeRef) bool {
			n := a.Get(ref)
			if n == nil || n.Kind != plan.KindIndexScan {
				return false
			}
			if len(n.Ranges) != 0 {
				return false
			}
			for _, d := range n.Description {
				if d.Key == "scan" {
					return false
				}
			}
			return true
		},
		Transform: func(a *plan.Arena, ref plan.NodeRef) (*plan.Node, bool) {
			n := a.Get(ref)
			merged := *n
			merged.Description = append(append([]plan.DescriptionEntry(nil), n.Description...),
				plan.DescriptionEntry{Key: "scan", Value: "full"})
			return &merged, true
		},
	}
}
