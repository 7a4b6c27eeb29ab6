package optimizer

import (
	"sort"
	"strings"

	"graphd/core/expr"
	"graphd/core/plan"
)

// DecorrelateSelect and DecorrelateLoop annotate Select/Loop branch
// subplans with the outer variables they read (their "correlation
// vars"), recorded in the branch's Description; the scheduler
// (core/executor) does not read these tags and runs each branch as
// planned — the graph-query analogue of the teacher's
// datalog/planner/decorrelation.go, which groups correlated subqueries
// by a CorrelationSignature (their bound input variables plus whether
// they're a grouped aggregate) so sibling subqueries sharing a signature
// execute together. Patterns elements/DataPattern fingerprinting has no
// analogue here — a branch subplan's correlation vars are simply the
// VarProp/InputProp names it reads that nothing inside the branch itself
// produces.

// correlationVars returns, sorted, every variable name referenced inside
// a branch subplan that is not itself written by a node within that
// subplan — i.e. the names the branch must receive from its enclosing
// row.
func correlationVars(a *plan.Arena, sub *plan.SubPlan) []string {
	if sub == nil {
		return nil
	}
	bound := make(map[string]bool)
	free := make(map[string]bool)
	for _, ref := range reachable(a, sub.Root) {
		n := a.Get(ref)
		if n == nil {
			continue
		}
		if n.OutputVar != "" {
			bound[n.OutputVar] = true
		}
		for _, e := range exprsOf(n) {
			collectVarNames(e, free)
		}
	}
	var out []string
	for name := range free {
		if !bound[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// reachable returns every node ref in the subtree rooted at root.
func reachable(a *plan.Arena, root plan.NodeRef) []plan.NodeRef {
	var out []plan.NodeRef
	seen := make(map[plan.NodeRef]bool)
	var visit func(plan.NodeRef)
	visit = func(ref plan.NodeRef) {
		if ref == 0 || seen[ref] {
			return
		}
		seen[ref] = true
		n := a.Get(ref)
		if n == nil {
			return
		}
		out = append(out, ref)
		for _, in := range n.Inputs {
			visit(in)
		}
	}
	visit(root)
	return out
}

// exprsOf collects every top-level expression a node directly carries.
func exprsOf(n *plan.Node) []expr.Expression {
	var out []expr.Expression
	if n.Predicate != nil {
		out = append(out, n.Predicate)
	}
	if n.Condition != nil {
		out = append(out, n.Condition)
	}
	out = append(out, n.ProjectExprs...)
	out = append(out, n.GroupBy...)
	for _, t := range n.OrderTerms {
		if t.Expr != nil {
			out = append(out, t.Expr)
		}
	}
	for _, agg := range n.Aggregates {
		if agg.Arg != nil {
			out = append(out, agg.Arg)
		}
	}
	for _, jk := range n.JoinKeys {
		if jk.Left != nil {
			out = append(out, jk.Left)
		}
		if jk.Right != nil {
			out = append(out, jk.Right)
		}
	}
	return out
}

func collectVarNames(e expr.Expression, into map[string]bool) {
	e.Visit(func(node expr.Expression) bool {
		switch t := node.(type) {
		case expr.VarProp:
			into[t.Var] = true
		case expr.InputProp:
			into[t.Prop] = true
		}
		return true
	})
}

// DecorrelateSelect tags a Select node's Then/Else branches with their
// correlation vars, once per branch, so a later scheduling pass can
// group sibling Select evaluations by those vars instead of re-running
// each branch once per row.
func DecorrelateSelect() Rule {
	return Rule{
		Name: "DecorrelateSelect",
		Match: func(a *plan.Arena, ref plan.NodeRef) bool {
			n := a.Get(ref)
			return n != nil && n.Kind == plan.KindSelect && (n.Then != nil || n.Else != nil) && !hasCorrelationTag(n)
		},
		Transform: func(a *plan.Arena, ref plan.NodeRef) (*plan.Node, bool) {
			n := a.Get(ref)
			merged := *n
			merged.Description = append(append([]plan.DescriptionEntry(nil), n.Description...),
				plan.DescriptionEntry{Key: "thenCorrelationVars", Value: joinVars(correlationVars(a, n.Then))},
				plan.DescriptionEntry{Key: "elseCorrelationVars", Value: joinVars(correlationVars(a, n.Else))},
			)
			return &merged, true
		},
	}
}

// DecorrelateLoop tags a Loop node's Body with its correlation vars.
func DecorrelateLoop() Rule {
	return Rule{
		Name: "DecorrelateLoop",
		Match: func(a *plan.Arena, ref plan.NodeRef) bool {
			n := a.Get(ref)
			return n != nil && n.Kind == plan.KindLoop && n.Body != nil && !hasCorrelationTag(n)
		},
		Transform: func(a *plan.Arena, ref plan.NodeRef) (*plan.Node, bool) {
			n := a.Get(ref)
			merged := *n
			merged.Description = append(append([]plan.DescriptionEntry(nil), n.Description...),
				plan.DescriptionEntry{Key: "bodyCorrelationVars", Value: joinVars(correlationVars(a, n.Body))},
			)
			return &merged, true
		},
	}
}

func hasCorrelationTag(n *plan.Node) bool {
	for _, d := range n.Description {
		if strings.HasSuffix(d.Key, "CorrelationVars") {
			return true
		}
	}
	return false
}

func joinVars(vars []string) string {
	return strings.Join(vars, ",")
}
