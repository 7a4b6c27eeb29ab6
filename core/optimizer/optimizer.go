// Package optimizer rewrites a validated plan in place, applying a fixed
// set of pattern/transform rules to a fixed point (or a safety iteration
// cap), grounded on the teacher's datalog/planner/phase_reordering.go and
// predicate_rewriter.go fixed-point rewrite loops, generalized from a
// Datalog phase list to the plan.Arena/plan.NodeRef DAG (spec.md §4.4).
package optimizer

import (
	"fmt"

	"graphd/core/plan"
)

// Rule is one pattern/transform pair the optimizer tries against every
// node in the plan. Match reports whether Transform should run on this
// node; Transform returns the replacement node (or nil if it declines to
// rewrite after all, which Match should generally prevent) and whether it
// actually changed anything.
type Rule struct {
	Name      string
	Match     func(a *plan.Arena, ref plan.NodeRef) bool
	Transform func(a *plan.Arena, ref plan.NodeRef) (*plan.Node, bool)
}

// DefaultRules is every rule named in spec.md §4.4's table, in this
// order: the filter pushdowns, then the index-scan rules, then projection
// collapsing, then the decorrelation rules.
func DefaultRules() []Rule {
	return []Rule{
		PushFilterDownGetNeighbors(),
		PushFilterDownLeftJoin(),
		PushFilterDownAggregate(),
		OptimizeTagIndexScanByFilter(),
		PushTopNDownIndexRangeScan(),
		IndexFullScan(),
		CollapseProject(),
		DecorrelateSelect(),
		DecorrelateLoop(),
	}
}

// MaxIterations bounds the fixed-point loop so a pair of rules that
// happen to keep re-triggering each other cannot spin forever, mirroring
// the teacher's phase_reordering.go iteration cap.
const MaxIterations = 32

// Optimize walks every node reachable from root, applying rules bottom-up
// (children before parents, so a rewritten child is what the parent sees
// next pass) until no rule changes anything or MaxIterations is hit.
// Loop/Select branch subplans are optimized independently, since they are
// separate SubPlan roots.
func Optimize(a *plan.Arena, root plan.NodeRef, rules []Rule) (plan.NodeRef, error) {
	for iter := 0; iter < MaxIterations; iter++ {
		changed := false
		order := postOrder(a, root)
		for _, ref := range order {
			n := a.Get(ref)
			if n == nil {
				continue
			}
			if n.Body != nil {
				if _, err := Optimize(a, n.Body.Root, rules); err != nil {
					return 0, err
				}
			}
			if n.Then != nil {
				if _, err := Optimize(a, n.Then.Root, rules); err != nil {
					return 0, err
				}
			}
			if n.Else != nil {
				if _, err := Optimize(a, n.Else.Root, rules); err != nil {
					return 0, err
				}
			}
			for _, rule := range rules {
				if !rule.Match(a, ref) {
					continue
				}
				newNode, did := rule.Transform(a, ref)
				if !did {
					continue
				}
				if err := a.Replace(ref, newNode); err != nil {
					return 0, fmt.Errorf("optimizer: rule %s: %w", rule.Name, err)
				}
				changed = true
			}
		}
		if !changed {
			return root, nil
		}
	}
	return root, nil
}

// postOrder returns every node ref reachable from root, children before
// parents, visiting each ref at most once.
func postOrder(a *plan.Arena, root plan.NodeRef) []plan.NodeRef {
	var order []plan.NodeRef
	seen := make(map[plan.NodeRef]bool)
	var visit func(ref plan.NodeRef)
	visit = func(ref plan.NodeRef) {
		if ref == 0 || seen[ref] {
			return
		}
		seen[ref] = true
		n := a.Get(ref)
		if n == nil {
			return
		}
		for _, in := range n.Inputs {
			visit(in)
		}
		order = append(order, ref)
	}
	visit(root)
	return order
}
