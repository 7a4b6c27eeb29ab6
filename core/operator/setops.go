package operator

import (
	"context"

	"graphd/core"
	"graphd/core/executor"
	"graphd/core/plan"
)

// unionOp concatenates every input deduplicated by full-row signature,
// grounded on the teacher's streaming_union.go/union_relation.go
// UnionRelation, generalized from two-ary to n-ary since spec.md §4.8
// allows Union over any number of same-shaped inputs.
func unionOp(_ context.Context, _ *executor.ExecContext, n *plan.Node, inputs []*core.DataSet) (*core.DataSet, error) {
	if len(inputs) == 0 {
		return nil, wrongArity(n, 0)
	}
	out := core.NewDataSet(inputs[0].ColNames)
	seen := make(map[string]struct{})
	for _, in := range inputs {
		if in == nil {
			continue
		}
		for _, row := range in.Rows {
			sig := rowSignature(row)
			if _, ok := seen[sig]; ok {
				continue
			}
			seen[sig] = struct{}{}
			out.Append(row)
		}
	}
	return out, nil
}

// intersectOp keeps rows of the first input whose signature also appears
// in every other input, grounded on the same UnionRelation family
// generalized to set intersection.
func intersectOp(_ context.Context, _ *executor.ExecContext, n *plan.Node, inputs []*core.DataSet) (*core.DataSet, error) {
	if len(inputs) < 2 {
		return nil, wrongArity(n, len(inputs))
	}
	others := make([]map[string]struct{}, len(inputs)-1)
	for i, in := range inputs[1:] {
		set := make(map[string]struct{}, len(in.Rows))
		for _, row := range in.Rows {
			set[rowSignature(row)] = struct{}{}
		}
		others[i] = set
	}
	out := core.NewDataSet(inputs[0].ColNames)
	emitted := make(map[string]struct{})
	for _, row := range inputs[0].Rows {
		sig := rowSignature(row)
		if _, ok := emitted[sig]; ok {
			continue
		}
		inAll := true
		for _, set := range others {
			if _, ok := set[sig]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			emitted[sig] = struct{}{}
			out.Append(row)
		}
	}
	return out, nil
}

// minusOp keeps rows of the first input whose signature does not appear
// in any other input (set difference).
func minusOp(_ context.Context, _ *executor.ExecContext, n *plan.Node, inputs []*core.DataSet) (*core.DataSet, error) {
	if len(inputs) < 2 {
		return nil, wrongArity(n, len(inputs))
	}
	exclude := make(map[string]struct{})
	for _, in := range inputs[1:] {
		for _, row := range in.Rows {
			exclude[rowSignature(row)] = struct{}{}
		}
	}
	out := core.NewDataSet(inputs[0].ColNames)
	emitted := make(map[string]struct{})
	for _, row := range inputs[0].Rows {
		sig := rowSignature(row)
		if _, ok := exclude[sig]; ok {
			continue
		}
		if _, ok := emitted[sig]; ok {
			continue
		}
		emitted[sig] = struct{}{}
		out.Append(row)
	}
	return out, nil
}
