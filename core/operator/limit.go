package operator

import (
	"context"
	"sort"

	"graphd/core"
	"graphd/core/executor"
	"graphd/core/plan"
)

// limitOp applies an offset/count window over the input rows, grounded
// on the teacher's LimitIterator (iterator_composition.go) skip-then-take
// shape.
func limitOp(_ context.Context, _ *executor.ExecContext, n *plan.Node, inputs []*core.DataSet) (*core.DataSet, error) {
	if len(inputs) != 1 {
		return nil, wrongArity(n, len(inputs))
	}
	in := inputs[0]
	out := core.NewDataSet(in.ColNames)
	start := int(n.Offset)
	if start < 0 {
		start = 0
	}
	if start >= len(in.Rows) {
		return out, nil
	}
	end := len(in.Rows)
	if n.Count >= 0 && start+int(n.Count) < end {
		end = start + int(n.Count)
	}
	out.Rows = append(out.Rows, in.Rows[start:end]...)
	return out, nil
}

// sortKeys evaluates a set of OrderTerms once per row up front, so the
// comparisons in lessByKeys never re-evaluate an expression.
func sortKeys(terms []plan.OrderTerm, colNames []string, rows []core.Row, ec *executor.ExecContext) ([][]core.Value, error) {
	keys := make([][]core.Value, len(rows))
	for i, row := range rows {
		ctx := rowContext(colNames, row, ec)
		vals := make([]core.Value, len(terms))
		for j, t := range terms {
			v, err := t.Expr.Eval(ctx)
			if err != nil {
				return nil, err
			}
			vals[j] = v
		}
		keys[i] = vals
	}
	return keys, nil
}

func lessByKeys(terms []plan.OrderTerm, a, b []core.Value) bool {
	for i, t := range terms {
		c := core.CompareValues(a[i], b[i])
		if c == 0 {
			continue
		}
		if t.Desc {
			return c > 0
		}
		return c < 0
	}
	return false
}

// orderByOp sorts the input by n.OrderTerms, grounded on the teacher's
// SortIterator materialize-then-sort.Slice approach.
func orderByOp(_ context.Context, ec *executor.ExecContext, n *plan.Node, inputs []*core.DataSet) (*core.DataSet, error) {
	if len(inputs) != 1 {
		return nil, wrongArity(n, len(inputs))
	}
	in := inputs[0]
	out := core.NewDataSet(in.ColNames)
	out.Rows = append(out.Rows, in.Rows...)

	keys, err := sortKeys(n.OrderTerms, in.ColNames, out.Rows, ec)
	if err != nil {
		return nil, err
	}
	idx := make([]int, len(out.Rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return lessByKeys(n.OrderTerms, keys[idx[i]], keys[idx[j]]) })
	sorted := make([]core.Row, len(out.Rows))
	for i, k := range idx {
		sorted[i] = out.Rows[k]
	}
	out.Rows = sorted
	return out, nil
}

// topNOp sorts by n.OrderTerms and keeps the first n.TopN rows: a full
// orderByOp sort followed by truncation, not a bounded single pass.
func topNOp(ctx context.Context, ec *executor.ExecContext, n *plan.Node, inputs []*core.DataSet) (*core.DataSet, error) {
	sorted, err := orderByOp(ctx, ec, n, inputs)
	if err != nil {
		return nil, err
	}
	if int64(len(sorted.Rows)) > n.TopN && n.TopN >= 0 {
		sorted.Rows = sorted.Rows[:n.TopN]
	}
	return sorted, nil
}

// rowSignature renders a row as a comparable string key for Dedup/set
// operators, a simplification of the teacher's TupleKey (tuple_key.go)
// FNV hash-over-interned-pointers scheme: correctness matters more than
// the teacher's allocation-avoidance here, since plan.Node fields are
// already boxed core.Value, not the teacher's interned *datalog.Identity.
func rowSignature(row core.Row) string {
	var b []byte
	for _, v := range row {
		b = append(b, byte(v.Kind()))
		b = append(b, v.String()...)
		b = append(b, 0)
	}
	return string(b)
}

// dedupOp removes rows whose full signature has already been seen,
// preserving first-occurrence order, grounded on the teacher's
// DedupIterator (iterator_composition.go).
func dedupOp(_ context.Context, _ *executor.ExecContext, n *plan.Node, inputs []*core.DataSet) (*core.DataSet, error) {
	if len(inputs) != 1 {
		return nil, wrongArity(n, len(inputs))
	}
	in := inputs[0]
	out := core.NewDataSet(in.ColNames)
	seen := make(map[string]struct{}, len(in.Rows))
	for _, row := range in.Rows {
		sig := rowSignature(row)
		if _, ok := seen[sig]; ok {
			continue
		}
		seen[sig] = struct{}{}
		out.Append(row)
	}
	return out, nil
}
