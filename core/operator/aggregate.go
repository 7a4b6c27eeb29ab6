package operator

import (
	"context"
	"fmt"

	"graphd/core"
	"graphd/core/executor"
	"graphd/core/plan"
)

type aggAccumulator struct {
	count int64
	sum   float64
	sumIsFloat bool
	min, max core.Value
	haveMinMax bool
	collected []core.Value
}

func (a *aggAccumulator) add(v core.Value) {
	a.count++
	if v.IsNumeric() {
		n, isFloat := v.Numeric()
		a.sum += n
		a.sumIsFloat = a.sumIsFloat || isFloat
	}
	if !a.haveMinMax || core.CompareValues(v, a.min) < 0 {
		a.min = v
	}
	if !a.haveMinMax || core.CompareValues(v, a.max) > 0 {
		a.max = v
	}
	a.haveMinMax = true
	a.collected = append(a.collected, v)
}

func (a *aggAccumulator) result(fn string) (core.Value, error) {
	switch fn {
	case "count":
		return core.Int(a.count), nil
	case "sum":
		if a.sumIsFloat {
			return core.Float(a.sum), nil
		}
		return core.Int(int64(a.sum)), nil
	case "avg":
		if a.count == 0 {
			return core.NullWith(core.NullDivByZero), nil
		}
		return core.Float(a.sum / float64(a.count)), nil
	case "min":
		if !a.haveMinMax {
			return core.Null(), nil
		}
		return a.min, nil
	case "max":
		if !a.haveMinMax {
			return core.Null(), nil
		}
		return a.max, nil
	case "collect":
		return core.List(append([]core.Value(nil), a.collected...)), nil
	default:
		return core.Value{}, fmt.Errorf("operator: aggregate: unknown function %q", fn)
	}
}

// aggregateOp groups input rows by n.GroupBy and reduces each group
// through n.Aggregates, grounded on aggregation.go's split of find
// elements into group-by variables and FindAggregate functions,
// generalized to an arbitrary expr.Expression per group key rather than
// a bare bound symbol.
func aggregateOp(_ context.Context, ec *executor.ExecContext, n *plan.Node, inputs []*core.DataSet) (*core.DataSet, error) {
	if len(inputs) != 1 {
		return nil, wrongArity(n, len(inputs))
	}
	in := inputs[0]

	colNames := make([]string, 0, len(n.GroupBy)+len(n.Aggregates))
	for i := range n.GroupBy {
		colNames = append(colNames, fmt.Sprintf("group%d", i))
	}
	for _, a := range n.Aggregates {
		colNames = append(colNames, a.Output)
	}
	out := core.NewDataSet(colNames)

	type group struct {
		key  []core.Value
		accs []*aggAccumulator
	}
	order := make([]string, 0)
	groups := make(map[string]*group)

	for _, row := range in.Rows {
		ctx := rowContext(in.ColNames, row, ec)
		key, err := evalExprs(n.GroupBy, ctx)
		if err != nil {
			return nil, err
		}
		sig := rowSignature(core.Row(key))
		g, ok := groups[sig]
		if !ok {
			g = &group{key: key, accs: make([]*aggAccumulator, len(n.Aggregates))}
			for i := range g.accs {
				g.accs[i] = &aggAccumulator{}
			}
			groups[sig] = g
			order = append(order, sig)
		}
		for i, a := range n.Aggregates {
			v, err := a.Arg.Eval(ctx)
			if err != nil {
				return nil, err
			}
			if !v.IsNull() {
				g.accs[i].add(v)
			}
		}
	}

	if len(order) == 0 && len(n.GroupBy) == 0 {
		// No rows and no grouping columns: aggregates over an empty input
		// still produce one row (count=0, sum=0, ...), the ungrouped
		// aggregate edge case spec.md §4.8 calls out.
		g := &group{accs: make([]*aggAccumulator, len(n.Aggregates))}
		for i := range g.accs {
			g.accs[i] = &aggAccumulator{}
		}
		groups[""] = g
		order = append(order, "")
	}

	for _, sig := range order {
		g := groups[sig]
		row := make(core.Row, 0, len(colNames))
		row = append(row, g.key...)
		for i, a := range n.Aggregates {
			v, err := g.accs[i].result(a.Name)
			if err != nil {
				return nil, err
			}
			row = append(row, v)
		}
		out.Append(row)
	}
	return out, nil
}

// dataCollectOp wraps its sole input's rows into one row holding a
// single list-typed column, grounded on spec.md §4.8's DataCollect
// description ("materializes every upstream row into one collected
// list value", the terminal shape a Loop's accumulated body output is
// folded into for a caller that wants one value back).
func dataCollectOp(_ context.Context, _ *executor.ExecContext, n *plan.Node, inputs []*core.DataSet) (*core.DataSet, error) {
	if len(inputs) != 1 {
		return nil, wrongArity(n, len(inputs))
	}
	in := inputs[0]
	items := make([]core.Value, len(in.Rows))
	for i, row := range in.Rows {
		if len(row) == 1 {
			items[i] = row[0]
		} else {
			items[i] = core.List(append([]core.Value(nil), row...))
		}
	}
	colName := "collected"
	if len(n.ColNames) == 1 {
		colName = n.ColNames[0]
	}
	out := core.NewDataSet([]string{colName})
	out.Append(core.Row{core.List(items)})
	return out, nil
}
