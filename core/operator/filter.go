package operator

import (
	"context"

	"graphd/core"
	"graphd/core/executor"
	"graphd/core/expr"
	"graphd/core/plan"
)

// filterOp keeps the rows whose n.Predicate evaluates truthy, grounded on
// the teacher's filter.go ComparisonFilter/BinaryFilter.Evaluate shape,
// generalized to a single arbitrary expr.Expression rather than a closed
// set of filter kinds. A predicate that evaluates to null or a non-bool
// is treated as false, the three-valued-logic rule spec.md §4.1 gives
// WHERE clauses.
func filterOp(_ context.Context, ec *executor.ExecContext, n *plan.Node, inputs []*core.DataSet) (*core.DataSet, error) {
	if len(inputs) != 1 {
		return nil, wrongArity(n, len(inputs))
	}
	in := inputs[0]
	out := core.NewDataSet(in.ColNames)
	for _, row := range in.Rows {
		keep, err := evalPredicate(n.Predicate, in.ColNames, row, ec)
		if err != nil {
			return nil, err
		}
		if keep {
			out.Append(row)
		}
	}
	return out, nil
}

func evalPredicate(e expr.Expression, colNames []string, row core.Row, ec *executor.ExecContext) (bool, error) {
	v, err := e.Eval(rowContext(colNames, row, ec))
	if err != nil {
		return false, err
	}
	return !v.IsNull() && v.Kind() == core.KindBool && v.AsBool(), nil
}
