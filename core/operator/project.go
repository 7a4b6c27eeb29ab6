package operator

import (
	"context"

	"graphd/core"
	"graphd/core/executor"
	"graphd/core/plan"
)

// projectOp evaluates n.ProjectExprs against every input row, grounded on
// the teacher's relation.go Project (re-shape columns row by row), with
// the output column names taken from n.ProjectNames rather than derived
// from the source symbols since this plan carries explicit aliases.
func projectOp(_ context.Context, ec *executor.ExecContext, n *plan.Node, inputs []*core.DataSet) (*core.DataSet, error) {
	if len(inputs) != 1 {
		return nil, wrongArity(n, len(inputs))
	}
	in := inputs[0]
	out := core.NewDataSet(n.ProjectNames)
	for _, row := range in.Rows {
		vals, err := evalExprs(n.ProjectExprs, rowContext(in.ColNames, row, ec))
		if err != nil {
			return nil, err
		}
		out.Append(core.Row(vals))
	}
	return out, nil
}
