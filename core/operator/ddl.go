package operator

import (
	"context"

	"graphd/core"
	"graphd/core/executor"
	"graphd/core/plan"
)

// ddlOp handles every CreateSpace/CreateTag/CreateEdge/CreateIndex/ShowX
// leaf the same way: produce an empty SUCCEEDED dataset and leave the
// actual catalog mutation to a dedicated admin client, per spec.md §9's
// Open Questions resolution for DDL/admin statements ("out of scope for
// the query-execution core; the executor only needs to not choke on
// them").
func ddlOp(_ context.Context, _ *executor.ExecContext, n *plan.Node, _ []*core.DataSet) (*core.DataSet, error) {
	cols := n.ColNames
	if len(cols) == 0 {
		cols = []string{"status"}
	}
	out := core.NewDataSet(cols)
	out.Append(core.Row{core.Str(core.SUCCEEDED.String())})
	return out, nil
}
