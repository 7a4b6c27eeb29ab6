package commands

import (
	"fmt"

	"graphd/core"
	"graphd/core/expr"
	"graphd/core/service"
)

// vertexIDExprs wraps each id string as the literal constant expression
// ast.FetchClause/DeleteVerticesClause expect (the validator only accepts
// a literal constant for an id list, per lower.go's literalVertexID).
func vertexIDExprs(ids ...string) []expr.Expression {
	out := make([]expr.Expression, len(ids))
	for i, id := range ids {
		out[i] = expr.Constant{Value: core.Str(id)}
	}
	return out
}

// statusOrErr turns a failed ExecutionResponse or a transport-level err
// into a single error, or nil when resp succeeded.
func statusOrErr(resp service.ExecutionResponse, err error) error {
	if err != nil {
		return err
	}
	if !resp.Status.IsOK() {
		return fmt.Errorf("%s", resp.Status.Error())
	}
	return nil
}
