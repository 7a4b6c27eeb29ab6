package validator

import (
	"fmt"

	"graphd/core"
	"graphd/core/plan"
)

// SemanticError reports a syntax-valid but semantically invalid query,
// naming the first offending node (spec.md §4.3 failure modes).
type SemanticError struct {
	Node    plan.NodeRef
	Message string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("semantic error at node %d: %s", e.Node, e.Message)
}

func (e *SemanticError) Status() core.Status {
	return core.NewStatus(core.SEMANTIC_ERROR, "%s", e.Error())
}

// SymbolNotFound reports a reference to an undeclared variable.
type SymbolNotFound struct {
	Name string
}

func (e *SymbolNotFound) Error() string {
	return fmt.Sprintf("symbol not found: %s", e.Name)
}

func (e *SymbolNotFound) Status() core.Status {
	return core.NewStatus(core.SEMANTIC_ERROR, "%s", e.Error())
}

// AmbiguousColumn reports a projected column name that resolves to more
// than one source.
type AmbiguousColumn struct {
	Name string
}

func (e *AmbiguousColumn) Error() string {
	return fmt.Sprintf("ambiguous column: %s", e.Name)
}

func (e *AmbiguousColumn) Status() core.Status {
	return core.NewStatus(core.SEMANTIC_ERROR, "%s", e.Error())
}

// TypeMismatch reports an unsupported or ill-typed cast/comparison caught
// at validation time rather than left to fail at evaluation.
type TypeMismatch struct {
	Context string
	From    core.ValueKind
	To      core.ValueKind
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch in %s: cannot use %s as %s", e.Context, e.From.TypeName(), e.To.TypeName())
}

func (e *TypeMismatch) Status() core.Status {
	return core.NewStatus(core.SEMANTIC_ERROR, "%s", e.Error())
}
