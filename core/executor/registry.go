package executor

import (
	"context"
	"sync"

	"graphd/core"
	"graphd/core/plan"
)

// OperatorFunc runs one plan.Node given its already-executed input
// datasets, returning the node's output dataset. Implemented per Kind by
// core/operator and registered into a Registry at package init, mirroring
// the registry-of-named-implementations shape of core/expr's function
// Registry (itself grounded on the teacher's function_registry.go).
type OperatorFunc func(ctx context.Context, ec *ExecContext, n *plan.Node, inputs []*core.DataSet) (*core.DataSet, error)

// Registry maps a plan.Kind to the operator implementation that executes
// it. core/executor never imports core/operator (core/operator imports
// core/executor to register itself), avoiding an import cycle the same
// way planner and executor stay decoupled in the teacher via an
// interface boundary.
type Registry struct {
	mu  sync.RWMutex
	ops map[plan.Kind]OperatorFunc
}

// NewRegistry returns an empty operator registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[plan.Kind]OperatorFunc)}
}

// Register binds an operator implementation to a Kind, overwriting any
// previous binding.
func (r *Registry) Register(kind plan.Kind, fn OperatorFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[kind] = fn
}

// Lookup returns the operator bound to kind, if any.
func (r *Registry) Lookup(kind plan.Kind) (OperatorFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.ops[kind]
	return fn, ok
}

// DefaultRegistry is the process-wide registry core/operator populates
// via init(), used by callers that don't construct their own Scheduler
// with a dedicated Registry (tests may prefer an isolated one).
var DefaultRegistry = NewRegistry()
