package executor

import (
	"sync"

	"graphd/core"
	"graphd/core/catalog"
	"graphd/core/plan"
	"graphd/core/storageclient"
)

// ExecContext is the per-query state threaded through scheduling: the
// catalog handle, bound statement parameters, the operator registry, a
// memory budget, and the result cache — grounded on spec.md §4.5's
// result cache ("the execution context owns a map<variable_name,
// Result>") and the teacher's per-query Context carrying shared
// execution state.
type ExecContext struct {
	Catalog  catalog.Catalog
	Session  catalog.Session
	SpaceID  int32
	Params   map[string]core.Value
	Registry *Registry
	Memory   *MemoryTracker
	Hooks    Context
	Storage  *storageclient.Client

	mu     sync.Mutex
	byNode map[plan.NodeRef]*core.DataSet
	vars   map[string]*core.DataSet
}

// NewExecContext builds a fresh per-query execution context. registry
// may be nil to use DefaultRegistry; memory<=0 disables the memory
// budget; hooks may be nil to use a no-op BaseContext. storage may be
// nil for plans that never reach a GetNeighbors/GetVertices/GetEdges/
// IndexScan/mutation leaf (e.g. pure expression-only statements, or
// tests exercising the scheduler in isolation).
func NewExecContext(cat catalog.Catalog, session catalog.Session, spaceID int32, params map[string]core.Value, registry *Registry, memoryLimit int64, hooks Context, storage *storageclient.Client) *ExecContext {
	if registry == nil {
		registry = DefaultRegistry
	}
	if hooks == nil {
		hooks = BaseContext{}
	}
	return &ExecContext{
		Catalog:  cat,
		Session:  session,
		SpaceID:  spaceID,
		Params:   params,
		Registry: registry,
		Memory:   NewMemoryTracker(memoryLimit),
		Hooks:    hooks,
		Storage:  storage,
		byNode:   make(map[plan.NodeRef]*core.DataSet),
		vars:     make(map[string]*core.DataSet),
	}
}

// getCached returns a node's already-computed output, if any.
func (ec *ExecContext) getCached(ref plan.NodeRef) (*core.DataSet, bool) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ds, ok := ec.byNode[ref]
	return ds, ok
}

// setCached records a node's output and, if it names an output variable,
// makes it available to GetVar/GetVarProp lookups by name. Iterators
// returned over this dataset are expected to be consumed destructively
// by their single reader (spec.md §4.5) — a second reader wanting the
// same rows should copy or re-derive them.
func (ec *ExecContext) setCached(ref plan.NodeRef, outputVar string, ds *core.DataSet) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.byNode[ref] = ds
	if outputVar != "" {
		ec.vars[outputVar] = ds
	}
}

// Var returns the dataset bound to a named variable, if any.
func (ec *ExecContext) Var(name string) (*core.DataSet, bool) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ds, ok := ec.vars[name]
	return ds, ok
}

// clearNode evicts a node's memoized result and, if it names an output
// variable, that variable's binding — used by Loop (execLoop) to force a
// body subtree to recompute on its next iteration rather than replaying a
// prior pass's cached dataset.
func (ec *ExecContext) clearNode(ref plan.NodeRef, outputVar string) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	delete(ec.byNode, ref)
	if outputVar != "" {
		delete(ec.vars, outputVar)
	}
}

// setParam binds a runtime-synthesized parameter (e.g. Loop's iteration
// counter) into Params, lazily allocating the map since a query run with
// no bound parameters leaves it nil.
func (ec *ExecContext) setParam(name string, v core.Value) {
	if ec.Params == nil {
		ec.Params = make(map[string]core.Value)
	}
	ec.Params[name] = v
}
