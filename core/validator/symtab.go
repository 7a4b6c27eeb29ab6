// Package validator lowers a parsed AST (core/ast) into a plan (core/plan)
// while consulting a catalog and tracking symbols. Grounded on the
// teacher's datalog/planner package: Phase.Available/Provides/Keep
// bookkeeping (phase_reordering.go, planner_utils.go) generalized from
// per-phase symbol sets to a query-wide SymbolTable, and the subplan
// chaining style of planner_phases.go.
package validator

import (
	"fmt"

	"graphd/core/plan"
)

// VarInfo tracks one variable's provenance through plan construction:
// its column shape and which nodes read/write it, grounded on the
// teacher's Phase.Available/Provides/Keep per-phase bookkeeping,
// generalized to persist for the whole query rather than per phase.
type VarInfo struct {
	Name      string
	ColNames  []string
	WrittenBy []plan.NodeRef
	ReadBy    []plan.NodeRef
}

// SymbolTable tracks every variable a query introduces, updated as the
// validator builds the plan (spec.md §3).
type SymbolTable struct {
	vars    map[string]*VarInfo
	anonSeq int
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{vars: make(map[string]*VarInfo)}
}

// Declare registers a variable as written by node, creating its VarInfo if
// this is the first time it's seen.
func (t *SymbolTable) Declare(name string, colNames []string, writer plan.NodeRef) *VarInfo {
	info, ok := t.vars[name]
	if !ok {
		info = &VarInfo{Name: name}
		t.vars[name] = info
	}
	info.ColNames = colNames
	info.WrittenBy = append(info.WrittenBy, writer)
	return info
}

// Lookup returns the VarInfo for name, or (nil, false) if undeclared.
// It reports no error itself; MarkRead is the call that returns
// SymbolNotFound.
func (t *SymbolTable) Lookup(name string) (*VarInfo, bool) {
	info, ok := t.vars[name]
	return info, ok
}

// MarkRead records that reader consumes name, returning SymbolNotFound if
// the variable was never declared.
func (t *SymbolTable) MarkRead(name string, reader plan.NodeRef) error {
	info, ok := t.vars[name]
	if !ok {
		return &SymbolNotFound{Name: name}
	}
	info.ReadBy = append(info.ReadBy, reader)
	return nil
}

// Anonymous mints a fresh variable name guaranteed not to collide with a
// user-written one, used for intermediate results the validator
// introduces (e.g. pipe placeholders), mirroring the teacher's anonymous
// pattern-variable minting.
func (t *SymbolTable) Anonymous() string {
	t.anonSeq++
	name := fmt.Sprintf("__anon%d__", t.anonSeq)
	return name
}

// Names returns every declared variable name, for diagnostics/tests.
func (t *SymbolTable) Names() []string {
	out := make([]string, 0, len(t.vars))
	for name := range t.vars {
		out = append(out, name)
	}
	return out
}
