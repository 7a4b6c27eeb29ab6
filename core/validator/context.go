package validator

import (
	"graphd/core/catalog"
	"graphd/core/plan"
)

// QueryContext is the per-query state threaded through lowering: the
// catalog handle, the caller's session, the plan arena, and the symbol
// table. Grounded on spec.md §4.3's "AST root + a fresh QueryContext
// (holds catalog handle, session, arena, id generator, symbol table,
// plan)" and spec.md §9's guidance to pass a catalog handle through the
// query context rather than dereference a global.
type QueryContext struct {
	Catalog catalog.Catalog
	Session catalog.Session
	SpaceID int32
	Arena   *plan.Arena
	Symbols *SymbolTable
}

// NewQueryContext builds a fresh per-query context.
func NewQueryContext(cat catalog.Catalog, session catalog.Session, spaceID int32) *QueryContext {
	return &QueryContext{
		Catalog: cat,
		Session: session,
		SpaceID: spaceID,
		Arena:   plan.NewArena(),
		Symbols: NewSymbolTable(),
	}
}
