package executor

import "graphd/core"

// RowContext adapts one row of a dataset (plus statement parameters) to
// the expr.Context interface expression evaluation needs. Built fresh by
// each row-at-a-time operator (Filter/Project/...) in core/operator, it
// resolves a VarProp/SrcProp/DstProp/EdgeRank read by locating the named
// column in the row and, for composite values (Vertex/Edge/Map), looking
// the requested property up inside it.
type RowContext struct {
	colNames []string
	row      core.Row
	params   map[string]core.Value
}

// NewRowContext builds a context over one row, with colNames describing
// its columns and params holding the statement's bound parameters (for
// expr.Parameter).
func NewRowContext(colNames []string, row core.Row, params map[string]core.Value) *RowContext {
	return &RowContext{colNames: colNames, row: row, params: params}
}

func (c *RowContext) columnIndex(name string) int {
	for i, n := range c.colNames {
		if n == name {
			return i
		}
	}
	return -1
}

// propOf extracts a named property from a composite column value
// (Vertex/Edge/Map), the shared logic behind GetVarProp/GetInputProp. An
// empty prop names the value itself rather than a field within it (e.g.
// `$v` copying a whole bound variable), so it is returned unchanged.
func propOf(v core.Value, prop string) (core.Value, bool) {
	if prop == "" {
		return v, true
	}
	switch v.Kind() {
	case core.KindVertex:
		if vx := v.AsVertex(); vx != nil {
			return vx.PropAny(prop)
		}
	case core.KindEdge:
		if e := v.AsEdge(); e != nil {
			return e.Prop(prop)
		}
	case core.KindMap:
		val, ok := v.AsMap()[prop]
		return val, ok
	}
	return core.Value{}, false
}

// GetVar returns the whole column value bound to name.
func (c *RowContext) GetVar(name string) (core.Value, bool) {
	idx := c.columnIndex(name)
	if idx < 0 {
		return core.Value{}, false
	}
	return c.row.Get(idx), true
}

// GetVarProp reads a property off the column bound to name.
func (c *RowContext) GetVarProp(name, prop string) (core.Value, bool) {
	v, ok := c.GetVar(name)
	if !ok {
		return core.Value{}, false
	}
	return propOf(v, prop)
}

// GetSrcProp reads a property off the row's current edge's source
// vertex, addressed via a reserved "__src" column if present, falling
// back to the edge's own src id having no property bag.
func (c *RowContext) GetSrcProp(prop string) (core.Value, bool) {
	if idx := c.columnIndex("__src"); idx >= 0 {
		return propOf(c.row.Get(idx), prop)
	}
	return core.Value{}, false
}

// GetDstProp reads a property off the row's current edge's destination
// vertex, addressed via a reserved "__dst" column.
func (c *RowContext) GetDstProp(prop string) (core.Value, bool) {
	if idx := c.columnIndex("__dst"); idx >= 0 {
		return propOf(c.row.Get(idx), prop)
	}
	return core.Value{}, false
}

// GetEdgeProp reads a property off the row's current edge, addressed via
// a reserved "__edge" column.
func (c *RowContext) GetEdgeProp(prop string) (core.Value, bool) {
	if idx := c.columnIndex("__edge"); idx >= 0 {
		if e := c.row.Get(idx).AsEdge(); e != nil {
			return e.Prop(prop)
		}
	}
	return core.Value{}, false
}

// GetInputProp reads a property off the row's anonymous "current" value,
// the `$-` binding produced by core/expr's RewriteVarPropToInputProp,
// addressed via a reserved "-" column name if present, or the row's sole
// column when there is exactly one.
func (c *RowContext) GetInputProp(prop string) (core.Value, bool) {
	if idx := c.columnIndex("-"); idx >= 0 {
		return propOf(c.row.Get(idx), prop)
	}
	if len(c.row) == 1 {
		return propOf(c.row.Get(0), prop)
	}
	return core.Value{}, false
}

// GetParameter reads a statement-bound parameter.
func (c *RowContext) GetParameter(name string) (core.Value, bool) {
	if c.params == nil {
		return core.Value{}, false
	}
	v, ok := c.params[name]
	return v, ok
}

// CurrentEdge returns the row's "__edge" column, if present.
func (c *RowContext) CurrentEdge() (core.Edge, bool) {
	idx := c.columnIndex("__edge")
	if idx < 0 {
		return core.Edge{}, false
	}
	if e := c.row.Get(idx).AsEdge(); e != nil {
		return *e, true
	}
	return core.Edge{}, false
}
