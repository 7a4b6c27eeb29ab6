package validator

import (
	"context"
	"fmt"

	"graphd/core"
	"graphd/core/ast"
	"graphd/core/catalog"
	"graphd/core/expr"
	"graphd/core/plan"
)

// Lower translates a parsed Statement into a plan whose terminal node is
// the query's result, chaining each clause's SubPlan{root,tail} to the
// next by attaching downstream.tail.Inputs ← upstream.root exactly as
// spec.md §4.3 describes, grounded on the teacher's
// Planner.createPhases/phase-chaining logic.
func Lower(ctx context.Context, qctx *QueryContext, stmt ast.Statement) (plan.NodeRef, error) {
	var upstream *plan.SubPlan
	for _, clause := range stmt.Clauses {
		sub, err := lowerClause(ctx, qctx, clause, upstream)
		if err != nil {
			return 0, err
		}
		if upstream != nil {
			tail := qctx.Arena.Get(sub.Tail)
			if tail != nil && sub.Tail != upstream.Root {
				tail.Inputs = append(tail.Inputs, upstream.Root)
			}
		}
		upstream = sub
	}
	if upstream == nil {
		return 0, &SemanticError{Message: "empty statement"}
	}
	return upstream.Root, nil
}

func lowerClause(ctx context.Context, qctx *QueryContext, clause ast.Clause, upstream *plan.SubPlan) (*plan.SubPlan, error) {
	switch c := clause.(type) {
	case ast.MatchClause:
		return lowerMatch(qctx, c)
	case ast.FetchClause:
		return lowerFetch(ctx, qctx, c)
	case ast.GoClause:
		return lowerGo(ctx, qctx, c)
	case ast.WhereClause:
		return lowerWhere(qctx, c)
	case ast.YieldClause:
		return lowerYield(qctx, c)
	case ast.OrderByClause:
		return lowerOrderBy(qctx, c)
	case ast.LimitClause:
		return lowerLimit(qctx, c)
	case ast.InsertVerticesClause:
		return lowerInsertVertices(ctx, qctx, c)
	case ast.InsertEdgesClause:
		return lowerInsertEdges(ctx, qctx, c)
	case ast.DeleteVerticesClause:
		return lowerDeleteVertices(qctx, c)
	case ast.DeleteTagsClause:
		return lowerDeleteTags(qctx, c)
	case ast.DeleteEdgesClause:
		return lowerDeleteEdges(qctx, c)
	case ast.UpdateClause:
		return lowerUpdate(ctx, qctx, c)
	case ast.DDLClause:
		return lowerDDL(qctx, c)
	default:
		return nil, &SemanticError{Message: fmt.Sprintf("unsupported clause %T", clause)}
	}
}

func single(n *plan.Node) *plan.SubPlan {
	return &plan.SubPlan{Root: n.ID, Tail: n.ID}
}

func lowerMatch(qctx *QueryContext, c ast.MatchClause) (*plan.SubPlan, error) {
	if len(c.Steps) == 0 {
		return nil, &SemanticError{Message: "match clause has no steps"}
	}
	var first, last *plan.Node
	for i, step := range c.Steps {
		n := qctx.Arena.New(plan.KindGetNeighbors)
		n.SrcVar = c.FromVar
		n.Edges = plan.EdgeSpec{Outbound: step.Outbound, Inbound: step.Inbound}
		if i > 0 {
			n.Inputs = []plan.NodeRef{last.ID}
		}
		n.OutputVar = qctx.Symbols.Anonymous()
		qctx.Symbols.Declare(n.OutputVar, nil, n.ID)
		if first == nil {
			first = n
		}
		last = n
	}
	if c.BindPath != "" {
		qctx.Symbols.Declare(c.BindPath, nil, last.ID)
		last.OutputVar = c.BindPath
	}
	return &plan.SubPlan{Root: last.ID, Tail: first.ID}, nil
}

func lowerFetch(ctx context.Context, qctx *QueryContext, c ast.FetchClause) (*plan.SubPlan, error) {
	kind := plan.KindGetVertices
	if c.IsEdge {
		kind = plan.KindGetEdges
	}
	if !c.IsEdge {
		if _, err := qctx.Catalog.TagByName(ctx, qctx.SpaceID, c.TagOrEdge); err != nil {
			return nil, err
		}
	} else {
		if _, err := qctx.Catalog.EdgeByName(ctx, qctx.SpaceID, c.TagOrEdge); err != nil {
			return nil, err
		}
	}
	n := qctx.Arena.New(kind)
	n.TagOrEdge = c.TagOrEdge
	n.ColNames = append([]string{}, c.Props...)
	n.ReturnCols = c.Props
	if c.IsEdge {
		n.EdgeType = c.TagOrEdge
	} else {
		n.Tag = c.TagOrEdge
		ids, err := literalVertexIDs(c.IDs)
		if err != nil {
			return nil, err
		}
		n.VertexIDs = ids
	}
	n.OutputVar = qctx.Symbols.Anonymous()
	qctx.Symbols.Declare(n.OutputVar, n.ColNames, n.ID)
	return single(n), nil
}

// literalVertexID converts a literal constant expression into a
// VertexID. Only spec.md's explicit id-list clauses (FETCH, DELETE
// VERTEX/TAG) call this — a parameter-bound id in those clauses isn't
// resolvable until execution, which the validator doesn't have access
// to, so those are rejected here rather than silently mis-planned.
func literalVertexID(e expr.Expression) (core.VertexID, error) {
	c, ok := e.(expr.Constant)
	if !ok {
		return core.VertexID{}, &SemanticError{Message: "vertex id must be a literal constant"}
	}
	return core.NewVertexID(c.Value.AsString()), nil
}

func literalVertexIDs(exprs []expr.Expression) ([]core.VertexID, error) {
	ids := make([]core.VertexID, len(exprs))
	for i, e := range exprs {
		id, err := literalVertexID(e)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

func lowerGo(ctx context.Context, qctx *QueryContext, c ast.GoClause) (*plan.SubPlan, error) {
	edgeTypeIDs := make([]int32, len(c.EdgeTypes))
	for i, et := range c.EdgeTypes {
		info, err := qctx.Catalog.EdgeByName(ctx, qctx.SpaceID, et)
		if err != nil {
			return nil, err
		}
		edgeTypeIDs[i] = info.ID
	}
	n := qctx.Arena.New(plan.KindGetNeighbors)
	n.SrcVar = c.FromVar
	n.Edges = plan.EdgeSpec{Types: edgeTypeIDs, Outbound: c.Outbound, Inbound: !c.Outbound}
	n.Predicate = c.Where
	n.OutputVar = qctx.Symbols.Anonymous()
	qctx.Symbols.Declare(n.OutputVar, nil, n.ID)
	root := n

	if len(c.Yield) > 0 {
		proj := qctx.Arena.New(plan.KindProject)
		proj.Inputs = []plan.NodeRef{n.ID}
		for _, y := range c.Yield {
			proj.ProjectExprs = append(proj.ProjectExprs, y.Expr)
			name := y.Alias
			if name == "" {
				name = y.Expr.String()
			}
			proj.ProjectNames = append(proj.ProjectNames, name)
		}
		proj.ColNames = proj.ProjectNames
		proj.OutputVar = qctx.Symbols.Anonymous()
		qctx.Symbols.Declare(proj.OutputVar, proj.ColNames, proj.ID)
		root = proj
	}
	return &plan.SubPlan{Root: root.ID, Tail: n.ID}, nil
}

func lowerWhere(qctx *QueryContext, c ast.WhereClause) (*plan.SubPlan, error) {
	n := qctx.Arena.New(plan.KindFilter)
	n.Predicate = c.Predicate
	n.OutputVar = qctx.Symbols.Anonymous()
	qctx.Symbols.Declare(n.OutputVar, nil, n.ID)
	return single(n), nil
}

func lowerYield(qctx *QueryContext, c ast.YieldClause) (*plan.SubPlan, error) {
	n := qctx.Arena.New(plan.KindProject)
	seen := map[string]bool{}
	for _, item := range c.Items {
		name := item.Alias
		if name == "" {
			name = item.Expr.String()
		}
		if seen[name] {
			return nil, &AmbiguousColumn{Name: name}
		}
		seen[name] = true
		n.ProjectExprs = append(n.ProjectExprs, item.Expr)
		n.ProjectNames = append(n.ProjectNames, name)
	}
	n.ColNames = n.ProjectNames
	n.OutputVar = qctx.Symbols.Anonymous()
	qctx.Symbols.Declare(n.OutputVar, n.ColNames, n.ID)
	if c.Distinct {
		dedup := qctx.Arena.New(plan.KindDedup)
		dedup.Inputs = []plan.NodeRef{n.ID}
		dedup.ColNames = n.ColNames
		dedup.OutputVar = qctx.Symbols.Anonymous()
		qctx.Symbols.Declare(dedup.OutputVar, dedup.ColNames, dedup.ID)
		return &plan.SubPlan{Root: dedup.ID, Tail: n.ID}, nil
	}
	return single(n), nil
}

func lowerOrderBy(qctx *QueryContext, c ast.OrderByClause) (*plan.SubPlan, error) {
	n := qctx.Arena.New(plan.KindOrderBy)
	for _, t := range c.Terms {
		n.OrderTerms = append(n.OrderTerms, plan.OrderTerm{Expr: t.Expr, Desc: t.Desc})
	}
	n.OutputVar = qctx.Symbols.Anonymous()
	qctx.Symbols.Declare(n.OutputVar, nil, n.ID)
	return single(n), nil
}

func lowerLimit(qctx *QueryContext, c ast.LimitClause) (*plan.SubPlan, error) {
	n := qctx.Arena.New(plan.KindLimit)
	n.Offset = c.Offset
	n.Count = c.Count
	n.OutputVar = qctx.Symbols.Anonymous()
	qctx.Symbols.Declare(n.OutputVar, nil, n.ID)
	return single(n), nil
}

func lowerInsertVertices(ctx context.Context, qctx *QueryContext, c ast.InsertVerticesClause) (*plan.SubPlan, error) {
	if err := qctx.Catalog.CheckPermission(ctx, qctx.Session, qctx.SpaceID, catalog.PermWrite); err != nil {
		return nil, err
	}
	if _, err := qctx.Catalog.TagByName(ctx, qctx.SpaceID, c.Tag); err != nil {
		return nil, err
	}
	n := qctx.Arena.New(plan.KindInsertVertices)
	n.Tag = c.Tag
	n.Upsert = c.Upsert
	n.Items = make([]plan.MutationItem, len(c.Rows))
	for i, row := range c.Rows {
		n.Items[i] = plan.MutationItem{VertexID: row.ID, Props: propExprs(row.Props)}
	}
	n.OutputVar = qctx.Symbols.Anonymous()
	qctx.Symbols.Declare(n.OutputVar, nil, n.ID)
	return single(n), nil
}

func lowerInsertEdges(ctx context.Context, qctx *QueryContext, c ast.InsertEdgesClause) (*plan.SubPlan, error) {
	if err := qctx.Catalog.CheckPermission(ctx, qctx.Session, qctx.SpaceID, catalog.PermWrite); err != nil {
		return nil, err
	}
	if _, err := qctx.Catalog.EdgeByName(ctx, qctx.SpaceID, c.EdgeType); err != nil {
		return nil, err
	}
	n := qctx.Arena.New(plan.KindInsertEdges)
	n.EdgeType = c.EdgeType
	n.Upsert = c.Upsert
	n.Items = make([]plan.MutationItem, len(c.Rows))
	for i, row := range c.Rows {
		n.Items[i] = plan.MutationItem{Src: row.Src, Dst: row.Dst, Rank: row.Rank, Props: propExprs(row.Props)}
	}
	n.OutputVar = qctx.Symbols.Anonymous()
	qctx.Symbols.Declare(n.OutputVar, nil, n.ID)
	return single(n), nil
}

func lowerDeleteVertices(qctx *QueryContext, c ast.DeleteVerticesClause) (*plan.SubPlan, error) {
	ids, err := literalVertexIDs(c.IDs)
	if err != nil {
		return nil, err
	}
	n := qctx.Arena.New(plan.KindDeleteVertices)
	n.VertexIDs = ids
	n.OutputVar = qctx.Symbols.Anonymous()
	qctx.Symbols.Declare(n.OutputVar, nil, n.ID)
	return single(n), nil
}

func lowerDeleteTags(qctx *QueryContext, c ast.DeleteTagsClause) (*plan.SubPlan, error) {
	ids, err := literalVertexIDs(c.IDs)
	if err != nil {
		return nil, err
	}
	n := qctx.Arena.New(plan.KindDeleteTags)
	n.VertexIDs = ids
	if len(c.Tags) > 0 {
		n.Tag = c.Tags[0]
	}
	n.OutputVar = qctx.Symbols.Anonymous()
	qctx.Symbols.Declare(n.OutputVar, nil, n.ID)
	return single(n), nil
}

func lowerDeleteEdges(qctx *QueryContext, c ast.DeleteEdgesClause) (*plan.SubPlan, error) {
	n := qctx.Arena.New(plan.KindDeleteEdges)
	n.EdgeType = c.EdgeType
	n.Items = make([]plan.MutationItem, len(c.Edges))
	for i, e := range c.Edges {
		n.Items[i] = plan.MutationItem{Src: e.Src, Dst: e.Dst, Rank: e.Rank}
	}
	n.OutputVar = qctx.Symbols.Anonymous()
	qctx.Symbols.Declare(n.OutputVar, nil, n.ID)
	return single(n), nil
}

func lowerUpdate(ctx context.Context, qctx *QueryContext, c ast.UpdateClause) (*plan.SubPlan, error) {
	if err := qctx.Catalog.CheckPermission(ctx, qctx.Session, qctx.SpaceID, catalog.PermWrite); err != nil {
		return nil, err
	}
	n := qctx.Arena.New(plan.KindUpdate)
	n.Tag = c.TagOrEdge
	n.Predicate = c.Where
	n.Items = []plan.MutationItem{{VertexID: c.ID, Src: c.ID, Dst: c.Dst, Rank: c.Rank, Props: propExprs(c.Set)}}
	n.OutputVar = qctx.Symbols.Anonymous()
	qctx.Symbols.Declare(n.OutputVar, nil, n.ID)
	return single(n), nil
}

// propExprs copies a clause's property-expression map into the shape
// plan.MutationItem carries; nil in, nil out.
func propExprs(m map[string]expr.Expression) map[string]expr.Expression {
	if m == nil {
		return nil
	}
	out := make(map[string]expr.Expression, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ddlKinds maps a DDL statement name to its stubbed plan leaf kind.
// Per spec.md §9 Open Questions, every DDL leaf produces an empty
// dataset with SUCCEEDED and delegates the side effect to the catalog
// client rather than being fully planned here.
var ddlKinds = map[string]plan.Kind{
	"CREATE SPACE": plan.KindCreateSpace,
	"CREATE TAG":   plan.KindCreateTag,
	"CREATE EDGE":  plan.KindCreateEdge,
	"CREATE INDEX": plan.KindCreateIndex,
	"SHOW":         plan.KindShowX,
}

func lowerDDL(qctx *QueryContext, c ast.DDLClause) (*plan.SubPlan, error) {
	kind, ok := ddlKinds[c.Name]
	if !ok {
		return nil, &SemanticError{Message: fmt.Sprintf("unknown DDL statement %q", c.Name)}
	}
	n := qctx.Arena.New(kind)
	n.DDLName = c.Name
	n.DDLArgs = c.Args
	n.OutputVar = qctx.Symbols.Anonymous()
	qctx.Symbols.Declare(n.OutputVar, nil, n.ID)
	return single(n), nil
}
