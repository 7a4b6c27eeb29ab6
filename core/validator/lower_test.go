package validator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphd/core"
	"graphd/core/ast"
	"graphd/core/catalog"
	"graphd/core/expr"
	"graphd/core/plan"
)

func newTestCatalog() catalog.Catalog {
	c := catalog.NewInMemory()
	c.AddSpace(catalog.SpaceInfo{ID: 1, Name: "social", PartsCount: 4}, nil)
	c.AddTag(catalog.TagInfo{ID: 10, SpaceID: 1, Name: "person"})
	c.AddEdge(catalog.EdgeInfo{ID: 20, SpaceID: 1, Name: "follows"})
	return c
}

func TestLowerFetchClause(t *testing.T) {
	qctx := NewQueryContext(newTestCatalog(), catalog.Session{User: "alice"}, 1)
	stmt := ast.Statement{Clauses: []ast.Clause{
		ast.FetchClause{TagOrEdge: "person", Props: []string{"name", "age"}},
	}}
	root, err := Lower(context.Background(), qctx, stmt)
	require.NoError(t, err)
	n := qctx.Arena.Get(root)
	require.NotNil(t, n)
	assert.Equal(t, plan.KindGetVertices, n.Kind)
}

func TestLowerFetchUnknownTagFails(t *testing.T) {
	qctx := NewQueryContext(newTestCatalog(), catalog.Session{}, 1)
	stmt := ast.Statement{Clauses: []ast.Clause{
		ast.FetchClause{TagOrEdge: "nope"},
	}}
	_, err := Lower(context.Background(), qctx, stmt)
	assert.Error(t, err)
}

func TestLowerWhereThenYieldChains(t *testing.T) {
	qctx := NewQueryContext(newTestCatalog(), catalog.Session{}, 1)
	stmt := ast.Statement{Clauses: []ast.Clause{
		ast.FetchClause{TagOrEdge: "person"},
		ast.WhereClause{Predicate: expr.BinaryRelational{
			Op:    expr.RelGT,
			Left:  expr.VarProp{Var: "v", Prop: "age"},
			Right: expr.Constant{Value: core.Int(18)},
		}},
		ast.YieldClause{Items: []ast.YieldItem{{Expr: expr.VarProp{Var: "v", Prop: "name"}, Alias: "name"}}},
	}}
	root, err := Lower(context.Background(), qctx, stmt)
	require.NoError(t, err)

	project := qctx.Arena.Get(root)
	require.NotNil(t, project)
	assert.Equal(t, plan.KindProject, project.Kind)
	require.Len(t, project.Inputs, 1)

	filter := qctx.Arena.Get(project.Inputs[0])
	require.NotNil(t, filter)
	assert.Equal(t, plan.KindFilter, filter.Kind)
	require.Len(t, filter.Inputs, 1)

	fetch := qctx.Arena.Get(filter.Inputs[0])
	require.NotNil(t, fetch)
	assert.Equal(t, plan.KindGetVertices, fetch.Kind)
}

func TestLowerYieldDuplicateAliasIsAmbiguous(t *testing.T) {
	qctx := NewQueryContext(newTestCatalog(), catalog.Session{}, 1)
	stmt := ast.Statement{Clauses: []ast.Clause{
		ast.FetchClause{TagOrEdge: "person"},
		ast.YieldClause{Items: []ast.YieldItem{
			{Expr: expr.VarProp{Var: "v", Prop: "name"}, Alias: "x"},
			{Expr: expr.VarProp{Var: "v", Prop: "age"}, Alias: "x"},
		}},
	}}
	_, err := Lower(context.Background(), qctx, stmt)
	var amb *AmbiguousColumn
	assert.ErrorAs(t, err, &amb)
}

func TestLowerInsertVerticesRequiresPermission(t *testing.T) {
	cat := newTestCatalog().(*catalog.InMemory)
	cat.SetAuthorizer(func(s catalog.Session, spaceID int32, perm catalog.Permission) error {
		if perm == catalog.PermWrite {
			return &SemanticError{Message: "no write access"}
		}
		return nil
	})
	qctx := NewQueryContext(cat, catalog.Session{User: "bob"}, 1)
	stmt := ast.Statement{Clauses: []ast.Clause{
		ast.InsertVerticesClause{Tag: "person"},
	}}
	_, err := Lower(context.Background(), qctx, stmt)
	assert.Error(t, err)
}

func TestLowerInsertVerticesCarriesRowExpressions(t *testing.T) {
	qctx := NewQueryContext(newTestCatalog(), catalog.Session{}, 1)
	stmt := ast.Statement{Clauses: []ast.Clause{
		ast.InsertVerticesClause{Tag: "person", Upsert: true, Rows: []ast.InsertVertexRow{
			{ID: expr.Constant{Value: core.Str("alice")}, Props: map[string]expr.Expression{
				"age": expr.Constant{Value: core.Int(30)},
			}},
		}},
	}}
	root, err := Lower(context.Background(), qctx, stmt)
	require.NoError(t, err)
	n := qctx.Arena.Get(root)
	require.NotNil(t, n)
	require.Len(t, n.Items, 1)
	assert.NotNil(t, n.Items[0].VertexID)
	assert.Contains(t, n.Items[0].Props, "age")
}

func TestLowerInsertEdgesCarriesEndpointExpressions(t *testing.T) {
	qctx := NewQueryContext(newTestCatalog(), catalog.Session{}, 1)
	stmt := ast.Statement{Clauses: []ast.Clause{
		ast.InsertEdgesClause{EdgeType: "follows", Upsert: true, Rows: []ast.InsertEdgeRow{
			{Src: expr.Constant{Value: core.Str("alice")}, Dst: expr.Constant{Value: core.Str("bob")}},
		}},
	}}
	root, err := Lower(context.Background(), qctx, stmt)
	require.NoError(t, err)
	n := qctx.Arena.Get(root)
	require.NotNil(t, n)
	require.Len(t, n.Items, 1)
	assert.NotNil(t, n.Items[0].Src)
	assert.NotNil(t, n.Items[0].Dst)
}

func TestLowerDeleteVerticesResolvesLiteralIDs(t *testing.T) {
	qctx := NewQueryContext(newTestCatalog(), catalog.Session{}, 1)
	stmt := ast.Statement{Clauses: []ast.Clause{
		ast.DeleteVerticesClause{IDs: []expr.Expression{expr.Constant{Value: core.Str("alice")}}},
	}}
	root, err := Lower(context.Background(), qctx, stmt)
	require.NoError(t, err)
	n := qctx.Arena.Get(root)
	require.NotNil(t, n)
	require.Len(t, n.VertexIDs, 1)
	assert.Equal(t, core.NewVertexID("alice"), n.VertexIDs[0])
}

func TestLowerDeleteVerticesRejectsNonLiteralID(t *testing.T) {
	qctx := NewQueryContext(newTestCatalog(), catalog.Session{}, 1)
	stmt := ast.Statement{Clauses: []ast.Clause{
		ast.DeleteVerticesClause{IDs: []expr.Expression{expr.Parameter{Name: "id"}}},
	}}
	_, err := Lower(context.Background(), qctx, stmt)
	assert.Error(t, err)
}

func TestLowerUpdateCarriesSetExpressions(t *testing.T) {
	qctx := NewQueryContext(newTestCatalog(), catalog.Session{}, 1)
	stmt := ast.Statement{Clauses: []ast.Clause{
		ast.UpdateClause{TagOrEdge: "person", ID: expr.Constant{Value: core.Str("alice")}, Set: map[string]expr.Expression{
			"city": expr.Constant{Value: core.Str("nyc")},
		}},
	}}
	root, err := Lower(context.Background(), qctx, stmt)
	require.NoError(t, err)
	n := qctx.Arena.Get(root)
	require.NotNil(t, n)
	require.Len(t, n.Items, 1)
	assert.NotNil(t, n.Items[0].VertexID)
	assert.Contains(t, n.Items[0].Props, "city")
}

func TestLowerDDLStub(t *testing.T) {
	qctx := NewQueryContext(newTestCatalog(), catalog.Session{}, 1)
	stmt := ast.Statement{Clauses: []ast.Clause{
		ast.DDLClause{Name: "CREATE SPACE", Args: map[string]string{"name": "new_space"}},
	}}
	root, err := Lower(context.Background(), qctx, stmt)
	require.NoError(t, err)
	n := qctx.Arena.Get(root)
	assert.Equal(t, plan.KindCreateSpace, n.Kind)
	assert.True(t, n.Kind.IsDDL())
}

func TestSymbolTableAnonymousUnique(t *testing.T) {
	st := NewSymbolTable()
	a := st.Anonymous()
	b := st.Anonymous()
	assert.NotEqual(t, a, b)
}

func TestSymbolTableMarkReadMissing(t *testing.T) {
	st := NewSymbolTable()
	err := st.MarkRead("nope", plan.NodeRef(1))
	var notFound *SymbolNotFound
	assert.ErrorAs(t, err, &notFound)
}
