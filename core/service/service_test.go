package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphd/core"
	"graphd/core/ast"
	"graphd/core/catalog"
	"graphd/core/executor"
	"graphd/core/expr"
	_ "graphd/core/operator"
	"graphd/core/storageclient"
	"graphd/core/storageclient/refstore"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := refstore.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cat := catalog.NewInMemory()
	cat.AddSpace(catalog.SpaceInfo{ID: 1, Name: "social", PartsCount: 4}, nil)
	cat.AddTag(catalog.TagInfo{ID: 10, SpaceID: 1, Name: "person"})
	cat.AddEdge(catalog.EdgeInfo{ID: 20, SpaceID: 1, Name: "follows"})

	client := storageclient.NewClient(store, cat, storageclient.DefaultRetryPolicy())
	return New(cat, client, executor.DefaultRegistry, nil, nil, 0, nil)
}

func TestExecuteInsertThenFetchRoundTrips(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	session := catalog.Session{User: "alice"}

	insert := ast.Statement{Clauses: []ast.Clause{
		ast.InsertVerticesClause{Tag: "person", Upsert: true, Rows: []ast.InsertVertexRow{
			{ID: expr.Constant{Value: core.Str("alice")}, Props: map[string]expr.Expression{
				"age": expr.Constant{Value: core.Int(30)},
			}},
		}},
	}}
	resp, err := svc.Execute(ctx, session, 1, insert, nil)
	require.NoError(t, err)
	assert.Equal(t, core.SUCCEEDED, resp.Status.Code)

	fetch := ast.Statement{Clauses: []ast.Clause{
		ast.FetchClause{TagOrEdge: "person", IDs: []expr.Expression{expr.Constant{Value: core.Str("alice")}}, Props: []string{"age"}},
	}}
	resp, err = svc.Execute(ctx, session, 1, fetch, nil)
	require.NoError(t, err)
	assert.Equal(t, core.SUCCEEDED, resp.Status.Code)
	require.NotNil(t, resp.Dataset)
	assert.Equal(t, 1, resp.Dataset.Size())
}

func TestExecuteUnknownTagReturnsTagNotFoundStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	stmt := ast.Statement{Clauses: []ast.Clause{
		ast.FetchClause{TagOrEdge: "nope"},
	}}
	resp, err := svc.Execute(ctx, catalog.Session{}, 1, stmt, nil)
	require.NoError(t, err)
	assert.NotEqual(t, core.SUCCEEDED, resp.Status.Code)
	assert.Equal(t, core.TAG_NOT_FOUND, resp.Status.Code)
}

func TestExecuteDeniesWriteWithoutPermission(t *testing.T) {
	svc := newTestService(t)
	svc.Catalog.(*catalog.InMemory).SetAuthorizer(func(s catalog.Session, spaceID int32, perm catalog.Permission) error {
		if perm == catalog.PermWrite {
			return assert.AnError
		}
		return nil
	})
	ctx := context.Background()
	stmt := ast.Statement{Clauses: []ast.Clause{
		ast.InsertVerticesClause{Tag: "person"},
	}}
	resp, err := svc.Execute(ctx, catalog.Session{}, 1, stmt, nil)
	require.NoError(t, err)
	assert.Equal(t, core.PERMISSION_ERROR, resp.Status.Code)
}

func TestExplainReturnsPlanTreeWithoutRunning(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	stmt := ast.Statement{Clauses: []ast.Clause{
		ast.FetchClause{TagOrEdge: "person"},
	}}
	resp, err := svc.Explain(ctx, catalog.Session{}, 1, stmt)
	require.NoError(t, err)
	assert.Equal(t, core.SUCCEEDED, resp.Status.Code)
	require.NotNil(t, resp.Plan)
	assert.Equal(t, "GetVertices", resp.Plan.Kind)
	assert.Nil(t, resp.Dataset)
}
