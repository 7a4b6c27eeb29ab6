package operator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphd/core"
	"graphd/core/expr"
	"graphd/core/plan"
)

func idExpr(id string) expr.Expression { return expr.Constant{Value: core.Str(id)} }

func TestDeleteEdgesRemovesTheEdge(t *testing.T) {
	ec := newStorageTestContext(t)
	ctx := context.Background()
	alice := core.NewVertexID("alice")

	_, err := insertEdgesOp(ctx, ec, &plan.Node{
		Kind: plan.KindInsertEdges, EdgeType: "knows", Upsert: true,
		Items: []plan.MutationItem{{Src: idExpr("alice"), Dst: idExpr("bob")}},
	}, nil)
	require.NoError(t, err)

	_, err = deleteEdgesOp(ctx, ec, &plan.Node{
		Kind: plan.KindDeleteEdges, EdgeType: "knows",
		Items: []plan.MutationItem{{Src: idExpr("alice"), Dst: idExpr("bob")}},
	}, nil)
	require.NoError(t, err)

	ds, err := getNeighborsOp(ctx, ec, &plan.Node{
		Kind: plan.KindGetNeighbors, VertexIDs: []core.VertexID{alice},
		Edges: plan.EdgeSpec{Types: []int32{1}, Outbound: true},
	}, nil)
	require.NoError(t, err)
	assert.True(t, ds.IsEmpty())
}

func TestDeleteTagsRemovesOnlyNamedTag(t *testing.T) {
	ec := newStorageTestContext(t)
	ctx := context.Background()
	alice := core.NewVertexID("alice")

	_, err := insertVerticesOp(ctx, ec, &plan.Node{
		Kind: plan.KindInsertVertices, Tag: "person", Upsert: true,
		Items: []plan.MutationItem{{VertexID: idExpr("alice"), Props: map[string]expr.Expression{"age": expr.Constant{Value: core.Int(30)}}}},
	}, nil)
	require.NoError(t, err)
	_, err = insertVerticesOp(ctx, ec, &plan.Node{
		Kind: plan.KindInsertVertices, Tag: "employee", Upsert: true,
		Items: []plan.MutationItem{{VertexID: idExpr("alice"), Props: map[string]expr.Expression{"title": expr.Constant{Value: core.Str("eng")}}}},
	}, nil)
	require.NoError(t, err)

	_, err = deleteTagsOp(ctx, ec, &plan.Node{Kind: plan.KindDeleteTags, VertexIDs: []core.VertexID{alice}, Tag: "person"}, nil)
	require.NoError(t, err)

	ds, err := getVerticesOp(ctx, ec, &plan.Node{Kind: plan.KindGetVertices, VertexIDs: []core.VertexID{alice}, Tag: "person", ReturnCols: []string{"age"}}, nil)
	require.NoError(t, err)
	_, ok := ds.Rows[0].Get(0).AsVertex().Prop("person", "age")
	assert.False(t, ok)

	ds, err = getVerticesOp(ctx, ec, &plan.Node{Kind: plan.KindGetVertices, VertexIDs: []core.VertexID{alice}, Tag: "employee", ReturnCols: []string{"title"}}, nil)
	require.NoError(t, err)
	title, ok := ds.Rows[0].Get(0).AsVertex().Prop("employee", "title")
	require.True(t, ok)
	assert.Equal(t, "eng", title.AsString())
}

func TestUpdateMergesPropsWithoutOverwrite(t *testing.T) {
	ec := newStorageTestContext(t)
	ctx := context.Background()
	alice := core.NewVertexID("alice")

	_, err := insertVerticesOp(ctx, ec, &plan.Node{
		Kind: plan.KindInsertVertices, Tag: "person", Upsert: true,
		Items: []plan.MutationItem{{VertexID: idExpr("alice"), Props: map[string]expr.Expression{"age": expr.Constant{Value: core.Int(30)}}}},
	}, nil)
	require.NoError(t, err)

	_, err = updateOp(ctx, ec, &plan.Node{
		Kind: plan.KindUpdate, Tag: "person",
		Items: []plan.MutationItem{{VertexID: idExpr("alice"), Props: map[string]expr.Expression{"city": expr.Constant{Value: core.Str("nyc")}}}},
	}, nil)
	require.NoError(t, err)

	ds, err := getVerticesOp(ctx, ec, &plan.Node{Kind: plan.KindGetVertices, VertexIDs: []core.VertexID{alice}, Tag: "person", ReturnCols: []string{"age", "city"}}, nil)
	require.NoError(t, err)
	v := ds.Rows[0].Get(0).AsVertex()
	age, ok := v.Prop("person", "age")
	require.True(t, ok)
	assert.Equal(t, int64(30), age.AsInt())
	city, ok := v.Prop("person", "city")
	require.True(t, ok)
	assert.Equal(t, "nyc", city.AsString())
}
