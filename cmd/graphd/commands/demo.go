package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"graphd/core"
	"graphd/core/ast"
	"graphd/core/expr"
)

// newDemoCommand seeds a fixed person/friend graph and runs a handful of
// canned statements against it, the flag-driven analogue of the
// teacher's runDemo: no query text exists to type in, so this command
// builds the same shapes the teacher's queries did directly as
// ast.Statement values.
func newDemoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Seed a demo graph and run sample statements",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cfgPath, dbPath)
			if err != nil {
				return err
			}
			defer app.Close()
			return runDemo(cmd.Context(), app)
		},
	}
}

func runDemo(ctx context.Context, app *App) error {
	fmt.Println(color.GreenString("=== graphd demo ==="))

	if err := seedDemoData(ctx, app); err != nil {
		return fmt.Errorf("seed demo data: %w", err)
	}

	statements := []struct {
		title string
		stmt  ast.Statement
	}{
		{
			title: "fetch all three people by id",
			stmt: ast.Statement{Clauses: []ast.Clause{
				ast.FetchClause{TagOrEdge: "person", IDs: vertexIDExprs("alice", "bob", "charlie")},
			}},
		},
		{
			title: "alice's outbound friends",
			stmt: ast.Statement{Clauses: []ast.Clause{
				ast.FetchClause{TagOrEdge: "person", IDs: vertexIDExprs("alice")},
				ast.GoClause{
					Outbound:  true,
					EdgeTypes: []string{"friend"},
					Yield: []ast.YieldItem{
						{Expr: expr.DstProp{Prop: ""}, Alias: "neighbor"},
					},
				},
			}},
		},
		{
			title: "people older than 26",
			stmt: ast.Statement{Clauses: []ast.Clause{
				ast.FetchClause{TagOrEdge: "person", IDs: vertexIDExprs("alice", "bob", "charlie")},
				ast.WhereClause{Predicate: expr.BinaryRelational{
					Op:    expr.RelGT,
					Left:  expr.InputProp{Prop: "age"},
					Right: expr.Constant{Value: core.Int(26)},
				}},
			}},
		},
	}

	for _, s := range statements {
		fmt.Printf("\n%s\n", color.BlueString(s.title))
		resp, err := app.Service.Execute(ctx, app.Session, app.SpaceID, s.stmt, nil)
		if err != nil {
			return err
		}
		if !resp.Status.IsOK() {
			fmt.Println(color.RedString(resp.Status.Error()))
			continue
		}
		printDataSet(resp.Dataset)
	}
	return nil
}

// seedDemoData inserts three people and three friendships through the same
// Execute path every query runs, exercising InsertVertices/InsertEdges
// end to end rather than writing straight to the storage backend.
func seedDemoData(ctx context.Context, app *App) error {
	people := []struct {
		id, name, city string
		age            int64
	}{
		{"alice", "Alice", "New York", 30},
		{"bob", "Bob", "Boston", 25},
		{"charlie", "Charlie", "New York", 35},
	}

	rows := make([]ast.InsertVertexRow, len(people))
	for i, p := range people {
		rows[i] = ast.InsertVertexRow{
			ID: expr.Constant{Value: core.Str(p.id)},
			Props: map[string]expr.Expression{
				"name": expr.Constant{Value: core.Str(p.name)},
				"age":  expr.Constant{Value: core.Int(p.age)},
				"city": expr.Constant{Value: core.Str(p.city)},
			},
		}
	}
	insertVertices := ast.Statement{Clauses: []ast.Clause{
		ast.InsertVerticesClause{Tag: "person", Rows: rows, Upsert: true},
	}}
	if resp, err := app.Service.Execute(ctx, app.Session, app.SpaceID, insertVertices, nil); err != nil || !resp.Status.IsOK() {
		return statusOrErr(resp, err)
	}

	friendships := []struct{ src, dst string }{
		{"alice", "bob"},
		{"alice", "charlie"},
		{"bob", "charlie"},
	}
	edgeRows := make([]ast.InsertEdgeRow, len(friendships))
	for i, f := range friendships {
		edgeRows[i] = ast.InsertEdgeRow{
			Src: expr.Constant{Value: core.Str(f.src)},
			Dst: expr.Constant{Value: core.Str(f.dst)},
		}
	}
	insertEdges := ast.Statement{Clauses: []ast.Clause{
		ast.InsertEdgesClause{EdgeType: "friend", Rows: edgeRows, Upsert: true},
	}}
	resp, err := app.Service.Execute(ctx, app.Session, app.SpaceID, insertEdges, nil)
	return statusOrErr(resp, err)
}
