package commands

import (
	"github.com/spf13/cobra"

	"graphd/core/ast"
)

// newFetchCommand builds and runs a single FetchClause statement from
// flags, the minimal case of this CLI's flag-driven statement
// construction: point lookup by tag and id, optionally just EXPLAINed
// rather than executed.
func newFetchCommand() *cobra.Command {
	var (
		tag     string
		ids     []string
		explain bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch vertices by tag and id",
		Example: `  graphd fetch --tag person --id alice --id bob
  graphd fetch --tag person --id alice --explain`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cfgPath, dbPath)
			if err != nil {
				return err
			}
			defer app.Close()

			stmt := ast.Statement{Clauses: []ast.Clause{
				ast.FetchClause{TagOrEdge: tag, IDs: vertexIDExprs(ids...)},
			}}

			ctx := cmd.Context()
			if explain {
				resp, err := app.Service.Explain(ctx, app.Session, app.SpaceID, stmt)
				if err != nil {
					return err
				}
				if !resp.Status.IsOK() {
					return statusOrErr(resp, nil)
				}
				printExplain(resp.Plan)
				return nil
			}

			resp, err := app.Service.Execute(ctx, app.Session, app.SpaceID, stmt, nil)
			if err != nil {
				return err
			}
			if !resp.Status.IsOK() {
				return statusOrErr(resp, nil)
			}
			printDataSet(resp.Dataset)
			return nil
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "person", "vertex tag to fetch")
	cmd.Flags().StringSliceVar(&ids, "id", nil, "vertex id to fetch (repeatable)")
	cmd.Flags().BoolVar(&explain, "explain", false, "print the plan instead of running it")
	cmd.MarkFlagRequired("id")

	return cmd
}
