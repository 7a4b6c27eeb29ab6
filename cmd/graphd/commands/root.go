package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	cfgPath string
	dbPath  string
)

// Execute runs the graphd command tree rooted at graphd.
func Execute(ctx context.Context) error {
	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "graphd",
		Short: "Reference harness for the graphd query pipeline",
		Long: `graphd drives the validator -> optimizer -> scheduler pipeline against a
demo graph space, since no query parser is part of this module: every
statement a subcommand runs is built from flags, not query text.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file path (default: ./graphd.yaml)")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "reference storage path (default: in-memory)")

	root.AddCommand(newDemoCommand())
	root.AddCommand(newFetchCommand())

	return root
}
