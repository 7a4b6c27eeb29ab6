// Command graphd is a flag-driven reference harness for the query
// pipeline: no parser/lexer is in scope (statements are built from flags,
// not query text), so this is a CLI around Statement construction, not a
// query-language shell. Grounded on the teacher's cmd/datalog/main.go
// demo-seed-then-query flow, generalized to cobra subcommands.
package main

import (
	"context"
	"fmt"
	"os"

	"graphd/cmd/graphd/commands"
)

func main() {
	if err := commands.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "graphd:", err)
		os.Exit(1)
	}
}
