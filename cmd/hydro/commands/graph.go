// cmd/hydro/commands/graph.go
package commands

import (
	"fmt"
	"os"

	"hydro/internal/depgraph"
)

// GraphCommand resolves a root module's dependency tree and renders it as a
// Graphviz DOT document, refusing (with a nonzero exit) if the tree
// contains an import cycle.
func GraphCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("graph requires a file argument")
	}
	path := args[0]

	root, err := loadEntry(path)
	if err != nil {
		return err
	}

	graph := depgraph.Build(root)
	if cycles := graph.Cycles(); len(cycles) > 0 {
		fmt.Fprintf(os.Stderr, "graph: circular imports detected at: %v\n", cycles)
		os.Exit(1)
	}

	dot, err := graph.DOT()
	if err != nil {
		return err
	}
	fmt.Print(dot)
	return nil
}
