package depgraph

import (
	"strings"
	"testing"

	"hydro/internal/hydro"
)

func TestBuildAndDOTRendersNodesAndEdges(t *testing.T) {
	shapes := hydro.NewModule("shapes")
	main := hydro.NewModule("main")
	main.Imports = []string{"shapes"}
	main.Modules["shapes"] = shapes

	graph := Build(main)
	dot, err := graph.DOT()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(dot, "main") || !strings.Contains(dot, "shapes") {
		t.Fatalf("expected both module names in the DOT output, got %q", dot)
	}
}

func TestCyclesIsEmptyForAnAcyclicGraph(t *testing.T) {
	shapes := hydro.NewModule("shapes")
	main := hydro.NewModule("main")
	main.Imports = []string{"shapes"}
	main.Modules["shapes"] = shapes

	graph := Build(main)
	if cycles := graph.Cycles(); len(cycles) != 0 {
		t.Fatalf("expected no cycles, got %v", cycles)
	}
}

func TestCyclesDetectsAMutualImport(t *testing.T) {
	a := hydro.NewModule("a")
	b := hydro.NewModule("b")
	a.Imports = []string{"b"}
	a.Modules["b"] = b
	b.Imports = []string{"a"}
	b.Modules["a"] = a

	graph := Build(a)
	cycles := graph.Cycles()
	if len(cycles) == 0 {
		t.Fatal("expected at least one module reported as part of a cycle")
	}
}

func TestBuildDeduplicatesRepeatedImports(t *testing.T) {
	shapes := hydro.NewModule("shapes")
	main := hydro.NewModule("main")
	main.Imports = []string{"shapes", "shapes"}
	main.Modules["shapes"] = shapes

	graph := Build(main)
	if len(graph.nodes) != 2 {
		t.Fatalf("expected exactly 2 nodes, got %d", len(graph.nodes))
	}
}
