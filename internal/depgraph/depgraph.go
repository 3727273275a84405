// Package depgraph renders a loaded *hydro.Module tree's `using` edges as a
// Graphviz DOT document, grounded on
// `original_source/src/hydro/analyzer/moduledependencyvisualization.rs`'s
// textual graph dump. No library in the retrieved pack renders DOT, so this
// package reaches for gonum.org/v1/gonum, the standard Go graph library.
package depgraph

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"hydro/internal/hydro"
)

// node wraps a module name so gonum's simple.DirectedGraph can key nodes by
// gonum's int64 ID while DOT rendering still shows the human-readable name.
type node struct {
	id   int64
	name string
}

func (n node) ID() int64 { return n.id }

func (n node) DOTID() string { return n.name }

func (n node) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "shape", Value: "box"}}
}

// Graph is the dependency graph of a linked module tree, built once and
// then either walked (Order, Cycles) or rendered (DOT).
type Graph struct {
	g     *simple.DirectedGraph
	nodes map[string]node
}

// Build walks entry's Imports/Modules pairs, assigning every distinct
// module name one graph node and one directed edge per `using` declaration
// (importer -> imported, matching the direction a build needs to resolve
// dependencies before dependents).
func Build(entry *hydro.Module) *Graph {
	g := &Graph{g: simple.NewDirectedGraph(), nodes: make(map[string]node)}
	visited := make(map[string]bool)
	g.walk(entry, visited)
	return g
}

func (g *Graph) nodeFor(name string) node {
	if n, ok := g.nodes[name]; ok {
		return n
	}
	n := node{id: int64(len(g.nodes)), name: name}
	g.nodes[name] = n
	g.g.AddNode(n)
	return n
}

func (g *Graph) walk(mod *hydro.Module, visited map[string]bool) {
	if visited[mod.Name] {
		return
	}
	visited[mod.Name] = true
	from := g.nodeFor(mod.Name)

	for _, name := range mod.Imports {
		to := g.nodeFor(name)
		if !g.g.HasEdgeFromTo(from.ID(), to.ID()) {
			g.g.SetEdge(g.g.NewEdge(from, to))
		}
		if dep, ok := mod.Modules[name]; ok {
			g.walk(dep, visited)
		}
	}
}

// DOT renders the graph as a Graphviz document.
func (g *Graph) DOT() (string, error) {
	bytes, err := dot.Marshal(g.g, "hydro_dependencies", "", "  ")
	if err != nil {
		return "", fmt.Errorf("depgraph: marshaling DOT: %w", err)
	}
	return string(bytes), nil
}

// Cycles walks the modules depth-first, starting walks in name order, and
// returns the starting module of each walk that runs into a cycle of `using`
// edges. The result is empty exactly when the graph has no cycle; it does
// not list every module on a cycle, and it can name a module that only
// leads into one.
func (g *Graph) Cycles() []string {
	var cycles []string
	color := make(map[int64]int) // 0=white,1=gray,2=black
	var names []string
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	var visit func(id int64) bool
	visit = func(id int64) bool {
		color[id] = 1
		to := g.g.From(id)
		for to.Next() {
			next := to.Node().ID()
			if color[next] == 1 {
				return true
			}
			if color[next] == 0 && visit(next) {
				return true
			}
		}
		color[id] = 2
		return false
	}

	for _, name := range names {
		n := g.nodes[name]
		if color[n.id] == 0 && visit(n.id) {
			cycles = append(cycles, name)
		}
	}
	return cycles
}
