package regalloc

import (
	"sort"
	"strings"

	"github.com/gmofishsauce/tacc/internal/tac"
)

// Graph is an interference graph: an undirected adjacency set over
// identifier names, plus the order names were first encountered (the
// coloring tie-break).
type Graph struct {
	Order []string
	adj   map[string]map[string]bool
}

func newGraph() *Graph {
	return &Graph{adj: map[string]map[string]bool{}}
}

func (g *Graph) addNode(name string) {
	if _, ok := g.adj[name]; !ok {
		g.adj[name] = map[string]bool{}
		g.Order = append(g.Order, name)
	}
}

func (g *Graph) addEdge(a, b string) {
	if a == b {
		return
	}
	g.addNode(a)
	g.addNode(b)
	g.adj[a][b] = true
	g.adj[b][a] = true
}

// Degree returns the number of distinct neighbors of name.
func (g *Graph) Degree(name string) int {
	return len(g.adj[name])
}

// isPlaceholder reports whether name is a pre-colored/external
// parameter placeholder, excluded from the coloring problem.
func isPlaceholder(name string) bool {
	return strings.HasPrefix(name, "%param")
}

// BuildInterference builds fn's interference graph from its current
// blocks and liveness result: for every definition, an edge to every
// name live out of that instruction other than the name just defined.
func BuildInterference(fn *tac.FunctionBlock, fl *FuncLiveness) *Graph {
	g := newGraph()
	for i, b := range fn.Blocks {
		for j, instr := range b.Instrs {
			defs := defsOf(instr)
			if len(defs) == 0 {
				continue
			}
			var defined string
			for name := range defs {
				defined = name
			}
			if isPlaceholder(defined) {
				continue
			}
			g.addNode(defined)
			for name := range fl.Instrs[i][j].Out {
				if name == defined || isPlaceholder(name) {
					continue
				}
				g.addEdge(defined, name)
			}
		}
	}
	return g
}

// Color greedily assigns the smallest non-negative register index not
// used by any already-colored neighbor, visiting nodes in descending
// degree order with insertion order as the stable tie-break.
func Color(g *Graph) map[string]int {
	order := append([]string{}, g.Order...)
	sort.SliceStable(order, func(i, j int) bool {
		return g.Degree(order[i]) > g.Degree(order[j])
	})

	colors := map[string]int{}
	for _, name := range order {
		used := map[int]bool{}
		for nb := range g.adj[name] {
			if c, ok := colors[nb]; ok {
				used[c] = true
			}
		}
		c := 0
		for used[c] {
			c++
		}
		colors[name] = c
	}
	return colors
}

// Result bundles one function's liveness, interference graph, and
// coloring.
type Result struct {
	Liveness *FuncLiveness
	Graph    *Graph
	Colors   map[string]int
}

// Allocate runs liveness, interference construction, and coloring for
// one function.
func Allocate(fn *tac.FunctionBlock) *Result {
	fl := Liveness(fn)
	g := BuildInterference(fn, fl)
	colors := Color(g)
	return &Result{Liveness: fl, Graph: g, Colors: colors}
}
