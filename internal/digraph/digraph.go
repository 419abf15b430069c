// Package digraph implements a directed graph over dense vertex ids.
package digraph // import "github.com/andrewarchi/decsimp/internal/digraph"

// Graph is a directed graph with vertices numbered from zero.
type Graph struct {
	edges [][]int
}

// New constructs a graph with n vertices and no edges.
func New(n int) *Graph {
	return &Graph{edges: make([][]int, n)}
}

// AddVertex adds a vertex and returns its id.
func (g *Graph) AddVertex() int {
	g.edges = append(g.edges, nil)
	return len(g.edges) - 1
}

// Len returns the number of vertices.
func (g *Graph) Len() int { return len(g.edges) }

// AddEdge adds a directed edge from i to j.
func (g *Graph) AddEdge(i, j int) {
	g.edges[i] = append(g.edges[i], j)
}

// Edges returns the successors of vertex i.
func (g *Graph) Edges(i int) []int { return g.edges[i] }

// Reverse creates the reverse graph of g.
func (g *Graph) Reverse() *Graph {
	r := New(len(g.edges))
	for i, edges := range g.edges {
		for _, j := range edges {
			r.edges[j] = append(r.edges[j], i)
		}
	}
	return r
}

// PostOrder traverses the graph depth first from every vertex in id
// order and returns the vertices in post-order.
func (g *Graph) PostOrder() []int {
	visited := make([]bool, len(g.edges))
	order := make([]int, 0, len(g.edges))
	for i := range g.edges {
		order = g.visit(i, visited, order)
	}
	return order
}

func (g *Graph) visit(i int, visited []bool, order []int) []int {
	if visited[i] {
		return order
	}
	visited[i] = true
	for _, j := range g.edges[i] {
		order = g.visit(j, visited, order)
	}
	return append(order, i)
}

// SCCs computes the strongly connected components of the graph, sinks
// of the condensation first.
func (g *Graph) SCCs() [][]int {
	order := g.Reverse().PostOrder()
	visited := make([]bool, len(g.edges))
	var sccs [][]int
	for k := len(order) - 1; k >= 0; k-- {
		if i := order[k]; !visited[i] {
			sccs = append(sccs, g.visit(i, visited, nil))
		}
	}
	return sccs
}

// Cycles returns the strongly connected components that contain a
// cycle: those with more than one vertex or a self edge.
func (g *Graph) Cycles() [][]int {
	var cycles [][]int
	for _, scc := range g.SCCs() {
		if len(scc) > 1 || g.hasEdge(scc[0], scc[0]) {
			cycles = append(cycles, scc)
		}
	}
	return cycles
}

func (g *Graph) hasEdge(i, j int) bool {
	for _, k := range g.edges[i] {
		if k == j {
			return true
		}
	}
	return false
}
