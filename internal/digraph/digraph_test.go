package digraph

import (
	"reflect"
	"testing"
)

func TestSCCs(t *testing.T) {
	for i, test := range []struct {
		n      int
		edges  [][2]int
		sccs   [][]int
		cycles int
	}{
		{
			n:      3,
			edges:  [][2]int{{0, 1}, {1, 2}},
			sccs:   [][]int{{2}, {1}, {0}},
			cycles: 0,
		},
		{
			n:      4,
			edges:  [][2]int{{0, 1}, {1, 2}, {2, 0}, {2, 3}},
			sccs:   [][]int{{3}, {2, 1, 0}},
			cycles: 1,
		},
		{
			n:      2,
			edges:  [][2]int{{0, 1}, {1, 1}},
			sccs:   [][]int{{1}, {0}},
			cycles: 1,
		},
	} {
		g := New(test.n)
		for _, e := range test.edges {
			g.AddEdge(e[0], e[1])
		}
		if sccs := g.SCCs(); !reflect.DeepEqual(sccs, test.sccs) {
			t.Errorf("test %d: got SCCs %v, want %v", i, sccs, test.sccs)
		}
		if cycles := g.Cycles(); len(cycles) != test.cycles {
			t.Errorf("test %d: got %d cycles, want %d", i, len(cycles), test.cycles)
		}
	}
}
