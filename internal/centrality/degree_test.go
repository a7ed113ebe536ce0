package centrality

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/papapumpkin/centrality/internal/graph"
	"github.com/papapumpkin/centrality/internal/matrix"
)

func TestDegree_EqualsAdjacencySums(t *testing.T) {
	t.Parallel()

	edges := []graph.Edge{
		{From: "a", To: "b", Weight: 2},
		{From: "b", To: "c", Weight: 1},
		{From: "c", To: "a", Weight: 0.5},
		{From: "c", To: "d", Weight: 3},
		{From: "d", To: "d", Weight: 1},
		{From: "b", To: "a", Weight: 1},
	}

	for _, directed := range []bool{false, true} {
		for _, weighted := range []bool{false, true} {
			name := map[bool]string{false: "undirected", true: "directed"}[directed] +
				map[bool]string{false: "", true: "/weighted"}[weighted]
			t.Run(name, func(t *testing.T) {
				g := graph.New(directed)
				for _, id := range []string{"a", "b", "c", "d", "e"} {
					require.NoError(t, g.AddNode(id))
				}
				for _, e := range edges {
					require.NoError(t, g.AddEdge(e.From, e.To, e.Weight))
				}

				adj := matrix.Build(g, weighted)
				want := adj.RowSums()
				if directed {
					cols := adj.ColSums()
					for i := range want {
						want[i] += cols[i]
					}
				}
				require.InDeltaSlice(t, want, Degree(g, weighted), 1e-12)
			})
		}
	}
}

func TestDegree_Values(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, false, []string{"hub", "x", "y", "z"}, [][2]string{{"hub", "x"}, {"hub", "y"}, {"hub", "z"}, {"x", "hub"}})
	require.Equal(t, []float64{3, 1, 1, 1}, Degree(g, false))
}
