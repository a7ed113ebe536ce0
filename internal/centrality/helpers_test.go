package centrality

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/papapumpkin/centrality/internal/graph"
	"github.com/papapumpkin/centrality/internal/matrix"
)

// buildGraph creates a graph with unit-weight edges.
func buildGraph(t *testing.T, directed bool, nodes []string, edges [][2]string) *graph.Graph {
	t.Helper()
	g := graph.New(directed)
	for _, id := range nodes {
		require.NoError(t, g.AddNode(id))
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0], e[1], 1))
	}
	return g
}

// completeGraph returns K_n over nodes "a", "b", ...
func completeGraph(t *testing.T, n int) *graph.Graph {
	t.Helper()
	nodes := make([]string, n)
	for i := range nodes {
		nodes[i] = string(rune('a' + i))
	}
	var edges [][2]string
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, [2]string{nodes[i], nodes[j]})
		}
	}
	return buildGraph(t, false, nodes, edges)
}

// neighborhoodOf runs the engine on g with the given backend.
func neighborhoodOf(t *testing.T, g *graph.Graph, b matrix.Backend, alphas Attenuations) *NeighborhoodScores {
	t.Helper()
	m, _, err := matrix.BuildMask(g, b)
	require.NoError(t, err)
	res, err := Neighborhood(t.Context(), m, alphas)
	require.NoError(t, err)
	return res
}
