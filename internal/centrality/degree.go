package centrality

import "github.com/papapumpkin/centrality/internal/graph"

// Degree returns the degree of every node of g, aligned with g.Nodes().
//
// Undirected graphs count each distinct neighbour once (a self-loop counts
// once), which equals the row sum of the adjacency matrix. Directed graphs
// add in- and out-degree. When weighted, edge weights are summed instead of
// counting edges.
func Degree(g *graph.Graph, weighted bool) []float64 {
	nodes := g.Nodes()
	out := make([]float64, len(nodes))
	for i, id := range nodes {
		out[i] = incidentSum(g, id, g.Successors(id), true, weighted)
		if g.Directed() {
			out[i] += incidentSum(g, id, g.Predecessors(id), false, weighted)
		}
	}
	return out
}

func incidentSum(g *graph.Graph, id string, others []string, outgoing, weighted bool) float64 {
	if !weighted {
		return float64(len(others))
	}
	var sum float64
	for _, o := range others {
		from, to := id, o
		if !outgoing {
			from, to = o, id
		}
		w, _ := g.Weight(from, to)
		sum += w
	}
	return sum
}
