package graph

import "sort"

// Components partitions g into connected components. Directed graphs are
// split into weakly connected components. Each component lists its members
// in sorted order; components are ordered by size descending, then by their
// smallest member.
func (g *Graph) Components() [][]string {
	nodes := g.Nodes()
	index := make(map[string]int, len(nodes))
	for i, id := range nodes {
		index[id] = i
	}

	uf := newUnionFind(len(nodes))
	for from, targets := range g.adjacency {
		for to := range targets {
			uf.union(index[from], index[to])
		}
	}

	groups := uf.groups()
	// groups are already ordered by smallest member; a stable sort on size
	// keeps that order as the tie-break.
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i]) > len(groups[j])
	})

	out := make([][]string, len(groups))
	for i, members := range groups {
		ids := make([]string, len(members))
		for j, m := range members {
			ids[j] = nodes[m]
		}
		out[i] = ids
	}
	return out
}

// GiantComponent returns the subgraph induced by the largest connected
// component of g. Ties go to the component containing the lexicographically
// smallest node. An empty graph yields an empty graph.
func GiantComponent(g *Graph) *Graph {
	comps := g.Components()
	if len(comps) == 0 {
		return New(g.directed)
	}
	return g.Induced(comps[0])
}
