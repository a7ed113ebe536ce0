// Package graph provides the in-memory network model consumed by the
// centrality engine. Nodes are opaque string identifiers; edges are ordered
// pairs in a directed graph and unordered pairs otherwise. Parallel edges
// collapse into one edge whose weight is the sum of their weights.
package graph

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrNodeNotFound is returned when an edge references a node that was never added.
var ErrNodeNotFound = errors.New("graph: node not found")

// ErrDuplicateNode is returned when adding a node that already exists.
var ErrDuplicateNode = errors.New("graph: duplicate node")

// ErrEmptyNodeID is returned when adding a node with an empty identifier.
var ErrEmptyNodeID = errors.New("graph: empty node id")

// ErrInvalidWeight is returned for a negative or non-finite edge weight.
var ErrInvalidWeight = errors.New("graph: invalid edge weight")

// Edge is a single edge with its accumulated weight. For undirected graphs
// From sorts before or equal to To.
type Edge struct {
	From   string
	To     string
	Weight float64
}

// Graph is a simple node/edge container. It is not safe for concurrent
// mutation; once built it may be read from many goroutines.
type Graph struct {
	directed bool
	nodes    map[string]struct{}
	// adjacency maps nodeID → neighbour → weight (out-edges when directed).
	adjacency map[string]map[string]float64
	// reverse maps nodeID → predecessor → weight. Only kept for directed graphs.
	reverse map[string]map[string]float64
	edges   int
}

// New creates an empty graph.
func New(directed bool) *Graph {
	g := &Graph{
		directed:  directed,
		nodes:     make(map[string]struct{}),
		adjacency: make(map[string]map[string]float64),
	}
	if directed {
		g.reverse = make(map[string]map[string]float64)
	}
	return g
}

// Directed reports whether edges are ordered pairs.
func (g *Graph) Directed() bool { return g.directed }

// AddNode adds a node. Returns ErrDuplicateNode if it already exists.
func (g *Graph) AddNode(id string) error {
	if id == "" {
		return ErrEmptyNodeID
	}
	if _, exists := g.nodes[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	g.nodes[id] = struct{}{}
	g.adjacency[id] = make(map[string]float64)
	if g.directed {
		g.reverse[id] = make(map[string]float64)
	}
	return nil
}

// HasNode reports whether id is a node of g.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// AddEdge adds an edge between from and to. Both endpoints must already be
// nodes. Adding an existing edge again sums the weights.
func (g *Graph) AddEdge(from, to string, weight float64) error {
	if _, ok := g.nodes[from]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, from)
	}
	if _, ok := g.nodes[to]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, to)
	}
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return fmt.Errorf("%w: %s→%s = %v", ErrInvalidWeight, from, to, weight)
	}

	if _, exists := g.adjacency[from][to]; !exists {
		g.edges++
	}
	g.adjacency[from][to] += weight
	if g.directed {
		g.reverse[to][from] += weight
		return nil
	}
	if from != to {
		g.adjacency[to][from] += weight
	}
	return nil
}

// HasEdge reports whether an edge from → to exists. For undirected graphs
// the order of the endpoints is irrelevant.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.adjacency[from][to]
	return ok
}

// Weight returns the accumulated weight of the edge from → to.
func (g *Graph) Weight(from, to string) (float64, bool) {
	w, ok := g.adjacency[from][to]
	return w, ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int { return g.edges }

// Nodes returns all node IDs in sorted order.
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Successors returns the sorted out-neighbours of id. For undirected graphs
// this is every neighbour.
func (g *Graph) Successors(id string) []string {
	return sortedKeys(g.adjacency[id])
}

// Predecessors returns the sorted in-neighbours of id. For undirected graphs
// this equals Successors.
func (g *Graph) Predecessors(id string) []string {
	if !g.directed {
		return sortedKeys(g.adjacency[id])
	}
	return sortedKeys(g.reverse[id])
}

// Edges returns every edge once, sorted by (From, To).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for from, targets := range g.adjacency {
		for to, w := range targets {
			if !g.directed && to < from {
				continue
			}
			out = append(out, Edge{From: from, To: to, Weight: w})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// Induced returns the subgraph induced by keep. IDs not present in g are
// ignored.
func (g *Graph) Induced(keep []string) *Graph {
	sub := New(g.directed)
	for _, id := range keep {
		if g.HasNode(id) && !sub.HasNode(id) {
			_ = sub.AddNode(id)
		}
	}
	for _, e := range g.Edges() {
		if sub.HasNode(e.From) && sub.HasNode(e.To) {
			_ = sub.AddEdge(e.From, e.To, e.Weight)
		}
	}
	return sub
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
