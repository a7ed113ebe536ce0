package matrix

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/papapumpkin/centrality/internal/graph"
)

// Adjacency is the numeric adjacency matrix of a graph over its sorted node
// list. Entry (i, j) is 1, or the accumulated edge weight when built
// weighted, for every edge i→j. Undirected graphs produce a symmetric matrix.
type Adjacency struct {
	// Nodes holds the row/column ordering, sorted lexicographically.
	Nodes []string
	// Values is nil for an empty graph.
	Values   *mat.Dense
	Directed bool
	Weighted bool

	index map[string]int
}

// Build materialises g as a numeric adjacency matrix.
//
// Unweighted: every present edge contributes exactly 1 regardless of how many
// parallel edges were merged into it. Weighted: the entry is the summed
// weight. Self-loops appear on the diagonal only if present in g.
func Build(g *graph.Graph, weighted bool) *Adjacency {
	nodes := g.Nodes()
	a := &Adjacency{
		Nodes:    nodes,
		Directed: g.Directed(),
		Weighted: weighted,
		index:    indexOf(nodes),
	}
	n := len(nodes)
	if n == 0 {
		return a
	}

	data := make([]float64, n*n)
	for _, e := range g.Edges() {
		i, j := a.index[e.From], a.index[e.To]
		v := 1.0
		if weighted {
			v = e.Weight
		}
		data[i*n+j] = v
		if !a.Directed {
			data[j*n+i] = v
		}
	}
	a.Values = mat.NewDense(n, n, data)
	return a
}

// Len returns the matrix dimension.
func (a *Adjacency) Len() int { return len(a.Nodes) }

// Index returns the row of node id.
func (a *Adjacency) Index(id string) (int, bool) {
	i, ok := a.index[id]
	return i, ok
}

// At returns entry (i, j).
func (a *Adjacency) At(i, j int) float64 { return a.Values.At(i, j) }

// RowSums returns the sum of each row.
func (a *Adjacency) RowSums() []float64 {
	sums := make([]float64, a.Len())
	for i := range sums {
		sums[i] = floats.Sum(a.Values.RawRowView(i))
	}
	return sums
}

// ColSums returns the sum of each column.
func (a *Adjacency) ColSums() []float64 {
	n := a.Len()
	sums := make([]float64, n)
	for i := 0; i < n; i++ {
		floats.Add(sums, a.Values.RawRowView(i))
	}
	return sums
}

// Symmetric returns the matrix as a gonum SymDense. It must only be called
// on adjacency built from an undirected, non-empty graph.
func (a *Adjacency) Symmetric() *mat.SymDense {
	n := a.Len()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, a.Values.At(i, j))
		}
	}
	return sym
}

// BuildMask materialises g as a 0/1 mask over its sorted node list using
// backend b. Parallel edges and weights are ignored.
func BuildMask(g *graph.Graph, b Backend) (Mask, []string, error) {
	nodes := g.Nodes()
	m, err := NewMask(b, len(nodes))
	if err != nil {
		return nil, nil, err
	}
	index := indexOf(nodes)
	for _, e := range g.Edges() {
		i, j := index[e.From], index[e.To]
		m.Set(i, j)
		if !g.Directed() {
			m.Set(j, i)
		}
	}
	return m, nodes, nil
}

func indexOf(nodes []string) map[string]int {
	index := make(map[string]int, len(nodes))
	for i, id := range nodes {
		index[id] = i
	}
	return index
}
