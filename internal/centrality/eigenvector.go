package centrality

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/papapumpkin/centrality/internal/matrix"
)

// ErrComponentTooSmall is returned when eigenvector centrality is requested
// on fewer than two nodes.
var ErrComponentTooSmall = errors.New("centrality: component too small for eigenvector centrality")

// ErrNotConverged is returned when the eigen solver fails.
var ErrNotConverged = errors.New("centrality: eigenvector did not converge")

// EigenOptions configures the power iteration.
type EigenOptions struct {
	MaxIterations int     // upper bound on iterations
	Tolerance     float64 // per-node L1 convergence threshold
}

// DefaultEigenOptions returns 1000 iterations at tolerance 1e-6.
func DefaultEigenOptions() EigenOptions {
	return EigenOptions{
		MaxIterations: 1000,
		Tolerance:     1e-6,
	}
}

// Eigenvector returns the dominant eigenvector of adj, aligned with
// adj.Nodes, scaled to unit Euclidean norm with a non-negative sum.
//
// Both orientations use power iteration on Aᵀ + I over the non-zero entries
// of adj, so a node's score is driven by the scores of the nodes pointing at
// it; the identity shift keeps periodic graphs from oscillating. For
// undirected graphs Aᵀ = A. When the iteration cap is hit on a symmetric
// matrix, gonum's EigenSym is used instead.
func Eigenvector(adj *matrix.Adjacency, opts EigenOptions) ([]float64, error) {
	n := adj.Len()
	if n < 2 {
		return nil, fmt.Errorf("%w: %d node(s)", ErrComponentTooSmall, n)
	}

	vec, err := powerIteration(compress(adj.Values), opts)
	if err != nil && !adj.Directed && errors.Is(err, ErrNotConverged) {
		vec, err = symmetricLeading(adj.Symmetric())
	}
	if err != nil {
		return nil, err
	}

	norm := floats.Norm(vec, 2)
	if norm == 0 {
		return nil, fmt.Errorf("%w: zero vector", ErrNotConverged)
	}
	if floats.Sum(vec) < 0 {
		norm = -norm
	}
	floats.Scale(1/norm, vec)
	return vec, nil
}

// sparseRows holds the non-zero entries of a square matrix row by row.
type sparseRows struct {
	start []int // row i spans cols[start[i]:start[i+1]]
	cols  []int
	vals  []float64
}

func compress(a *mat.Dense) sparseRows {
	n, _ := a.Dims()
	s := sparseRows{start: make([]int, n+1)}
	for i := 0; i < n; i++ {
		for j, v := range a.RawRowView(i) {
			if v != 0 {
				s.cols = append(s.cols, j)
				s.vals = append(s.vals, v)
			}
		}
		s.start[i+1] = len(s.cols)
	}
	return s
}

func (s sparseRows) size() int { return len(s.start) - 1 }

// shiftedTransposeMul sets dst = (Aᵀ + I)x.
func (s sparseRows) shiftedTransposeMul(dst, x []float64) {
	copy(dst, x)
	for i := 0; i < s.size(); i++ {
		xi := x[i]
		if xi == 0 {
			continue
		}
		for k := s.start[i]; k < s.start[i+1]; k++ {
			dst[s.cols[k]] += s.vals[k] * xi
		}
	}
}

func symmetricLeading(a *mat.SymDense) ([]float64, error) {
	var es mat.EigenSym
	if ok := es.Factorize(a, true); !ok {
		return nil, fmt.Errorf("%w: symmetric factorisation failed", ErrNotConverged)
	}
	values := es.Values(nil)
	var vectors mat.Dense
	es.VectorsTo(&vectors)
	return mat.Col(nil, floats.MaxIdx(values), &vectors), nil
}

// powerIteration iterates x ← (Aᵀ + I)x / ‖(Aᵀ + I)x‖ from the uniform
// vector until the L1 change drops below n·Tolerance. Each step costs
// O(n + nnz).
func powerIteration(a sparseRows, opts EigenOptions) ([]float64, error) {
	n := a.size()
	if opts.MaxIterations <= 0 {
		opts = DefaultEigenOptions()
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = 1 / float64(n)
	}
	next := make([]float64, n)
	threshold := float64(n) * opts.Tolerance

	for iter := 0; iter < opts.MaxIterations; iter++ {
		a.shiftedTransposeMul(next, x)

		norm := floats.Norm(next, 2)
		if norm == 0 {
			return nil, fmt.Errorf("%w: zero vector at iteration %d", ErrNotConverged, iter)
		}
		floats.Scale(1/norm, next)

		if floats.Distance(next, x, 1) < threshold {
			return next, nil
		}
		x, next = next, x
	}
	return nil, fmt.Errorf("%w: %d iterations", ErrNotConverged, opts.MaxIterations)
}
