// Package centrality computes per-node centrality measures for a graph:
// discounted neighborhood centrality for a set of attenuation coefficients,
// degree, and eigenvector centrality on the giant component.
package centrality

import (
	"context"
	"errors"
	"fmt"

	"github.com/papapumpkin/centrality/internal/graph"
	"github.com/papapumpkin/centrality/internal/matrix"
	"github.com/papapumpkin/centrality/internal/table"
)

// Column names of the classical measures.
const (
	ColumnDegree              = "degree"
	ColumnDegreeWeighted      = "degree_w"
	ColumnEigenvector         = "eigenvector"
	ColumnEigenvectorWeighted = "eigenvector_w"
)

// Issue kinds reported for non-fatal problems.
const (
	KindEigenvectorUndefined    = "eigenvector_undefined"
	KindEigenvectorNotConverged = "eigenvector_not_converged"
)

// Options controls a single computation. It is a plain value, so one
// Options can be shared by all workers.
type Options struct {
	Attenuations Attenuations
	// Weighted adds degree_w and eigenvector_w columns beside the
	// unweighted ones.
	Weighted bool
	Backend  matrix.Backend
	Eigen    EigenOptions
}

// DefaultOptions returns the default attenuations, unweighted measures and
// the dense backend.
func DefaultOptions() Options {
	return Options{
		Attenuations: DefaultAttenuations(),
		Backend:      matrix.BackendDense,
		Eigen:        DefaultEigenOptions(),
	}
}

// Validate checks the attenuation set and backend name.
func (o Options) Validate() error {
	if err := o.Attenuations.Validate(); err != nil {
		return err
	}
	if _, err := matrix.ParseBackend(string(o.Backend)); err != nil {
		return err
	}
	return nil
}

// Columns returns the output columns in order.
func (o Options) Columns() []string {
	cols := o.Attenuations.Columns()
	cols = append(cols, ColumnDegree)
	if o.Weighted {
		cols = append(cols, ColumnDegreeWeighted)
	}
	cols = append(cols, ColumnEigenvector)
	if o.Weighted {
		cols = append(cols, ColumnEigenvectorWeighted)
	}
	return cols
}

// Issue is a non-fatal problem found while computing a table.
type Issue struct {
	Kind   string
	Reason string
}

// Result is the outcome of Compute.
type Result struct {
	Table     *table.Table
	Nodes     int
	Edges     int
	GiantSize int
	Hops      int
	Issues    []Issue
}

// Compute runs every measure on g and joins them into one table named id.
//
// Neighborhood and degree centrality cover the whole graph. Eigenvector
// centrality covers the giant component only; its columns are empty for
// other nodes, and entirely empty with an Issue recorded when the solver
// cannot produce a vector. Errors are returned only for failures that leave
// no usable table.
func Compute(ctx context.Context, id string, g *graph.Graph, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	mask, nodes, err := matrix.BuildMask(g, opts.Backend)
	if err != nil {
		return nil, err
	}
	nb, err := Neighborhood(ctx, mask, opts.Attenuations)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}

	giant := graph.GiantComponent(g)
	res := &Result{
		Table:     table.New(id, nodes),
		Nodes:     g.Len(),
		Edges:     g.EdgeCount(),
		GiantSize: giant.Len(),
		Hops:      nb.Hops,
	}
	tbl := res.Table

	for a, alpha := range nb.Alphas {
		if err := tbl.AddDense(NeighborhoodColumn(alpha), nodes, nb.Scores[a]); err != nil {
			return nil, err
		}
	}

	if err := tbl.AddDense(ColumnDegree, nodes, Degree(g, false)); err != nil {
		return nil, err
	}
	if opts.Weighted {
		if err := tbl.AddDense(ColumnDegreeWeighted, nodes, Degree(g, true)); err != nil {
			return nil, err
		}
	}

	if err := res.addEigenvector(giant, ColumnEigenvector, false, opts.Eigen); err != nil {
		return nil, err
	}
	if opts.Weighted {
		if err := res.addEigenvector(giant, ColumnEigenvectorWeighted, true, opts.Eigen); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// addEigenvector adds one eigenvector column, recording solver failures as
// issues and leaving the column empty.
func (r *Result) addEigenvector(giant *graph.Graph, column string, weighted bool, opts EigenOptions) error {
	adj := matrix.Build(giant, weighted)
	vec, err := Eigenvector(adj, opts)
	switch {
	case err == nil:
		return r.Table.AddDense(column, adj.Nodes, vec)
	case errors.Is(err, ErrComponentTooSmall):
		r.Issues = append(r.Issues, Issue{Kind: KindEigenvectorUndefined, Reason: fmt.Sprintf("%s: %v", column, err)})
	case errors.Is(err, ErrNotConverged):
		r.Issues = append(r.Issues, Issue{Kind: KindEigenvectorNotConverged, Reason: fmt.Sprintf("%s: %v", column, err)})
	default:
		return err
	}
	return r.Table.AddEmpty(column)
}
