// Package matrix materialises graphs as square matrices over a sorted node
// ordering. Two representations are provided: Mask, an exact 0/1 matrix used
// for reachability propagation, and Adjacency, a numeric matrix backed by
// gonum used by spectral measures.
//
// Mask has two interchangeable backends. The dense backend stores one bitset
// per row and is the default. The sparse backend stores sorted column
// indices per row and needs O(nnz) memory instead of O(n²) bits, which only
// pays off once rows stay thin across hops; reachability masks fill in
// quickly, so dense is usually faster. Both produce identical results.
package matrix

import (
	"errors"
	"fmt"
)

// ErrUnknownBackend is returned when a backend name is not recognised.
var ErrUnknownBackend = errors.New("matrix: unknown backend")

// ErrDimensionMismatch is returned when two masks of different size meet.
var ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

// Backend selects a Mask implementation.
type Backend string

// Supported backends.
const (
	BackendDense  Backend = "dense"
	BackendSparse Backend = "sparse"
)

// ParseBackend validates a backend name. The empty string selects the dense
// backend.
func ParseBackend(name string) (Backend, error) {
	switch Backend(name) {
	case "", BackendDense:
		return BackendDense, nil
	case BackendSparse:
		return BackendSparse, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// NewMask returns an all-zero n×n mask using backend b.
func NewMask(b Backend, n int) (Mask, error) {
	switch b {
	case "", BackendDense:
		return NewDenseMask(n), nil
	case BackendSparse:
		return NewSparseMask(n), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, b)
	}
}
