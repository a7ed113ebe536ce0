package matrix

// Mask is a square matrix whose entries are exactly 0 or 1. Arithmetic on a
// Mask is the arithmetic of non-negative integer matrices followed by
// clipping into [0, 1], which makes every operation exact.
//
// Operations that take a second Mask accept any backend; matching backends
// take a fast path.
type Mask interface {
	// Size returns n for an n×n mask.
	Size() int
	// Has reports whether entry (i, j) is 1.
	Has(i, j int) bool
	// Set sets entry (i, j) to 1.
	Set(i, j int)
	// EachInRow calls fn for every column j with entry (i, j) set, in
	// ascending order.
	EachInRow(i int, fn func(j int))
	// NNZ returns the number of set entries.
	NNZ() int
	// IsZero reports whether no entry is set.
	IsZero() bool
	// ColSums returns, for every column, the number of set entries.
	ColSums() []int
	// Reach returns clip(m·step, max=1): entry (i, j) is set when some k
	// has (i, k) set in m and (k, j) set in step.
	Reach(step Mask) Mask
	// Exclude computes clip(m − (I + seen), min=0) in place: entries set in
	// seen and diagonal entries are cleared.
	Exclude(seen Mask)
	// Merge sets, in place, every entry set in other.
	Merge(other Mask)
	// Clone returns an independent copy.
	Clone() Mask
}

// checkSize panics when two masks disagree on size. Mixing sizes is a
// programming error, not a data error.
func checkSize(a, b Mask) {
	if a.Size() != b.Size() {
		panic(ErrDimensionMismatch)
	}
}
