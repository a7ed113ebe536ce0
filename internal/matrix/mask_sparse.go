package matrix

import "slices"

// SparseMask stores the sorted column indices of each row.
type SparseMask struct {
	n    int
	rows [][]int
}

// NewSparseMask returns an all-zero n×n sparse mask.
func NewSparseMask(n int) *SparseMask {
	return &SparseMask{n: n, rows: make([][]int, n)}
}

func (m *SparseMask) Size() int { return m.n }

func (m *SparseMask) Has(i, j int) bool {
	_, found := slices.BinarySearch(m.rows[i], j)
	return found
}

func (m *SparseMask) Set(i, j int) {
	if j < 0 || j >= m.n {
		panic(ErrDimensionMismatch)
	}
	pos, found := slices.BinarySearch(m.rows[i], j)
	if !found {
		m.rows[i] = slices.Insert(m.rows[i], pos, j)
	}
}

func (m *SparseMask) EachInRow(i int, fn func(j int)) {
	for _, j := range m.rows[i] {
		fn(j)
	}
}

func (m *SparseMask) NNZ() int {
	total := 0
	for _, row := range m.rows {
		total += len(row)
	}
	return total
}

func (m *SparseMask) IsZero() bool {
	for _, row := range m.rows {
		if len(row) > 0 {
			return false
		}
	}
	return true
}

func (m *SparseMask) ColSums() []int {
	sums := make([]int, m.n)
	for _, row := range m.rows {
		for _, j := range row {
			sums[j]++
		}
	}
	return sums
}

// Reach collects, per row, the union of the step rows it selects. A stamp
// slice marks columns already collected for the current row so the scratch
// space is never cleared between rows.
func (m *SparseMask) Reach(step Mask) Mask {
	checkSize(m, step)
	out := NewSparseMask(m.n)
	stamp := make([]int, m.n)
	for i, row := range m.rows {
		if len(row) == 0 {
			continue
		}
		mark := i + 1
		var acc []int
		for _, k := range row {
			step.EachInRow(k, func(j int) {
				if stamp[j] != mark {
					stamp[j] = mark
					acc = append(acc, j)
				}
			})
		}
		slices.Sort(acc)
		out.rows[i] = acc
	}
	return out
}

func (m *SparseMask) Exclude(seen Mask) {
	checkSize(m, seen)
	if s, ok := seen.(*SparseMask); ok {
		for i, row := range m.rows {
			m.rows[i] = differenceSorted(row, s.rows[i], i)
		}
		return
	}
	for i, row := range m.rows {
		kept := row[:0]
		for _, j := range row {
			if j != i && !seen.Has(i, j) {
				kept = append(kept, j)
			}
		}
		m.rows[i] = kept
	}
}

func (m *SparseMask) Merge(other Mask) {
	checkSize(m, other)
	var scratch []int
	if o, ok := other.(*SparseMask); ok {
		for i, row := range m.rows {
			m.rows[i], scratch = mergeRow(row, o.rows[i], scratch)
		}
		return
	}
	var add []int
	for i, row := range m.rows {
		add = add[:0]
		other.EachInRow(i, func(j int) { add = append(add, j) })
		m.rows[i], scratch = mergeRow(row, add, scratch)
	}
}

// mergeRow returns the union of row and add, reusing row's storage when it
// has room. scratch is returned for reuse by the next row.
func mergeRow(row, add, scratch []int) ([]int, []int) {
	switch {
	case len(add) == 0:
		return row, scratch
	case len(row) == 0:
		return slices.Clone(add), scratch
	}
	scratch = mergeSortedInto(scratch[:0], row, add)
	return append(row[:0], scratch...), scratch
}

func (m *SparseMask) Clone() Mask {
	out := NewSparseMask(m.n)
	for i, row := range m.rows {
		out.rows[i] = slices.Clone(row)
	}
	return out
}

// differenceSorted removes from a, in place, every element of b and the
// value skip. Both slices are ascending and duplicate-free.
func differenceSorted(a, b []int, skip int) []int {
	kept := a[:0]
	k := 0
	for _, j := range a {
		for k < len(b) && b[k] < j {
			k++
		}
		if j == skip || (k < len(b) && b[k] == j) {
			continue
		}
		kept = append(kept, j)
	}
	return kept
}

// mergeSortedInto appends the sorted union of two ascending, duplicate-free
// slices to dst.
func mergeSortedInto(dst, a, b []int) []int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			dst = append(dst, a[i])
			i++
		case a[i] > b[j]:
			dst = append(dst, b[j])
			j++
		default:
			dst = append(dst, a[i])
			i++
			j++
		}
	}
	dst = append(dst, a[i:]...)
	return append(dst, b[j:]...)
}
