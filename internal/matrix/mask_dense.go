package matrix

import "github.com/bits-and-blooms/bitset"

// DenseMask stores one bitset per row.
type DenseMask struct {
	n    int
	rows []*bitset.BitSet
}

// NewDenseMask returns an all-zero n×n dense mask.
func NewDenseMask(n int) *DenseMask {
	m := &DenseMask{n: n, rows: make([]*bitset.BitSet, n)}
	for i := range m.rows {
		m.rows[i] = bitset.New(uint(n))
	}
	return m
}

func (m *DenseMask) Size() int { return m.n }

func (m *DenseMask) Has(i, j int) bool { return m.rows[i].Test(uint(j)) }

func (m *DenseMask) Set(i, j int) { m.rows[i].Set(uint(j)) }

func (m *DenseMask) EachInRow(i int, fn func(j int)) {
	row := m.rows[i]
	for j, ok := row.NextSet(0); ok; j, ok = row.NextSet(j + 1) {
		fn(int(j))
	}
}

func (m *DenseMask) NNZ() int {
	total := 0
	for _, row := range m.rows {
		total += int(row.Count())
	}
	return total
}

func (m *DenseMask) IsZero() bool {
	for _, row := range m.rows {
		if row.Any() {
			return false
		}
	}
	return true
}

func (m *DenseMask) ColSums() []int {
	sums := make([]int, m.n)
	for i := range m.rows {
		m.EachInRow(i, func(j int) { sums[j]++ })
	}
	return sums
}

// Reach ORs together the step rows selected by each row of m. Rows of m
// that are empty cost nothing, which keeps late hops cheap.
func (m *DenseMask) Reach(step Mask) Mask {
	checkSize(m, step)
	out := NewDenseMask(m.n)
	if s, ok := step.(*DenseMask); ok {
		for i, row := range m.rows {
			dst := out.rows[i]
			for k, ok := row.NextSet(0); ok; k, ok = row.NextSet(k + 1) {
				dst.InPlaceUnion(s.rows[k])
			}
		}
		return out
	}
	for i := range m.rows {
		dst := out.rows[i]
		m.EachInRow(i, func(k int) {
			step.EachInRow(k, func(j int) { dst.Set(uint(j)) })
		})
	}
	return out
}

func (m *DenseMask) Exclude(seen Mask) {
	checkSize(m, seen)
	if s, ok := seen.(*DenseMask); ok {
		for i, row := range m.rows {
			row.InPlaceDifference(s.rows[i])
			row.Clear(uint(i))
		}
		return
	}
	for i, row := range m.rows {
		seen.EachInRow(i, func(j int) { row.Clear(uint(j)) })
		row.Clear(uint(i))
	}
}

func (m *DenseMask) Merge(other Mask) {
	checkSize(m, other)
	if o, ok := other.(*DenseMask); ok {
		for i, row := range m.rows {
			row.InPlaceUnion(o.rows[i])
		}
		return
	}
	for i, row := range m.rows {
		other.EachInRow(i, func(j int) { row.Set(uint(j)) })
	}
}

func (m *DenseMask) Clone() Mask {
	out := &DenseMask{n: m.n, rows: make([]*bitset.BitSet, m.n)}
	for i, row := range m.rows {
		out.rows[i] = row.Clone()
	}
	return out
}
