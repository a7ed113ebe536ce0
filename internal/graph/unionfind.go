package graph

// unionFind is a disjoint-set forest over dense integer indices with path
// compression and union by rank. Indices refer to positions in a sorted node
// slice, so the set with the smallest root-independent member is easy to find.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

// find returns the root of the set containing x, compressing the path.
func (uf *unionFind) find(x int) int {
	root := x
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[x] != root {
		next := uf.parent[x]
		uf.parent[x] = root
		x = next
	}
	return root
}

// union merges the sets containing x and y.
func (uf *unionFind) union(x, y int) {
	rx, ry := uf.find(x), uf.find(y)
	if rx == ry {
		return
	}
	switch {
	case uf.rank[rx] < uf.rank[ry]:
		uf.parent[rx] = ry
	case uf.rank[rx] > uf.rank[ry]:
		uf.parent[ry] = rx
	default:
		uf.parent[ry] = rx
		uf.rank[rx]++
	}
}

// groups returns the member indices of every set. Members are ascending and
// groups are ordered by their smallest member.
func (uf *unionFind) groups() [][]int {
	byRoot := make(map[int]int)
	var out [][]int
	for i := range uf.parent {
		r := uf.find(i)
		slot, ok := byRoot[r]
		if !ok {
			slot = len(out)
			byRoot[r] = slot
			out = append(out, nil)
		}
		out[slot] = append(out[slot], i)
	}
	return out
}
