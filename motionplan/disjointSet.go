package motionplan

// disjointSet is a union-find structure over integer node indices with path
// compression and union by rank. It tracks connected components incrementally;
// callers must union the endpoints of every edge they insert.
type disjointSet struct {
	parent []int
	rank   []int
}

// makeSet registers a new singleton element and returns its index.
func (d *disjointSet) makeSet() int {
	x := len(d.parent)
	d.parent = append(d.parent, x)
	d.rank = append(d.rank, 0)
	return x
}

func (d *disjointSet) find(x int) int {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

func (d *disjointSet) union(a, b int) {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return
	}
	if d.rank[ra] < d.rank[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	if d.rank[ra] == d.rank[rb] {
		d.rank[ra]++
	}
}

func (d *disjointSet) sameSet(a, b int) bool {
	return d.find(a) == d.find(b)
}
