package cluster

// UnionFind is a disjoint-set forest over string keys with path compression
// and union by rank.
type UnionFind struct {
	parent map[string]string
	rank   map[string]int
}

// NewUnionFind creates an empty forest.
func NewUnionFind() *UnionFind {
	return &UnionFind{
		parent: make(map[string]string),
		rank:   make(map[string]int),
	}
}

// Add inserts x as its own set if it is not present yet.
func (u *UnionFind) Add(x string) {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
	}
}

// Find returns the representative of x's set, adding x if needed.
func (u *UnionFind) Find(x string) string {
	u.Add(x)
	root := x
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[x] != root {
		next := u.parent[x]
		u.parent[x] = root
		x = next
	}
	return root
}

// Union merges the sets of a and b and reports whether they were separate.
func (u *UnionFind) Union(a, b string) bool {
	ra, rb := u.Find(a), u.Find(b)
	if ra == rb {
		return false
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
	return true
}

// Connected reports whether a and b share a set.
func (u *UnionFind) Connected(a, b string) bool {
	return u.Find(a) == u.Find(b)
}

// Len returns the number of keys.
func (u *UnionFind) Len() int {
	return len(u.parent)
}

// Groups returns the members of every set keyed by representative.
func (u *UnionFind) Groups() map[string][]string {
	groups := make(map[string][]string)
	for x := range u.parent {
		r := u.Find(x)
		groups[r] = append(groups[r], x)
	}
	return groups
}
