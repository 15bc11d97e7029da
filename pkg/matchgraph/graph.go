// Package matchgraph turns scored pairwise candidates into an undirected
// weighted graph over entity IRIs.
package matchgraph

import (
	"cmp"
	"slices"

	"github.com/agentstation/ontomerge/pkg/constants"
)

// Candidate is one pairwise similarity judgment.
type Candidate struct {
	EntityA  string   `json:"entity_a" yaml:"entity_a"`
	EntityB  string   `json:"entity_b" yaml:"entity_b"`
	Score    *float64 `json:"score,omitempty" yaml:"score,omitempty"`
	Accepted bool     `json:"accepted" yaml:"accepted"`
}

// Weight returns the score, or constants.DefaultScore when absent.
func (c Candidate) Weight() float64 {
	if c.Score == nil {
		return constants.DefaultScore
	}
	return *c.Score
}

// Score returns a pointer to s, for building candidates.
func Score(s float64) *float64 {
	return &s
}

// Edge is an undirected edge; A sorts before B.
type Edge struct {
	A      string  `json:"a" yaml:"a"`
	B      string  `json:"b" yaml:"b"`
	Weight float64 `json:"weight" yaml:"weight"`
}

type pair struct{ a, b string }

func newPair(a, b string) pair {
	if b < a {
		a, b = b, a
	}
	return pair{a, b}
}

// Graph is an undirected graph with max-weight edge merging.
type Graph struct {
	nodes map[string]struct{}
	edges map[pair]float64
	adj   map[string]map[string]struct{}
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]struct{}),
		edges: make(map[pair]float64),
		adj:   make(map[string]map[string]struct{}),
	}
}

// AddEdge inserts an undirected edge, keeping the larger weight when the edge
// already exists. Self-loops are ignored and reported as false.
func (g *Graph) AddEdge(a, b string, weight float64) bool {
	if a == b {
		return false
	}
	p := newPair(a, b)
	if w, ok := g.edges[p]; ok && w >= weight {
		return true
	}
	g.edges[p] = weight
	g.link(a, b)
	g.link(b, a)
	return true
}

func (g *Graph) link(from, to string) {
	g.nodes[from] = struct{}{}
	set, ok := g.adj[from]
	if !ok {
		set = make(map[string]struct{})
		g.adj[from] = set
	}
	set[to] = struct{}{}
}

// HasEdge reports whether a and b are directly connected.
func (g *Graph) HasEdge(a, b string) bool {
	_, ok := g.edges[newPair(a, b)]
	return ok
}

// Weight returns the weight of the edge between a and b.
func (g *Graph) Weight(a, b string) (float64, bool) {
	w, ok := g.edges[newPair(a, b)]
	return w, ok
}

// Nodes returns every node in lexicographic order.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Edges returns every edge ordered by (A, B).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for p, w := range g.edges {
		out = append(out, Edge{A: p.a, B: p.b, Weight: w})
	}
	slices.SortFunc(out, func(x, y Edge) int {
		return cmp.Or(cmp.Compare(x.A, y.A), cmp.Compare(x.B, y.B))
	})
	return out
}

// Neighbors returns the sorted neighbors of a node.
func (g *Graph) Neighbors(node string) []string {
	out := make([]string, 0, len(g.adj[node]))
	for n := range g.adj[node] {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}
