// Package cluster partitions the match graph into equivalence classes:
// connected components of two or more IRIs.
package cluster

import (
	"context"
	"slices"
	"strings"

	"github.com/agentstation/ontomerge/pkg/logging"
	"github.com/agentstation/ontomerge/pkg/matchgraph"
)

// Graph is the view of a match graph clustering needs.
type Graph interface {
	Nodes() []string
	Edges() []matchgraph.Edge
}

// Class is one equivalence class. Members are sorted lexicographically.
type Class struct {
	Members []string `json:"members" yaml:"members"`
	// Edges is the number of admitted edges inside the class.
	Edges int `json:"edges" yaml:"edges"`
	// Cohesion is Edges divided by the number of member pairs; 1.0 means
	// every pair was matched directly.
	Cohesion float64 `json:"cohesion" yaml:"cohesion"`
	// MinWeight is the weakest edge holding the class together.
	MinWeight float64 `json:"min_weight" yaml:"min_weight"`
}

// Smallest returns the lexicographically smallest member IRI.
func (c Class) Smallest() string {
	if len(c.Members) == 0 {
		return ""
	}
	return c.Members[0]
}

// Size returns the number of members.
func (c Class) Size() int {
	return len(c.Members)
}

// Contains reports whether iri is a member.
func (c Class) Contains(iri string) bool {
	_, found := slices.BinarySearch(c.Members, iri)
	return found
}

// Partition is the set of equivalence classes of a run, ordered by smallest
// member.
type Partition struct {
	Classes []Class
	index   map[string]int
}

// Compute finds the connected components of g with union-find. Components
// of a single IRI are not emitted.
func Compute(ctx context.Context, g Graph) *Partition {
	uf := NewUnionFind()
	for _, n := range g.Nodes() {
		uf.Add(n)
	}
	edges := g.Edges()
	for _, e := range edges {
		if e.A == e.B {
			continue
		}
		uf.Union(e.A, e.B)
	}

	p := newPartition(classesOf(uf))
	p.measure(edges)

	logging.FromContext(ctx).Debug().
		Int("nodes", uf.Len()).
		Int("classes", len(p.Classes)).
		Msg("Equivalence classes computed")
	return p
}

// FromClasses builds a partition from explicit member lists. Members are
// sorted, classes under two members are dropped, and an IRI listed in more
// than one class joins them.
func FromClasses(groups ...[]string) *Partition {
	uf := NewUnionFind()
	for _, g := range groups {
		for i, m := range g {
			uf.Add(m)
			if i > 0 {
				uf.Union(g[0], m)
			}
		}
	}
	return newPartition(classesOf(uf))
}

// classesOf returns the sets of uf with two or more members, each sorted,
// ordered by smallest member.
func classesOf(uf *UnionFind) []Class {
	var classes []Class
	for _, members := range uf.Groups() {
		if len(members) < 2 {
			continue
		}
		slices.Sort(members)
		classes = append(classes, Class{Members: members})
	}
	slices.SortFunc(classes, func(a, b Class) int {
		return strings.Compare(a.Smallest(), b.Smallest())
	})
	return classes
}

func newPartition(classes []Class) *Partition {
	p := &Partition{Classes: classes, index: make(map[string]int)}
	for i, c := range classes {
		for _, m := range c.Members {
			p.index[m] = i
		}
	}
	return p
}

func (p *Partition) measure(edges []matchgraph.Edge) {
	for _, e := range edges {
		i, ok := p.index[e.A]
		if !ok {
			continue
		}
		c := &p.Classes[i]
		if c.Edges == 0 || e.Weight < c.MinWeight {
			c.MinWeight = e.Weight
		}
		c.Edges++
	}
	for i := range p.Classes {
		c := &p.Classes[i]
		n := float64(c.Size())
		c.Cohesion = float64(c.Edges) / (n * (n - 1) / 2)
	}
}

// Len returns the number of classes.
func (p *Partition) Len() int {
	return len(p.Classes)
}

// IndexOf returns the index of the class containing iri.
func (p *Partition) IndexOf(iri string) (int, bool) {
	i, ok := p.index[iri]
	return i, ok
}

// ClassOf returns the class containing iri.
func (p *Partition) ClassOf(iri string) (Class, bool) {
	i, ok := p.index[iri]
	if !ok {
		return Class{}, false
	}
	return p.Classes[i], true
}

// Clustered reports whether iri belongs to any class.
func (p *Partition) Clustered(iri string) bool {
	_, ok := p.index[iri]
	return ok
}

// Members returns every clustered IRI in lexicographic order.
func (p *Partition) Members() []string {
	out := make([]string, 0, len(p.index))
	for iri := range p.index {
		out = append(out, iri)
	}
	slices.Sort(out)
	return out
}

// Sizes returns the sorted class sizes, largest first.
func (p *Partition) Sizes() []int {
	out := make([]int, len(p.Classes))
	for i, c := range p.Classes {
		out[i] = c.Size()
	}
	slices.Sort(out)
	slices.Reverse(out)
	return out
}
