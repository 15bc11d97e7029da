package matchgraph

import (
	"context"

	"github.com/agentstation/ontomerge/pkg/diagnostics"
	"github.com/agentstation/ontomerge/pkg/logging"
)

// Lookup answers whether an IRI exists in the entity catalog.
type Lookup interface {
	Has(iri string) bool
}

// Stats counts what happened to the candidates fed to a Builder.
type Stats struct {
	Seen        int `json:"seen" yaml:"seen"`
	Admitted    int `json:"admitted" yaml:"admitted"`
	Rejected    int `json:"rejected" yaml:"rejected"`
	Referential int `json:"referential" yaml:"referential"`
	SelfLoops   int `json:"self_loops" yaml:"self_loops"`
}

// Builder accumulates admitted candidates into a Graph.
type Builder struct {
	rule   Rule
	lookup Lookup
	diags  *diagnostics.Collector
	graph  *Graph
	stats  Stats
}

// NewBuilder creates a builder. A nil lookup skips referential checks; a nil
// collector discards diagnostics.
func NewBuilder(rule Rule, lookup Lookup, diags *diagnostics.Collector) *Builder {
	if diags == nil {
		diags = diagnostics.NewCollector()
	}
	return &Builder{
		rule:   rule,
		lookup: lookup,
		diags:  diags,
		graph:  NewGraph(),
	}
}

// Add feeds one candidate and reports whether it produced an edge.
func (b *Builder) Add(ctx context.Context, c Candidate) bool {
	b.stats.Seen++

	if !b.rule.Admit(c) {
		b.stats.Rejected++
		return false
	}

	if missing := b.missing(c); len(missing) > 0 {
		b.stats.Referential++
		b.diags.Add(ctx, diagnostics.ReferentialError(diagnostics.StageMatchGraph, "", missing...))
		return false
	}

	if !b.graph.AddEdge(c.EntityA, c.EntityB, c.Weight()) {
		b.stats.SelfLoops++
		return false
	}
	b.stats.Admitted++
	return true
}

func (b *Builder) missing(c Candidate) []string {
	return missing(b.lookup, c)
}

func missing(lookup Lookup, c Candidate) []string {
	if lookup == nil {
		return nil
	}
	var out []string
	if !lookup.Has(c.EntityA) {
		out = append(out, c.EntityA)
	}
	if c.EntityB != c.EntityA && !lookup.Has(c.EntityB) {
		out = append(out, c.EntityB)
	}
	return out
}

// Screen drops admitted candidates that name an IRI absent from lookup,
// reporting a referential error for each, and returns the rest with the
// number dropped. Candidates the rule rejects are kept as they are. It must
// run before any filter that ranks candidates against each other.
func Screen(ctx context.Context, candidates []Candidate, rule Rule, lookup Lookup, diags *diagnostics.Collector) ([]Candidate, int) {
	if lookup == nil {
		return candidates, 0
	}
	if diags == nil {
		diags = diagnostics.NewCollector()
	}
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if rule.Admit(c) {
			if m := missing(lookup, c); len(m) > 0 {
				diags.Add(ctx, diagnostics.ReferentialError(diagnostics.StageMatchGraph, "", m...))
				continue
			}
		}
		kept = append(kept, c)
	}
	return kept, len(candidates) - len(kept)
}

// Graph returns the graph built so far.
func (b *Builder) Graph() *Graph {
	return b.graph
}

// Stats returns candidate counters.
func (b *Builder) Stats() Stats {
	return b.stats
}

// Build feeds every candidate to a new Builder and returns the graph.
func Build(ctx context.Context, candidates []Candidate, rule Rule, lookup Lookup, diags *diagnostics.Collector) (*Graph, Stats) {
	b := NewBuilder(rule, lookup, diags)
	for _, c := range candidates {
		b.Add(ctx, c)
	}
	logging.FromContext(ctx).Debug().
		Str("rule", rule.String()).
		Int("seen", b.stats.Seen).
		Int("admitted", b.stats.Admitted).
		Int("nodes", b.graph.NodeCount()).
		Int("edges", b.graph.EdgeCount()).
		Msg("Match graph built")
	return b.graph, b.stats
}
