// Package resolver assigns every equivalence class its canonical kind and a
// run-unique canonical name. Classes are resolved one at a time in partition
// order so the outcome never depends on scheduling.
package resolver

import (
	"context"
	"fmt"

	"github.com/agentstation/ontomerge/pkg/authority"
	"github.com/agentstation/ontomerge/pkg/catalog"
	"github.com/agentstation/ontomerge/pkg/cluster"
	"github.com/agentstation/ontomerge/pkg/constants"
	"github.com/agentstation/ontomerge/pkg/diagnostics"
	"github.com/agentstation/ontomerge/pkg/errors"
	"github.com/agentstation/ontomerge/pkg/logging"
	"github.com/agentstation/ontomerge/pkg/provenance"
	"github.com/agentstation/ontomerge/pkg/types"
)

// Catalog is the read-only entity lookup the resolver needs.
type Catalog interface {
	Get(iri string) (catalog.Entity, bool)
}

// Resolution is the outcome for one equivalence class.
type Resolution struct {
	// Index is the class position in the partition.
	Index int
	Class cluster.Class
	// Name is the canonical name; empty when the class was dropped.
	Name string
	Kind types.Kind
	// Valid holds members found in the catalog, sorted by IRI.
	Valid []string
	// Compatible holds valid members whose kind equals Kind.
	Compatible []string
	// Discarded holds valid members of another kind.
	Discarded []string
	Sources   []types.SourceTag
	// Renamed is set when the natural name was taken.
	Renamed bool
	Dropped bool
}

// Result holds every resolution of a run.
type Result struct {
	Resolutions []Resolution
	Registry    *provenance.Registry
	names       map[string]string
}

// NameOf returns the canonical name of the class containing iri.
func (r *Result) NameOf(iri string) (string, bool) {
	name, ok := r.names[iri]
	return name, ok
}

// Live returns the resolutions of classes that were not dropped.
func (r *Result) Live() []Resolution {
	out := make([]Resolution, 0, len(r.Resolutions))
	for _, res := range r.Resolutions {
		if !res.Dropped {
			out = append(out, res)
		}
	}
	return out
}

// Resolver resolves canonical kinds and names.
type Resolver struct {
	catalog   Catalog
	authority authority.Authority
	diags     *diagnostics.Collector
	reserved  []string
}

// Option configures a Resolver.
type Option func(*Resolver) error

// WithAuthority replaces the kind authority.
func WithAuthority(a authority.Authority) Option {
	return func(r *Resolver) error {
		if a == nil {
			return &errors.ValidationError{Field: "authority", Message: "cannot be nil"}
		}
		r.authority = a
		return nil
	}
}

// WithDiagnostics sets the collector diagnostics are reported to.
func WithDiagnostics(c *diagnostics.Collector) Option {
	return func(r *Resolver) error {
		if c == nil {
			return &errors.ValidationError{Field: "diagnostics", Message: "cannot be nil"}
		}
		r.diags = c
		return nil
	}
}

// WithReserved pre-claims names so no class is given them.
func WithReserved(names ...string) Option {
	return func(r *Resolver) error {
		r.reserved = append(r.reserved, names...)
		return nil
	}
}

// New creates a resolver over a catalog.
func New(cat Catalog, opts ...Option) (*Resolver, error) {
	if cat == nil {
		return nil, &errors.ValidationError{Field: "catalog", Message: "cannot be nil"}
	}
	r := &Resolver{
		catalog:   cat,
		authority: authority.New(),
		diags:     diagnostics.NewCollector(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Resolve walks the partition in order and resolves every class. It only
// fails when ctx is cancelled.
func (r *Resolver) Resolve(ctx context.Context, p *cluster.Partition) (*Result, error) {
	logger := logging.FromContext(ctx)

	registry := provenance.NewRegistry()
	for _, name := range r.reserved {
		registry.Claim(name, "")
	}

	result := &Result{
		Resolutions: make([]Resolution, 0, p.Len()),
		Registry:    registry,
		names:       make(map[string]string),
	}

	for i, class := range p.Classes {
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapCanceled("resolve classes", err)
		}
		res := r.resolve(ctx, i, class, registry)
		if !res.Dropped {
			for _, iri := range res.Valid {
				result.names[iri] = res.Name
			}
		}
		result.Resolutions = append(result.Resolutions, res)
	}

	logger.Debug().
		Int("classes", p.Len()).
		Int("names", registry.Len()).
		Msg("Canonical names resolved")
	return result, nil
}

func (r *Resolver) resolve(ctx context.Context, index int, class cluster.Class, registry *provenance.Registry) Resolution {
	res := Resolution{Index: index, Class: class}
	label := class.Smallest()

	entities := make(map[string]catalog.Entity, class.Size())
	kinds := make([]types.Kind, 0, class.Size())
	tags := make(map[types.SourceTag]struct{})
	for _, iri := range class.Members {
		e, reason := r.member(iri)
		if reason != "" {
			r.diags.Add(ctx, diagnostics.MalformedMember(label, iri, reason))
			continue
		}
		entities[iri] = e
		res.Valid = append(res.Valid, iri)
		kinds = append(kinds, e.Kind)
		tags[e.Source] = struct{}{}
	}

	kind, ok := r.authority.Canonical(kinds)
	if len(res.Valid) == 0 || !ok {
		res.Dropped = true
		r.diags.Add(ctx, diagnostics.EmptyClassDropped(label, class.Members))
		return res
	}
	res.Kind = kind

	for tag := range tags {
		res.Sources = append(res.Sources, tag)
	}
	types.SortTags(res.Sources)

	for _, iri := range res.Valid {
		if entities[iri].Kind == kind {
			res.Compatible = append(res.Compatible, iri)
		} else {
			res.Discarded = append(res.Discarded, iri)
		}
	}

	// Valid is sorted, so the first compatible member is the smallest IRI of that kind.
	wanted := provenance.Normalize(entities[res.Compatible[0]].LocalName)
	owner := res.Valid[0]
	res.Name = wanted
	if !registry.Claim(wanted, owner) {
		res.Name = r.disambiguate(wanted, entities[res.Valid[0]].Source, owner, registry)
		res.Renamed = true
		r.diags.Add(ctx, diagnostics.NameCollisionResolved(label, wanted, res.Name, class.Members, res.Sources))
	}

	if len(res.Discarded) > 0 {
		r.diags.Add(ctx, diagnostics.MixedKindConflict(res.Name, class.Members, kind, res.Discarded, res.Sources))
	}
	return res
}

// member returns the catalog entity for iri, or why it cannot be used.
func (r *Resolver) member(iri string) (catalog.Entity, string) {
	if iri == "" {
		return catalog.Entity{}, "empty IRI"
	}
	e, ok := r.catalog.Get(iri)
	if !ok {
		return catalog.Entity{}, "IRI not in catalog"
	}
	if !e.Kind.IsValid() {
		return catalog.Entity{}, fmt.Sprintf("unknown kind %q", e.Kind)
	}
	return e, ""
}

// disambiguate appends the source tag of the class's smallest member, then a
// numeric suffix, until the name is free.
func (r *Resolver) disambiguate(wanted string, tag types.SourceTag, owner string, registry *provenance.Registry) string {
	base := fmt.Sprintf("%s_%s", wanted, tag)
	if registry.Claim(base, owner) {
		return base
	}
	for n := 2; n < constants.CollisionSuffixLimit; n++ {
		name := fmt.Sprintf("%s_%d", base, n)
		if registry.Claim(name, owner) {
			return name
		}
	}
	// Owner IRIs are unique within a run, so this always frees the name.
	name := fmt.Sprintf("%s_%s", base, owner)
	registry.Claim(name, owner)
	return name
}

// Names returns the canonical names of live classes in partition order.
func (r *Result) Names() []string {
	out := make([]string, 0, len(r.Resolutions))
	for _, res := range r.Resolutions {
		if !res.Dropped {
			out = append(out, res.Name)
		}
	}
	return out
}

// Unique reports whether names are distinct after NFC normalization.
func Unique(names []string) bool {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		key := provenance.Normalize(n)
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
	}
	return true
}
