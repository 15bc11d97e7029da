package merger

import (
	"context"
	"slices"

	"github.com/agentstation/ontomerge/pkg/authority"
	"github.com/agentstation/ontomerge/pkg/catalog"
	"github.com/agentstation/ontomerge/pkg/diagnostics"
	"github.com/agentstation/ontomerge/pkg/provenance"
	"github.com/agentstation/ontomerge/pkg/resolver"
	"github.com/agentstation/ontomerge/pkg/types"
	"github.com/agentstation/ontomerge/pkg/vocabulary"
)

// link describes one structural relation folded by a sweep.
type link struct {
	field    string
	relation provenance.Relation
	refs     func(catalog.Entity) []string
	target   func(*Entity) *[]string
}

var (
	superLink = link{
		field:    authority.FieldSuper,
		relation: provenance.RelationSubClassOf,
		refs:     func(m catalog.Entity) []string { return m.SuperIRIs },
		target:   func(e *Entity) *[]string { return &e.SuperNames },
	}
	domainLink = link{
		field:    authority.FieldDomain,
		relation: provenance.RelationDomain,
		refs:     func(m catalog.Entity) []string { return m.DomainIRIs },
		target:   func(e *Entity) *[]string { return &e.DomainNames },
	}
	rangeLink = link{
		field:    authority.FieldRange,
		relation: provenance.RelationRange,
		refs:     func(m catalog.Entity) []string { return m.RangeIRIs },
		target:   func(e *Entity) *[]string { return &e.RangeNames },
	}
)

func (e *Engine) hierarchy(ctx context.Context, res *resolver.Result, r resolver.Resolution, ent *Entity) {
	e.fold(ctx, PassHierarchy, res, r, ent, superLink)
}

func (e *Engine) signature(ctx context.Context, res *resolver.Result, r resolver.Resolution, ent *Entity) {
	e.fold(ctx, PassSignature, res, r, ent, domainLink, rangeLink)
}

// fold unions the references of every contributing member into the entity,
// mapped to canonical names. Dangling references are reported once per
// member, self references once per relation.
func (e *Engine) fold(ctx context.Context, pass Pass, res *resolver.Result, r resolver.Resolution, ent *Entity, links ...link) {
	self := make(map[provenance.Relation][]string)

	for _, iri := range r.Valid {
		m, ok := e.catalog.Get(iri)
		if !ok {
			continue
		}
		var missing []string
		for _, l := range links {
			if !e.authority.Contributes(l.field, ent.Kind, m.Kind) {
				continue
			}
			for _, ref := range l.refs(m) {
				if l.relation == provenance.RelationSubClassOf && vocabulary.IsThing(ref) {
					continue
				}
				if _, found := slices.BinarySearch(r.Valid, ref); found {
					self[l.relation] = append(self[l.relation], iri)
					continue
				}
				name, ok := e.nameOf(res, ref)
				if !ok {
					missing = append(missing, ref)
					continue
				}
				insert(l.target(ent), name)
				ent.Provenance.Add(provenance.Fact{Relation: l.relation, Name: name, Source: m.Source})
			}
		}
		if len(missing) > 0 {
			slices.Sort(missing)
			e.diags.Add(ctx, diagnostics.ReferentialError(pass.stage(), iri, slices.Compact(missing)...))
		}
	}

	for _, l := range links {
		if via := slices.Compact(self[l.relation]); len(via) > 0 {
			e.diags.Add(ctx, diagnostics.SelfReferenceDropped(pass.stage(), ent.CanonicalName, string(l.relation), via))
		}
	}
}

// nameOf maps a referenced IRI to the name it has in the merged schema:
// its class's canonical name when clustered, otherwise its own local name.
// Built-in datatype IRIs pass through by local name.
func (e *Engine) nameOf(res *resolver.Result, iri string) (string, bool) {
	if name, ok := res.NameOf(iri); ok {
		return name, true
	}
	if m, ok := e.catalog.Get(iri); ok {
		return provenance.Normalize(m.LocalName), true
	}
	if vocabulary.IsDatatype(iri) {
		return vocabulary.LocalName(iri), true
	}
	return "", false
}

// annotation keeps, per source tag, the comments of the first member (by
// IRI) from that tag. A first member without comments leaves its tag empty;
// later members of the tag never fill it.
func (e *Engine) annotation(r resolver.Resolution, ent *Entity) {
	claimed := make(map[types.SourceTag]bool, len(r.Sources))
	for _, iri := range r.Valid {
		m, ok := e.catalog.Get(iri)
		if !ok || !e.authority.Contributes(authority.FieldComments, ent.Kind, m.Kind) {
			continue
		}
		if claimed[m.Source] {
			continue
		}
		claimed[m.Source] = true
		if _, done := ent.CommentsBySource[m.Source]; done || len(m.Comments) == 0 {
			continue
		}
		comments := make([]string, 0, len(m.Comments))
		for _, c := range m.Comments {
			if !slices.Contains(comments, c) {
				comments = append(comments, c)
			}
		}
		ent.CommentsBySource[m.Source] = comments
	}
}

// alignment buckets every member IRI under its source tag.
func (e *Engine) alignment(r resolver.Resolution, ent *Entity) {
	for _, iri := range r.Valid {
		m, ok := e.catalog.Get(iri)
		if !ok || !e.authority.Contributes(authority.FieldAlignment, ent.Kind, m.Kind) {
			continue
		}
		partners := ent.AlignmentPartnersBySource[m.Source]
		insert(&partners, iri)
		ent.AlignmentPartnersBySource[m.Source] = partners
	}
}
