// Package catalog holds every source entity of a merge run, keyed by IRI.
//
// A Catalog is filled while loading and must not be mutated afterwards; once
// loaded it is safe for concurrent reads by the merge workers.
package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/agentstation/ontomerge/pkg/errors"
	"github.com/agentstation/ontomerge/pkg/types"
	"github.com/agentstation/ontomerge/pkg/vocabulary"
)

// Catalog is the set of source entities participating in a merge.
type Catalog struct {
	entities map[string]*Entity
	bases    []base
	sources  map[types.SourceTag]int
}

type base struct {
	iri string
	tag types.SourceTag
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		entities: make(map[string]*Entity),
		sources:  make(map[types.SourceTag]int),
	}
}

// AddSource registers a source tag and, optionally, its base IRI.
func (c *Catalog) AddSource(tag types.SourceTag, baseIRI string) error {
	if !tag.IsValid() {
		return &errors.ValidationError{Field: "source", Value: tag, Message: "source tag is required and may not contain whitespace"}
	}
	if _, ok := c.sources[tag]; !ok {
		c.sources[tag] = 0
	}
	if baseIRI == "" {
		return nil
	}
	for _, b := range c.bases {
		if b.iri == baseIRI && b.tag != tag {
			return &errors.ValidationError{
				Field:   "base_iri",
				Value:   baseIRI,
				Message: fmt.Sprintf("already declared by source %s", b.tag),
			}
		}
	}
	c.bases = append(c.bases, base{iri: baseIRI, tag: tag})
	// Longest base first so SourceOf picks the most specific namespace.
	slices.SortStableFunc(c.bases, func(a, b base) int {
		return cmp.Or(cmp.Compare(len(b.iri), len(a.iri)), strings.Compare(a.iri, b.iri))
	})
	return nil
}

// Add validates and stores an entity. The local name is derived from the IRI
// when empty.
func (c *Catalog) Add(e Entity) error {
	if e.IRI == "" {
		return &errors.ValidationError{Field: "iri", Message: "entity IRI is required"}
	}
	if !e.Source.IsValid() {
		return &errors.ValidationError{Field: "source", Value: e.Source, Message: fmt.Sprintf("entity %s has no valid source tag", e.IRI)}
	}
	if !e.Kind.IsValid() {
		return &errors.ValidationError{Field: "kind", Value: e.Kind, Message: fmt.Sprintf("entity %s has unknown kind %q", e.IRI, e.Kind)}
	}
	if existing, ok := c.entities[e.IRI]; ok {
		return &errors.ValidationError{
			Field:   "iri",
			Value:   e.IRI,
			Message: fmt.Sprintf("duplicate IRI %s (sources %s and %s)", e.IRI, existing.Source, e.Source),
		}
	}
	if e.LocalName == "" {
		e.LocalName = vocabulary.LocalName(e.IRI)
	}
	if e.LocalName == "" {
		return &errors.ValidationError{Field: "local_name", Value: e.IRI, Message: "cannot derive a local name from IRI"}
	}

	stored := e.Clone()
	c.entities[e.IRI] = &stored
	c.sources[e.Source]++
	return nil
}

// Get returns the entity with the given IRI.
func (c *Catalog) Get(iri string) (Entity, bool) {
	e, ok := c.entities[iri]
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

// Has reports whether the catalog contains iri.
func (c *Catalog) Has(iri string) bool {
	_, ok := c.entities[iri]
	return ok
}

// Len returns the number of entities.
func (c *Catalog) Len() int {
	return len(c.entities)
}

// IRIs returns every entity IRI in lexicographic order.
func (c *Catalog) IRIs() []string {
	out := make([]string, 0, len(c.entities))
	for iri := range c.entities {
		out = append(out, iri)
	}
	slices.Sort(out)
	return out
}

// Entities returns every entity ordered by IRI.
func (c *Catalog) Entities() []Entity {
	out := make([]Entity, 0, len(c.entities))
	for _, iri := range c.IRIs() {
		out = append(out, *c.entities[iri])
	}
	return out
}

// BySource returns the entities of one source ordered by IRI.
func (c *Catalog) BySource(tag types.SourceTag) []Entity {
	var out []Entity
	for _, iri := range c.IRIs() {
		if e := c.entities[iri]; e.Source == tag {
			out = append(out, *e)
		}
	}
	return out
}

// Sources returns the registered source tags in sorted order.
func (c *Catalog) Sources() []types.SourceTag {
	out := make([]types.SourceTag, 0, len(c.sources))
	for tag := range c.sources {
		out = append(out, tag)
	}
	return types.SortTags(out)
}

// Count returns the number of entities declared by a source.
func (c *Catalog) Count(tag types.SourceTag) int {
	return c.sources[tag]
}

// SourceOf returns the source tag of iri: the owning entity's tag when the
// IRI is in the catalog, otherwise the source with the longest matching base
// IRI.
func (c *Catalog) SourceOf(iri string) (types.SourceTag, bool) {
	if e, ok := c.entities[iri]; ok {
		return e.Source, true
	}
	for _, b := range c.bases {
		if strings.HasPrefix(iri, b.iri) {
			return b.tag, true
		}
	}
	return "", false
}

// LocalName returns the catalog local name of iri, falling back to the name
// derived from the IRI itself.
func (c *Catalog) LocalName(iri string) string {
	if e, ok := c.entities[iri]; ok {
		return e.LocalName
	}
	return vocabulary.LocalName(iri)
}
