// Package schema defines the merged schema document a run produces: one
// entry per merged entity, one per unmatched source entity carried through,
// and the diagnostics of the run.
//
// Per-source annotations use the property names of the merged ontology:
// comments from source OSN live under "OSNcomment", alignment partners from
// MP under "alignWithMP", and provenance facts under source_origin as
// "subClassOf:Agent_from:OSN".
package schema

import (
	"cmp"
	"maps"
	"slices"

	"github.com/agentstation/ontomerge/pkg/diagnostics"
	"github.com/agentstation/ontomerge/pkg/merger"
	"github.com/agentstation/ontomerge/pkg/types"
	"github.com/agentstation/ontomerge/pkg/vocabulary"
)

// Version is the document format version.
const Version = "1"

// Origin tells merged entities from source entities carried through.
type Origin string

// Entity origins.
const (
	OriginMerged Origin = "merged"
	OriginSource Origin = "source"
)

// Entity is one entry of the merged schema.
type Entity struct {
	Name         string              `json:"name" yaml:"name"`
	Kind         types.Kind          `json:"kind" yaml:"kind"`
	Origin       Origin              `json:"origin" yaml:"origin"`
	IRI          string              `json:"iri,omitempty" yaml:"iri,omitempty"`
	Super        []string            `json:"super,omitempty" yaml:"super,omitempty"`
	Domain       []string            `json:"domain,omitempty" yaml:"domain,omitempty"`
	Range        []string            `json:"range,omitempty" yaml:"range,omitempty"`
	Annotations  map[string][]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	SourceOrigin []string            `json:"source_origin,omitempty" yaml:"source_origin,omitempty"`
	Members      []string            `json:"members,omitempty" yaml:"members,omitempty"`
	Sources      []types.SourceTag   `json:"sources" yaml:"sources"`
}

// Key identifies an entity across documents: merged entities by name,
// source entities by IRI.
func (e Entity) Key() string {
	if e.Origin == OriginSource {
		return string(OriginSource) + ":" + e.IRI
	}
	return string(OriginMerged) + ":" + e.Name
}

// Comments returns the comment annotations keyed by source tag.
func (e Entity) Comments() map[types.SourceTag][]string {
	out := make(map[types.SourceTag][]string)
	for prop, values := range e.Annotations {
		if tag, ok := vocabulary.ParseCommentProperty(prop); ok {
			out[tag] = values
		}
	}
	return out
}

// Alignment returns the alignment annotations keyed by source tag.
func (e Entity) Alignment() map[types.SourceTag][]string {
	out := make(map[types.SourceTag][]string)
	for prop, values := range e.Annotations {
		if tag, ok := vocabulary.ParseAlignProperty(prop); ok {
			out[tag] = values
		}
	}
	return out
}

// Document is a merged schema.
type Document struct {
	Version     string                   `json:"version" yaml:"version"`
	RunID       string                   `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Sources     []types.SourceTag        `json:"sources" yaml:"sources"`
	Entities    []Entity                 `json:"entities" yaml:"entities"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// New builds a document. Merged entities come first, then source entities;
// each group is ordered by name, then IRI.
func New(merged, passthrough []*merger.Entity, diags []diagnostics.Diagnostic) *Document {
	doc := &Document{
		Version:     Version,
		Entities:    make([]Entity, 0, len(merged)+len(passthrough)),
		Diagnostics: slices.Clone(diags),
	}
	tags := make(map[types.SourceTag]struct{})
	for _, m := range merged {
		doc.Entities = append(doc.Entities, convert(m, OriginMerged))
	}
	for _, m := range passthrough {
		doc.Entities = append(doc.Entities, convert(m, OriginSource))
	}
	for _, e := range doc.Entities {
		for _, tag := range e.Sources {
			tags[tag] = struct{}{}
		}
	}
	doc.Sources = types.SortTags(slices.Collect(maps.Keys(tags)))
	doc.Sort()
	return doc
}

func convert(m *merger.Entity, origin Origin) Entity {
	e := Entity{
		Name:    m.CanonicalName,
		Kind:    m.Kind,
		Origin:  origin,
		Super:   slices.Clone(m.SuperNames),
		Domain:  slices.Clone(m.DomainNames),
		Range:   slices.Clone(m.RangeNames),
		Sources: slices.Clone(m.Sources),
	}
	if origin == OriginSource && len(m.Members) > 0 {
		e.IRI = m.Members[0]
	} else {
		e.Members = slices.Clone(m.Members)
	}

	if len(m.CommentsBySource)+len(m.AlignmentPartnersBySource) > 0 {
		e.Annotations = make(map[string][]string)
		for tag, comments := range m.CommentsBySource {
			e.Annotations[vocabulary.CommentProperty(tag)] = slices.Clone(comments)
		}
		for tag, partners := range m.AlignmentPartnersBySource {
			e.Annotations[vocabulary.AlignProperty(tag)] = slices.Clone(partners)
		}
	}
	for _, f := range m.Provenance {
		e.SourceOrigin = append(e.SourceOrigin, f.String())
	}
	return e
}

// Sort puts entities in document order and diagnostics in diagnostic order.
func (d *Document) Sort() {
	slices.SortStableFunc(d.Entities, func(a, b Entity) int {
		return cmp.Or(
			cmp.Compare(originRank(a.Origin), originRank(b.Origin)),
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.IRI, b.IRI),
		)
	})
	diagnostics.Sort(d.Diagnostics)
}

func originRank(o Origin) int {
	if o == OriginMerged {
		return 0
	}
	return 1
}

// Find returns the entity with the given key.
func (d *Document) Find(key string) (Entity, bool) {
	for _, e := range d.Entities {
		if e.Key() == key {
			return e, true
		}
	}
	return Entity{}, false
}

// Merged returns the merged entities.
func (d *Document) Merged() []Entity {
	return d.byOrigin(OriginMerged)
}

// PassedThrough returns the source entities carried through unchanged.
func (d *Document) PassedThrough() []Entity {
	return d.byOrigin(OriginSource)
}

func (d *Document) byOrigin(o Origin) []Entity {
	var out []Entity
	for _, e := range d.Entities {
		if e.Origin == o {
			out = append(out, e)
		}
	}
	return out
}

// Names returns the sorted names of merged entities.
func (d *Document) Names() []string {
	var out []string
	for _, e := range d.Merged() {
		out = append(out, e.Name)
	}
	slices.Sort(out)
	return out
}
