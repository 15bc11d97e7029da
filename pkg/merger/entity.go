package merger

import (
	"maps"
	"slices"

	"github.com/agentstation/ontomerge/pkg/provenance"
	"github.com/agentstation/ontomerge/pkg/types"
)

// Entity is the canonical fused representation of one equivalence class.
// Name, domain, range and partner collections are sorted sets.
type Entity struct {
	CanonicalName             string                       `json:"canonical_name" yaml:"canonical_name"`
	Kind                      types.Kind                   `json:"kind" yaml:"kind"`
	SuperNames                []string                     `json:"super,omitempty" yaml:"super,omitempty"`
	DomainNames               []string                     `json:"domain,omitempty" yaml:"domain,omitempty"`
	RangeNames                []string                     `json:"range,omitempty" yaml:"range,omitempty"`
	CommentsBySource          map[types.SourceTag][]string `json:"comments,omitempty" yaml:"comments,omitempty"`
	AlignmentPartnersBySource map[types.SourceTag][]string `json:"alignment,omitempty" yaml:"alignment,omitempty"`
	Provenance                provenance.Facts             `json:"provenance,omitempty" yaml:"provenance,omitempty"`
	Members                   []string                     `json:"members" yaml:"members"`
	Sources                   []types.SourceTag            `json:"sources" yaml:"sources"`
}

func newEntity(name string, kind types.Kind, members []string, sources []types.SourceTag) *Entity {
	return &Entity{
		CanonicalName:             name,
		Kind:                      kind,
		CommentsBySource:          make(map[types.SourceTag][]string),
		AlignmentPartnersBySource: make(map[types.SourceTag][]string),
		Members:                   slices.Clone(members),
		Sources:                   slices.Clone(sources),
	}
}

// PartnersOf returns, per source tag, the class members aligned with iri,
// excluding iri itself.
func (e *Entity) PartnersOf(iri string) map[types.SourceTag][]string {
	if _, found := slices.BinarySearch(e.Members, iri); !found {
		return nil
	}
	out := make(map[types.SourceTag][]string, len(e.AlignmentPartnersBySource))
	for tag, partners := range e.AlignmentPartnersBySource {
		others := slices.DeleteFunc(slices.Clone(partners), func(p string) bool { return p == iri })
		if len(others) > 0 {
			out[tag] = others
		}
	}
	return out
}

// Clone returns a deep copy of the entity.
func (e *Entity) Clone() *Entity {
	out := *e
	out.SuperNames = slices.Clone(e.SuperNames)
	out.DomainNames = slices.Clone(e.DomainNames)
	out.RangeNames = slices.Clone(e.RangeNames)
	out.CommentsBySource = cloneBuckets(e.CommentsBySource)
	out.AlignmentPartnersBySource = cloneBuckets(e.AlignmentPartnersBySource)
	out.Provenance = slices.Clone(e.Provenance)
	out.Members = slices.Clone(e.Members)
	out.Sources = slices.Clone(e.Sources)
	return &out
}

func cloneBuckets(in map[types.SourceTag][]string) map[types.SourceTag][]string {
	out := maps.Clone(in)
	for k, v := range out {
		out[k] = slices.Clone(v)
	}
	return out
}

// insert adds v to the sorted set s and reports whether it was new.
func insert(s *[]string, v string) bool {
	i, found := slices.BinarySearch(*s, v)
	if found {
		return false
	}
	*s = slices.Insert(*s, i, v)
	return true
}
