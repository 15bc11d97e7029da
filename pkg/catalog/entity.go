package catalog

import (
	"slices"

	"github.com/agentstation/ontomerge/pkg/types"
)

// Entity is one class or relation as declared in a source schema.
// Entities are immutable once added to a Catalog.
type Entity struct {
	IRI        string          `json:"iri" yaml:"iri"`
	Source     types.SourceTag `json:"source" yaml:"source"`
	LocalName  string          `json:"local_name" yaml:"local_name"`
	Kind       types.Kind      `json:"kind" yaml:"kind"`
	SuperIRIs  []string        `json:"super,omitempty" yaml:"super,omitempty"`
	DomainIRIs []string        `json:"domain,omitempty" yaml:"domain,omitempty"`
	RangeIRIs  []string        `json:"range,omitempty" yaml:"range,omitempty"`
	Comments   []string        `json:"comments,omitempty" yaml:"comments,omitempty"`
}

// IsRelation reports whether the entity carries a domain/range signature.
func (e Entity) IsRelation() bool {
	return e.Kind.IsRelation()
}

// Clone returns a deep copy of the entity.
func (e Entity) Clone() Entity {
	e.SuperIRIs = slices.Clone(e.SuperIRIs)
	e.DomainIRIs = slices.Clone(e.DomainIRIs)
	e.RangeIRIs = slices.Clone(e.RangeIRIs)
	e.Comments = slices.Clone(e.Comments)
	return e
}

// References returns every IRI the entity points at through its structure.
func (e Entity) References() []string {
	refs := make([]string, 0, len(e.SuperIRIs)+len(e.DomainIRIs)+len(e.RangeIRIs))
	refs = append(refs, e.SuperIRIs...)
	refs = append(refs, e.DomainIRIs...)
	refs = append(refs, e.RangeIRIs...)
	return refs
}
