package catalog

import (
	"io"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/ontomerge/pkg/errors"
	"github.com/agentstation/ontomerge/pkg/types"
)

// Document is the on-disk form of one source schema. YAML and JSON are both
// accepted.
type Document struct {
	Source   types.SourceTag  `json:"source" yaml:"source"`
	BaseIRI  string           `json:"base_iri,omitempty" yaml:"base_iri,omitempty"`
	Entities []DocumentEntity `json:"entities" yaml:"entities"`
}

// DocumentEntity is one entity entry of a Document. Kind is kept as text so
// that OWL spellings (ObjectProperty, owl:Class) are accepted.
type DocumentEntity struct {
	IRI       string   `json:"iri" yaml:"iri"`
	Kind      string   `json:"kind" yaml:"kind"`
	LocalName string   `json:"local_name,omitempty" yaml:"local_name,omitempty"`
	Super     []string `json:"super,omitempty" yaml:"super,omitempty"`
	Domain    []string `json:"domain,omitempty" yaml:"domain,omitempty"`
	Range     []string `json:"range,omitempty" yaml:"range,omitempty"`
	Comments  []string `json:"comments,omitempty" yaml:"comments,omitempty"`
}

// Decode reads a Document from r. name is used in error messages.
func Decode(r io.Reader, name string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO("read", name, err)
	}
	return Parse(data, name)
}

// Parse decodes a Document from YAML or JSON bytes.
func Parse(data []byte, name string) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	return &doc, nil
}

// Encode writes the document as YAML.
func (d *Document) Encode(w io.Writer) error {
	data, err := yaml.MarshalWithOptions(d, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return errors.WrapParse("yaml", string(d.Source), err)
	}
	_, err = w.Write(data)
	return err
}

// entity converts a document entry into an Entity of the document's source.
func (d *Document) entity(de DocumentEntity) (Entity, error) {
	kind, err := types.ParseKind(de.Kind)
	if err != nil {
		return Entity{}, &errors.ValidationError{Field: "kind", Value: de.Kind, Message: err.Error()}
	}
	return Entity{
		IRI:        de.IRI,
		Source:     d.Source,
		LocalName:  de.LocalName,
		Kind:       kind,
		SuperIRIs:  de.Super,
		DomainIRIs: de.Domain,
		RangeIRIs:  de.Range,
		Comments:   de.Comments,
	}, nil
}
