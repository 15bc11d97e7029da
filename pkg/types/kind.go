//nolint:revive // Package types provides common type definitions
package types

import (
	"fmt"
	"strings"
)

// Kind identifies what an entity is inside a source schema.
// It is a closed set; every switch over Kind must handle all values.
type Kind string

const (
	// KindClass is a class (owl:Class).
	KindClass Kind = "class"

	// KindObjectRelation is an object property linking two classes.
	KindObjectRelation Kind = "object_relation"

	// KindDataRelation is a datatype property linking a class to a literal type.
	KindDataRelation Kind = "data_relation"

	// KindAnnotationRelation is an annotation property.
	KindAnnotationRelation Kind = "annotation_relation"
)

// Kinds returns all kinds in canonical priority order (highest first).
func Kinds() []Kind {
	return []Kind{
		KindObjectRelation,
		KindDataRelation,
		KindAnnotationRelation,
		KindClass,
	}
}

// String returns the string representation of a kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid returns true if the kind is one of the defined constants.
func (k Kind) IsValid() bool {
	switch k {
	case KindClass, KindObjectRelation, KindDataRelation, KindAnnotationRelation:
		return true
	default:
		return false
	}
}

// IsRelation reports whether the kind carries a domain/range signature.
func (k Kind) IsRelation() bool {
	switch k {
	case KindObjectRelation, KindDataRelation, KindAnnotationRelation:
		return true
	case KindClass:
		return false
	default:
		return false
	}
}

// ParseKind parses a kind from its string form. It accepts the canonical
// snake_case names as well as the OWL vocabulary names used by most tools
// (Class, ObjectProperty, DatatypeProperty, AnnotationProperty).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "class", "owl:class":
		return KindClass, nil
	case "object_relation", "objectrelation", "objectproperty", "owl:objectproperty":
		return KindObjectRelation, nil
	case "data_relation", "datarelation", "datatypeproperty", "dataproperty", "owl:datatypeproperty":
		return KindDataRelation, nil
	case "annotation_relation", "annotationrelation", "annotationproperty", "owl:annotationproperty":
		return KindAnnotationRelation, nil
	default:
		return "", fmt.Errorf("unknown entity kind %q", s)
	}
}
