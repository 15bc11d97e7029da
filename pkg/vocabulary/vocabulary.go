// Package vocabulary holds the W3C namespace IRIs the merge engine needs to
// recognise, plus helpers for splitting IRIs into namespace and local name
// and for naming the per-source annotation properties of the merged schema.
package vocabulary

import (
	"strings"

	"github.com/agentstation/ontomerge/pkg/types"
)

// Standard namespaces.
const (
	OWL  = "http://www.w3.org/2002/07/owl#"
	RDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS = "http://www.w3.org/2000/01/rdf-schema#"
	XSD  = "http://www.w3.org/2001/XMLSchema#"
)

// OWL and RDFS terms used by the merged schema.
const (
	OwlThing              = OWL + "Thing"
	OwlClass              = OWL + "Class"
	OwlObjectProperty     = OWL + "ObjectProperty"
	OwlDatatypeProperty   = OWL + "DatatypeProperty"
	OwlAnnotationProperty = OWL + "AnnotationProperty"
	OwlEquivalentClass    = OWL + "equivalentClass"
	OwlEquivalentProperty = OWL + "equivalentProperty"

	RdfsSubClassOf = RDFS + "subClassOf"
	RdfsDomain     = RDFS + "domain"
	RdfsRange      = RDFS + "range"
	RdfsComment    = RDFS + "comment"
	RdfsLiteral    = RDFS + "Literal"
)

// Annotation property names emitted on merged entities.
const (
	// SourceOrigin carries provenance facts ("subClassOf:Agent_from:OSN").
	SourceOrigin = "sourceOrigin"

	commentSuffix = "comment"
	alignPrefix   = "alignWith"
)

// datatypeNamespaces are namespaces whose terms are datatypes or built-ins
// rather than source entities.
var datatypeNamespaces = []string{XSD, RDF, RDFS, OWL}

// IsDatatype reports whether iri belongs to a built-in datatype namespace
// (XSD, RDF, RDFS, OWL). Such IRIs are never expected in an entity catalog.
func IsDatatype(iri string) bool {
	for _, ns := range datatypeNamespaces {
		if strings.HasPrefix(iri, ns) {
			return true
		}
	}
	return false
}

// IsThing reports whether iri is owl:Thing, the implicit root of every class.
func IsThing(iri string) bool {
	return iri == OwlThing
}

// IsHTTP reports whether iri is an http(s) IRI.
func IsHTTP(iri string) bool {
	return strings.HasPrefix(iri, "http://") || strings.HasPrefix(iri, "https://")
}

// Split divides an IRI into namespace and local name at the last '#', or
// failing that the last '/'. An IRI with neither is all local name.
func Split(iri string) (namespace, local string) {
	if i := strings.LastIndexByte(iri, '#'); i >= 0 {
		return iri[:i+1], iri[i+1:]
	}
	trimmed := strings.TrimRight(iri, "/")
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i+1], trimmed[i+1:]
	}
	return "", iri
}

// LocalName returns the local part of an IRI.
func LocalName(iri string) string {
	_, local := Split(iri)
	return local
}

// Namespace returns the namespace part of an IRI.
func Namespace(iri string) string {
	ns, _ := Split(iri)
	return ns
}

// CommentProperty names the annotation holding a source's comments ("OSNcomment").
func CommentProperty(tag types.SourceTag) string {
	return string(tag) + commentSuffix
}

// AlignProperty names the annotation holding a source's partner IRIs ("alignWithOSN").
func AlignProperty(tag types.SourceTag) string {
	return alignPrefix + string(tag)
}

// ParseCommentProperty extracts the source tag from a comment property name.
func ParseCommentProperty(name string) (types.SourceTag, bool) {
	tag, ok := strings.CutSuffix(name, commentSuffix)
	if !ok || tag == "" {
		return "", false
	}
	return types.SourceTag(tag), true
}

// ParseAlignProperty extracts the source tag from an alignment property name.
func ParseAlignProperty(name string) (types.SourceTag, bool) {
	tag, ok := strings.CutPrefix(name, alignPrefix)
	if !ok || tag == "" {
		return "", false
	}
	return types.SourceTag(tag), true
}
