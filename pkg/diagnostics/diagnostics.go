// Package diagnostics collects the structured warnings and notes a merge run
// produces. Each diagnostic carries enough context (class members, source
// tags, offending IRIs) to act on without re-running the pipeline.
package diagnostics

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/agentstation/ontomerge/pkg/errors"
	"github.com/agentstation/ontomerge/pkg/types"
)

// Code identifies what kind of diagnostic was raised.
type Code string

// Diagnostic codes.
const (
	// CodeReferentialError marks a candidate or structural edge pointing at an IRI absent from the catalog.
	CodeReferentialError Code = "ReferentialError"
	// CodeMixedKindConflict marks a class whose members are not all of one kind.
	CodeMixedKindConflict Code = "MixedKindConflict"
	// CodeNameCollisionResolved marks a canonical name that was suffixed to stay unique.
	CodeNameCollisionResolved Code = "NameCollisionResolved"
	// CodeSelfReferenceDropped marks a hierarchy or signature edge that resolved to the entity itself.
	CodeSelfReferenceDropped Code = "SelfReferenceDropped"
	// CodeEmptyClassDropped marks a class with no valid members left.
	CodeEmptyClassDropped Code = "EmptyClassDropped"
	// CodeMalformedRecord marks a skipped candidate row.
	CodeMalformedRecord Code = "MalformedRecord"
	// CodeMalformedMember marks a skipped class member.
	CodeMalformedMember Code = "MalformedMember"
)

// Codes returns every code in reporting order.
func Codes() []Code {
	return []Code{
		CodeMalformedRecord,
		CodeReferentialError,
		CodeMixedKindConflict,
		CodeNameCollisionResolved,
		CodeMalformedMember,
		CodeEmptyClassDropped,
		CodeSelfReferenceDropped,
	}
}

// Severity returns how serious a code is.
func (c Code) Severity() Severity {
	switch c {
	case CodeNameCollisionResolved, CodeSelfReferenceDropped:
		return SeverityNote
	case CodeReferentialError, CodeMixedKindConflict, CodeEmptyClassDropped,
		CodeMalformedRecord, CodeMalformedMember:
		return SeverityWarning
	default:
		return SeverityWarning
	}
}

// Severity grades a diagnostic.
type Severity string

// Severities.
const (
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// Stage names the pipeline step that raised a diagnostic.
type Stage string

// Pipeline stages, in execution order.
const (
	StageCandidates Stage = "candidates"
	StageMatchGraph Stage = "matchgraph"
	StageResolve    Stage = "resolve"
	StageHierarchy  Stage = "hierarchy"
	StageSignature  Stage = "signature"
	StageAnnotation Stage = "annotation"
	StageAlignment  Stage = "alignment"
)

var stageRank = map[Stage]int{
	StageCandidates: 0,
	StageMatchGraph: 1,
	StageResolve:    2,
	StageHierarchy:  3,
	StageSignature:  4,
	StageAnnotation: 5,
	StageAlignment:  6,
}

// Diagnostic is one structured warning or note.
type Diagnostic struct {
	Code     Code              `json:"code" yaml:"code"`
	Severity Severity          `json:"severity" yaml:"severity"`
	Stage    Stage             `json:"stage" yaml:"stage"`
	Class    string            `json:"class,omitempty" yaml:"class,omitempty"`
	Members  []string          `json:"members,omitempty" yaml:"members,omitempty"`
	Sources  []types.SourceTag `json:"sources,omitempty" yaml:"sources,omitempty"`
	IRI      string            `json:"iri,omitempty" yaml:"iri,omitempty"`
	Related  []string          `json:"related,omitempty" yaml:"related,omitempty"`
	Line     int               `json:"line,omitempty" yaml:"line,omitempty"`
	Message  string            `json:"message" yaml:"message"`
}

// String renders the diagnostic on one line.
func (d Diagnostic) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s] %s", d.Code, d.Stage, d.Message)
	if d.Class != "" {
		fmt.Fprintf(&sb, " (class %s)", d.Class)
	}
	return sb.String()
}

// Err returns the typed error a diagnostic stands for, or nil for diagnostics
// that describe a resolved conflict rather than bad input.
func (d Diagnostic) Err() error {
	switch d.Code {
	case CodeReferentialError:
		return errors.NewReferentialError(string(d.Stage), d.IRI, d.Related...)
	case CodeMalformedRecord, CodeMalformedMember:
		return &errors.ValidationError{Field: string(d.Stage), Value: d.IRI, Message: d.Message}
	case CodeMixedKindConflict, CodeNameCollisionResolved, CodeSelfReferenceDropped, CodeEmptyClassDropped:
		return nil
	default:
		return nil
	}
}

// Compare orders diagnostics deterministically: by stage, code, class,
// subject IRI, related IRIs, line, then message.
func Compare(a, b Diagnostic) int {
	return cmp.Or(
		cmp.Compare(stageRank[a.Stage], stageRank[b.Stage]),
		cmp.Compare(a.Code, b.Code),
		cmp.Compare(a.Class, b.Class),
		cmp.Compare(a.IRI, b.IRI),
		slices.Compare(a.Related, b.Related),
		cmp.Compare(a.Line, b.Line),
		cmp.Compare(a.Message, b.Message),
	)
}

// Sort orders diagnostics in place using Compare.
func Sort(ds []Diagnostic) {
	slices.SortStableFunc(ds, Compare)
}
