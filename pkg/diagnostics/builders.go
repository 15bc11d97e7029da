package diagnostics

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agentstation/ontomerge/pkg/types"
)

// ReferentialError reports that from (empty for candidates) points at IRIs
// missing from the catalog.
func ReferentialError(stage Stage, from string, missing ...string) Diagnostic {
	missing = slices.Clone(missing)
	slices.Sort(missing)
	msg := fmt.Sprintf("reference to unknown IRI %s", strings.Join(missing, ", "))
	if from != "" {
		msg = fmt.Sprintf("%s from %s", msg, from)
	}
	return Diagnostic{
		Code:     CodeReferentialError,
		Severity: CodeReferentialError.Severity(),
		Stage:    stage,
		IRI:      from,
		Related:  missing,
		Message:  msg,
	}
}

// MixedKindConflict reports a class that mixes kinds; discarded lists the
// members whose kind differs from the canonical one.
func MixedKindConflict(class string, members []string, canonical types.Kind, discarded []string, sources []types.SourceTag) Diagnostic {
	return Diagnostic{
		Code:     CodeMixedKindConflict,
		Severity: CodeMixedKindConflict.Severity(),
		Stage:    StageResolve,
		Class:    class,
		Members:  slices.Clone(members),
		Sources:  slices.Clone(sources),
		Related:  slices.Clone(discarded),
		Message: fmt.Sprintf("class mixes kinds; kept %s, discarded structure of %s",
			canonical, strings.Join(discarded, ", ")),
	}
}

// NameCollisionResolved reports that wanted was taken and the class was
// renamed to got.
func NameCollisionResolved(class, wanted, got string, members []string, sources []types.SourceTag) Diagnostic {
	return Diagnostic{
		Code:     CodeNameCollisionResolved,
		Severity: CodeNameCollisionResolved.Severity(),
		Stage:    StageResolve,
		Class:    got,
		Members:  slices.Clone(members),
		Sources:  slices.Clone(sources),
		Related:  []string{wanted},
		Message:  fmt.Sprintf("canonical name %q already taken; renamed to %q", wanted, got),
	}
}

// SelfReferenceDropped reports an edge of relation from a merged entity to
// itself.
func SelfReferenceDropped(stage Stage, class, relation string, via []string) Diagnostic {
	via = slices.Clone(via)
	slices.Sort(via)
	return Diagnostic{
		Code:     CodeSelfReferenceDropped,
		Severity: CodeSelfReferenceDropped.Severity(),
		Stage:    stage,
		Class:    class,
		Related:  via,
		Message:  fmt.Sprintf("%s edge from %s to itself dropped", relation, class),
	}
}

// EmptyClassDropped reports a class left with no valid members.
func EmptyClassDropped(class string, members []string) Diagnostic {
	return Diagnostic{
		Code:     CodeEmptyClassDropped,
		Severity: CodeEmptyClassDropped.Severity(),
		Stage:    StageResolve,
		Class:    class,
		Members:  slices.Clone(members),
		Message:  "class has no valid members and was dropped",
	}
}

// MalformedMember reports a class member that cannot take part in a merge.
func MalformedMember(class, iri, reason string) Diagnostic {
	return Diagnostic{
		Code:     CodeMalformedMember,
		Severity: CodeMalformedMember.Severity(),
		Stage:    StageResolve,
		Class:    class,
		IRI:      iri,
		Message:  fmt.Sprintf("member skipped: %s", reason),
	}
}

// MalformedRecord reports a candidate row that was skipped.
func MalformedRecord(file string, line int, reason string) Diagnostic {
	return Diagnostic{
		Code:     CodeMalformedRecord,
		Severity: CodeMalformedRecord.Severity(),
		Stage:    StageCandidates,
		IRI:      file,
		Line:     line,
		Message:  fmt.Sprintf("row skipped: %s", reason),
	}
}
