// Package authority decides which entity kind wins when an equivalence class
// mixes kinds, and which member kinds may contribute facts to each field of a
// merged entity.
package authority

import (
	"path/filepath"
	"slices"

	"github.com/agentstation/ontomerge/pkg/types"
)

// Field paths of a merged entity.
const (
	FieldSuper     = "hierarchy.super"
	FieldDomain    = "signature.domain"
	FieldRange     = "signature.range"
	FieldComments  = "annotation.comments"
	FieldAlignment = "alignment.partners"
)

// Authority determines the canonical kind of a class and which members are
// allowed to feed each merged field.
type Authority interface {
	// Priority returns the rank of a kind (higher = more authoritative).
	Priority(kind types.Kind) int

	// Canonical returns the highest-priority kind present in kinds.
	Canonical(kinds []types.Kind) (types.Kind, bool)

	// Find returns the rule for a field path and canonical kind.
	Find(fieldPath string, canonical types.Kind) *Field

	// Contributes reports whether a member of kind member may add facts to
	// fieldPath of an entity whose canonical kind is canonical.
	Contributes(fieldPath string, canonical, member types.Kind) bool

	// List returns all field rules.
	List() []Field
}

// Field describes which canonical kinds carry a field and whether members of
// a different kind may still contribute to it.
type Field struct {
	Path       string       `json:"path" yaml:"path"`             // e.g. "signature.domain", "signature.*"
	Kinds      []types.Kind `json:"kinds" yaml:"kinds"`           // canonical kinds that carry the field
	Priority   int          `json:"priority" yaml:"priority"`     // higher wins when several patterns match
	Structural bool         `json:"structural" yaml:"structural"` // only same-kind members contribute
}

type authorities struct {
	ranks  map[types.Kind]int
	fields []Field
}

// New creates an Authority with the standard kind priority
// ObjectRelation > DataRelation > AnnotationRelation > Class.
func New() Authority {
	ranks := make(map[types.Kind]int)
	ordered := types.Kinds()
	for i, k := range ordered {
		ranks[k] = (len(ordered) - i) * 10
	}
	return &authorities{
		ranks:  ranks,
		fields: defaultFields(),
	}
}

// Priority returns the rank of a kind; unknown kinds rank zero.
func (a *authorities) Priority(kind types.Kind) int {
	return a.ranks[kind]
}

// Canonical returns the highest-priority valid kind in kinds.
func (a *authorities) Canonical(kinds []types.Kind) (types.Kind, bool) {
	var best types.Kind
	bestRank := 0
	for _, k := range kinds {
		if r := a.ranks[k]; r > bestRank {
			best, bestRank = k, r
		}
	}
	return best, bestRank > 0
}

// Find returns the rule for a field path carried by the canonical kind.
func (a *authorities) Find(fieldPath string, canonical types.Kind) *Field {
	candidates := make([]Field, 0, len(a.fields))
	for _, f := range a.fields {
		if slices.Contains(f.Kinds, canonical) {
			candidates = append(candidates, f)
		}
	}
	found := ByField(fieldPath, candidates)
	if found == nil {
		return nil
	}
	out := *found
	return &out
}

// Contributes reports whether a member may contribute to a field.
func (a *authorities) Contributes(fieldPath string, canonical, member types.Kind) bool {
	rule := a.Find(fieldPath, canonical)
	if rule == nil {
		return false
	}
	if rule.Structural {
		return member == canonical
	}
	return member.IsValid()
}

// List returns all field rules.
func (a *authorities) List() []Field {
	return slices.Clone(a.fields)
}

// ByField returns the highest priority rule for a given field path.
func ByField(fieldPath string, fields []Field) *Field {
	var bestMatch *Field
	var bestPriority int
	var bestMatchLength int

	for i, f := range fields {
		if MatchesPattern(fieldPath, f.Path) {
			// Prioritize by: 1) priority, 2) pattern specificity (length), 3) order
			patternLength := len(f.Path)
			if bestMatch == nil || f.Priority > bestPriority ||
				(f.Priority == bestPriority && patternLength > bestMatchLength) {
				bestMatch = &fields[i]
				bestPriority = f.Priority
				bestMatchLength = patternLength
			}
		}
	}

	return bestMatch
}

// MatchesPattern checks if a field path matches a pattern (supports * wildcards).
func MatchesPattern(fieldPath, pattern string) bool {
	if fieldPath == pattern {
		return true
	}

	if len(pattern) > 0 && pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return len(fieldPath) >= len(prefix) && fieldPath[:len(prefix)] == prefix
	}

	matched, err := filepath.Match(pattern, fieldPath)
	if err != nil {
		return false
	}
	return matched
}

func defaultFields() []Field {
	relations := []types.Kind{types.KindObjectRelation, types.KindDataRelation, types.KindAnnotationRelation}
	return []Field{
		// Structure follows the canonical kind only
		{Path: FieldSuper, Kinds: []types.Kind{types.KindClass}, Priority: 100, Structural: true},
		{Path: "signature.*", Kinds: relations, Priority: 100, Structural: true},

		// Identity and text survive kind conflicts
		{Path: FieldComments, Kinds: types.Kinds(), Priority: 50},
		{Path: FieldAlignment, Kinds: types.Kinds(), Priority: 50},
	}
}
