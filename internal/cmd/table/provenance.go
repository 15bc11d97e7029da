package table

import (
	"maps"
	"slices"

	"github.com/agentstation/ontomerge/internal/matcher"
	"github.com/agentstation/ontomerge/pkg/provenance"
)

// ProvenanceToTableData converts a provenance map to table format, one row
// per fact. Entities are listed by name; only those matching patterns are
// kept.
func ProvenanceToTableData(m provenance.Map, patterns []string) Data {
	var rows [][]string

	for _, entity := range slices.Sorted(maps.Keys(m)) {
		if !MatchField(entity, patterns) {
			continue
		}
		facts := slices.Clone(m[entity])
		slices.SortFunc(facts, provenance.Compare)

		for i, f := range facts {
			// Entity name only on first row, blank for subsequent facts
			name := ""
			if i == 0 {
				name = entity
			}
			rows = append(rows, []string{name, string(f.Relation), f.Name, string(f.Source)})
		}
	}

	return Data{
		Headers: []string{"Entity", "Relation", "Target", "Source"},
		Rows:    rows,
		ColumnAlignment: []Align{
			AlignLeft, // Entity
			AlignLeft, // Relation
			AlignLeft, // Target
			AlignLeft, // Source
		},
	}
}

// MatchField checks if a name matches any of the provided glob patterns.
// Matching is case-insensitive; no patterns match everything and malformed
// patterns match nothing.
func MatchField(field string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	set, err := matcher.NewSet(matcher.Glob, true, patterns...)
	if err != nil {
		return false
	}
	return set.Match(field)
}
