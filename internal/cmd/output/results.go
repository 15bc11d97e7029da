package output

import (
	"io"
	"strconv"

	"github.com/agentstation/ontomerge/internal/cmd/table"
	"github.com/agentstation/ontomerge/pkg/diagnostics"
	"github.com/agentstation/ontomerge/pkg/differ"
	"github.com/agentstation/ontomerge/pkg/provenance"
	"github.com/agentstation/ontomerge/pkg/reconciler"
	"github.com/agentstation/ontomerge/pkg/resolver"
	"github.com/agentstation/ontomerge/pkg/schema"
)

// Entities writes merged schema entities.
func Entities(w io.Writer, format Format, entities []schema.Entity) error {
	var data any = entities
	if format.IsTable() {
		data = table.EntitiesToTableData(entities, format == FormatWide)
	}
	return NewFormatter(format).Format(w, data)
}

// Classes writes resolved equivalence classes.
func Classes(w io.Writer, format Format, res *resolver.Result) error {
	var data any = res.Resolutions
	if format.IsTable() {
		data = table.ClassesToTableData(res, format == FormatWide)
	}
	return NewFormatter(format).Format(w, data)
}

// Diagnostics writes a diagnostic stream.
func Diagnostics(w io.Writer, format Format, ds []diagnostics.Diagnostic) error {
	var data any = ds
	if format.IsTable() {
		if len(ds) == 0 {
			return nil
		}
		data = table.DiagnosticsToTableData(ds, format == FormatWide)
	}
	return NewFormatter(format).Format(w, data)
}

// Provenance writes ledger facts for entities matching patterns.
func Provenance(w io.Writer, format Format, m provenance.Map, patterns []string) error {
	var data any = m
	if format.IsTable() {
		data = table.ProvenanceToTableData(m, patterns)
	}
	return NewFormatter(format).Format(w, data)
}

// Stats writes run statistics.
func Stats(w io.Writer, format Format, s reconciler.ResultStatistics) error {
	var data any = s
	if format.IsTable() {
		data = KeyValues([][2]string{
			{"entities", strconv.Itoa(s.Entities)},
			{"candidates", strconv.Itoa(s.Candidates)},
			{"filtered", strconv.Itoa(s.Filtered)},
			{"admitted", strconv.Itoa(s.Graph.Admitted)},
			{"rejected", strconv.Itoa(s.Graph.Rejected)},
			{"dangling", strconv.Itoa(s.Graph.Referential)},
			{"self_matches", strconv.Itoa(s.Graph.SelfLoops)},
			{"classes", strconv.Itoa(s.Classes)},
			{"clustered", strconv.Itoa(s.Clustered)},
			{"merged", strconv.Itoa(s.Merged)},
			{"renamed", strconv.Itoa(s.Renamed)},
			{"mixed_kind", strconv.Itoa(s.MixedKind)},
			{"dropped", strconv.Itoa(s.Dropped)},
			{"passed_through", strconv.Itoa(s.PassedThrough)},
			{"diagnostics", strconv.Itoa(s.Diagnostics)},
		})
	}
	return NewFormatter(format).Format(w, data)
}

// Changeset writes the differences between two merged documents.
func Changeset(w io.Writer, format Format, cs *differ.Changeset) error {
	if format.IsTable() {
		cs.Print(w)
		return nil
	}
	return NewFormatter(format).Format(w, cs)
}
