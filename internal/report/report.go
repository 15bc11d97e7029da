// Package report renders a merge run as a markdown document for review.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	md "github.com/nao1215/markdown"

	"github.com/agentstation/ontomerge/pkg/constants"
	"github.com/agentstation/ontomerge/pkg/diagnostics"
	"github.com/agentstation/ontomerge/pkg/errors"
	"github.com/agentstation/ontomerge/pkg/reconciler"
	"github.com/agentstation/ontomerge/pkg/schema"
	"github.com/agentstation/ontomerge/pkg/types"
)

// Write renders the report of result to w.
func Write(w io.Writer, result *reconciler.Result) error {
	if result == nil || result.Document == nil {
		return &errors.ValidationError{Field: "result", Message: "a merged document is required"}
	}
	m := md.NewMarkdown(w)

	m.H1("Merge report")
	metadata(m, result.Metadata)
	summary(m, result.Metadata.Stats)
	entities(m, result.Document.Merged())
	diagnosticsSection(m, result.Diagnostics)
	if result.Changeset != nil {
		changes(m, result)
	}
	return m.Build()
}

// WriteFile renders the report to path, creating parent directories.
func WriteFile(path string, result *reconciler.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions) //nolint:gosec // path comes from CLI flags
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := Write(f, result); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("close", path, err)
	}
	return nil
}

func metadata(m *md.Markdown, meta reconciler.ResultMetadata) {
	pairs(m, "Run", "", [][2]string{
		{"Run ID", meta.RunID},
		{"Sources", tags(meta.Sources)},
		{"Admission", meta.Rule.String()},
		{"Cardinality", string(meta.Cardinality)},
		{"Workers", strconv.Itoa(meta.Workers)},
		{"Duration", meta.Duration.Round(time.Millisecond).String()},
	})
}

func summary(m *md.Markdown, s reconciler.ResultStatistics) {
	m.H2("Summary")
	pairs(m, "Metric", "Count", [][2]string{
		{"Catalog entities", strconv.Itoa(s.Entities)},
		{"Candidates", strconv.Itoa(s.Candidates)},
		{"Removed by cardinality filter", strconv.Itoa(s.Filtered)},
		{"Admitted edges", strconv.Itoa(s.Graph.Admitted)},
		{"Rejected candidates", strconv.Itoa(s.Graph.Rejected)},
		{"Dangling candidates", strconv.Itoa(s.Graph.Referential)},
		{"Self matches", strconv.Itoa(s.Graph.SelfLoops)},
		{"Equivalence classes", strconv.Itoa(s.Classes)},
		{"Clustered entities", strconv.Itoa(s.Clustered)},
		{"Merged entities", strconv.Itoa(s.Merged)},
		{"Renamed on collision", strconv.Itoa(s.Renamed)},
		{"Mixed-kind classes", strconv.Itoa(s.MixedKind)},
		{"Dropped classes", strconv.Itoa(s.Dropped)},
		{"Passed through", strconv.Itoa(s.PassedThrough)},
		{"Diagnostics", strconv.Itoa(s.Diagnostics)},
	})
}

func entities(m *md.Markdown, merged []schema.Entity) {
	m.H2(fmt.Sprintf("Merged entities (%d)", len(merged)))
	if len(merged) == 0 {
		m.PlainText("No entities were merged.").LF()
		return
	}

	rows := make([][]string, 0, len(merged))
	for _, e := range merged {
		structure := code(e.Super)
		if e.Kind.IsRelation() {
			structure = fmt.Sprintf("%s → %s", code(e.Domain), code(e.Range))
		}
		rows = append(rows, []string{
			e.Name,
			string(e.Kind),
			strconv.Itoa(len(e.Members)),
			tags(e.Sources),
			structure,
		})
	}
	m.Table(md.TableSet{Header: []string{"Name", "Kind", "Members", "Sources", "Structure"}, Rows: rows})
}

func diagnosticsSection(m *md.Markdown, ds []diagnostics.Diagnostic) {
	m.H2(fmt.Sprintf("Diagnostics (%d)", len(ds)))
	if len(ds) == 0 {
		m.PlainText("No diagnostics were raised.").LF()
		return
	}

	counts := diagnostics.Counts(ds)
	var rows [][]string
	for _, c := range diagnostics.Codes() {
		if counts[c] == 0 {
			continue
		}
		rows = append(rows, []string{string(c), string(c.Severity()), strconv.Itoa(counts[c])})
	}
	m.Table(md.TableSet{Header: []string{"Code", "Severity", "Count"}, Rows: rows})

	items := make([]string, len(ds))
	for i, d := range ds {
		items[i] = d.String()
	}
	m.BulletList(items...)
}

func changes(m *md.Markdown, result *reconciler.Result) {
	cs := result.Changeset
	m.H2("Changes against baseline")
	if cs.IsEmpty() {
		alert(m, "note", "The merged schema matches the baseline.")
		return
	}
	alert(m, "important", cs.String())

	var items []string
	for _, e := range cs.Entities.Added {
		items = append(items, "added "+e.Key())
	}
	for _, u := range cs.Entities.Updated {
		paths := make([]string, len(u.Changes))
		for i, c := range u.Changes {
			paths[i] = c.Path
		}
		items = append(items, fmt.Sprintf("updated %s (%s)", u.Key, strings.Join(paths, ", ")))
	}
	for _, e := range cs.Entities.Removed {
		items = append(items, "removed "+e.Key())
	}
	if len(items) > 0 {
		m.BulletList(items...)
	}
}

func tags(ts []types.SourceTag) string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = string(t)
	}
	return strings.Join(out, ", ")
}
