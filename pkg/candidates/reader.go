// Package candidates reads scored match candidates from delimited text.
//
// A candidate file is TSV (default) or CSV with a header row. The columns
// source and target are required; score and label are optional but at least
// one of them must be present. Column names are case-insensitive and may
// appear in any order:
//
//	Source	Target	Score	Label
//	http://example.org/osn#Person	http://example.org/mp#Human	0.92	yes
//
// A header problem is fatal. Problems in individual rows are reported as
// MalformedRecord diagnostics and the row is skipped.
package candidates

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agentstation/ontomerge/pkg/constants"
	"github.com/agentstation/ontomerge/pkg/diagnostics"
	"github.com/agentstation/ontomerge/pkg/errors"
	"github.com/agentstation/ontomerge/pkg/logging"
	"github.com/agentstation/ontomerge/pkg/matchgraph"
)

// Format is a candidate file encoding.
type Format string

// Supported formats.
const (
	FormatTSV Format = "tsv"
	FormatCSV Format = "csv"
)

// FormatFromPath picks the format from a file extension; anything other
// than .csv is read as TSV.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatTSV
}

func (f Format) comma() rune {
	if f == FormatCSV {
		return ','
	}
	return '\t'
}

// Column names.
const (
	ColumnSource = "source"
	ColumnTarget = "target"
	ColumnScore  = "score"
	ColumnLabel  = "label"
)

// Stats summarizes one read.
type Stats struct {
	Rows      int `json:"rows" yaml:"rows"`
	Read      int `json:"read" yaml:"read"`
	Malformed int `json:"malformed" yaml:"malformed"`
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Rows += other.Rows
	s.Read += other.Read
	s.Malformed += other.Malformed
}

type options struct {
	format Format
	diags  *diagnostics.Collector
}

// Option configures a read.
type Option func(*options) error

// WithFormat forces the file format instead of guessing from the name.
func WithFormat(f Format) Option {
	return func(o *options) error {
		switch f {
		case FormatTSV, FormatCSV:
			o.format = f
			return nil
		default:
			return &errors.ValidationError{Field: "format", Value: f, Message: "must be tsv or csv"}
		}
	}
}

// WithDiagnostics sets the collector malformed rows are reported to.
func WithDiagnostics(c *diagnostics.Collector) Option {
	return func(o *options) error {
		if c == nil {
			return &errors.ValidationError{Field: "diagnostics", Message: "cannot be nil"}
		}
		o.diags = c
		return nil
	}
}

// header maps column names to record positions; -1 when absent.
type header struct {
	source, target, score, label int
}

func parseHeader(record []string) (header, error) {
	h := header{source: -1, target: -1, score: -1, label: -1}
	for i, col := range record {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))) {
		case ColumnSource:
			h.source = i
		case ColumnTarget:
			h.target = i
		case ColumnScore:
			h.score = i
		case ColumnLabel:
			h.label = i
		}
	}

	var missing []string
	if h.source < 0 {
		missing = append(missing, ColumnSource)
	}
	if h.target < 0 {
		missing = append(missing, ColumnTarget)
	}
	if len(missing) > 0 {
		return h, fmt.Errorf("missing required column(s) %s", strings.Join(missing, ", "))
	}
	if h.score < 0 && h.label < 0 {
		return h, fmt.Errorf("need a %s or %s column", ColumnScore, ColumnLabel)
	}
	return h, nil
}

// Read parses candidates from r. name is used in diagnostics and errors.
// Without a label column every row counts as accepted; without a score
// column every score is absent.
func Read(ctx context.Context, r io.Reader, name string, opts ...Option) ([]matchgraph.Candidate, Stats, error) {
	o := &options{format: FormatFromPath(name), diags: diagnostics.NewCollector()}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, Stats{}, err
		}
	}
	logger := logging.FromContext(ctx).With().Str("file", name).Logger()

	cr := csv.NewReader(r)
	cr.Comma = o.format.comma()
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = o.format == FormatTSV
	cr.ReuseRecord = true

	first, err := cr.Read()
	if err == io.EOF {
		return nil, Stats{}, &errors.ParseError{Format: string(o.format), File: name, Message: "empty file: missing header"}
	}
	if err != nil {
		return nil, Stats{}, errors.WrapParse(string(o.format), name, err)
	}
	h, err := parseHeader(first)
	if err != nil {
		return nil, Stats{}, &errors.ParseError{Format: string(o.format), File: name, Line: 1, Message: err.Error(), Err: err}
	}

	var (
		out   []matchgraph.Candidate
		stats Stats
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, stats, errors.WrapCanceled("read candidates", err)
		}
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, stats, errors.WrapIO("read", name, err)
			}
			stats.Rows++
			stats.Malformed++
			o.diags.Add(ctx, diagnostics.MalformedRecord(name, perr.Line, perr.Err.Error()))
			continue
		}
		stats.Rows++
		line, _ := cr.FieldPos(0)

		c, reason := h.candidate(record)
		if reason != "" {
			stats.Malformed++
			o.diags.Add(ctx, diagnostics.MalformedRecord(name, line, reason))
			continue
		}
		out = append(out, c)
		stats.Read++
	}

	logger.Debug().
		Int("rows", stats.Rows).
		Int("candidates", stats.Read).
		Int("malformed", stats.Malformed).
		Msg("Candidates read")
	return out, stats, nil
}

// ReadFile opens path and reads its candidates.
func ReadFile(ctx context.Context, path string, opts ...Option) ([]matchgraph.Candidate, Stats, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from CLI flags
	if err != nil {
		return nil, Stats{}, errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only
	return Read(ctx, f, path, opts...)
}

// candidate converts one record, or returns why it cannot be used.
func (h header) candidate(record []string) (matchgraph.Candidate, string) {
	size := 0
	for _, field := range record {
		size += len(field)
	}
	if size > constants.MaxCandidateLineBytes {
		return matchgraph.Candidate{}, "row too long"
	}

	c := matchgraph.Candidate{
		EntityA:  cell(record, h.source),
		EntityB:  cell(record, h.target),
		Accepted: h.label < 0,
	}
	if c.EntityA == "" || c.EntityB == "" {
		return c, "empty source or target IRI"
	}

	if h.score >= 0 {
		if raw := cell(record, h.score); raw != "" {
			s, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(s) || math.IsInf(s, 0) {
				return c, fmt.Sprintf("unparsable score %q", raw)
			}
			c.Score = &s
		}
	}
	if h.label >= 0 {
		accepted, ok := ParseLabel(cell(record, h.label))
		if !ok {
			return c, fmt.Sprintf("unknown label %q", cell(record, h.label))
		}
		c.Accepted = accepted
	}
	return c, ""
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// ParseLabel parses a label cell. yes/true/1 accept, no/false/0 and the
// empty string reject; anything else is invalid.
func ParseLabel(s string) (accepted, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "y":
		return true, true
	case "no", "false", "0", "n", "":
		return false, true
	default:
		return false, false
	}
}
