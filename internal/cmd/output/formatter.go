// Package output renders command results as tables, JSON or YAML.
//
// Commands build plain result values; the table form of a value is produced
// by the internal/cmd/table package and only when the chosen format is a
// table format. Everything else is serialized as is.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/ontomerge/internal/cmd/table"
	"github.com/agentstation/ontomerge/pkg/errors"
)

// Format names an output format.
type Format string

// Output formats. Wide is a table with every column.
const (
	FormatTable Format = "table"
	FormatWide  Format = "wide"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// IsTable reports whether f renders as a table. The empty format does.
func (f Format) IsTable() bool {
	return f == "" || f == FormatTable || f == FormatWide
}

// ParseFormat validates s, ignoring case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatTable, FormatWide, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", &errors.ValidationError{
		Field:   "format",
		Value:   s,
		Message: fmt.Sprintf("invalid format %q: must be one of: table, wide, json, yaml", s),
	}
}

// DetectFormat returns the explicit format when one is given. Otherwise,
// or for "auto", it picks a table on a terminal and JSON for pipes.
func DetectFormat(explicit string) Format {
	if explicit != "" && !strings.EqualFold(explicit, "auto") {
		return Format(strings.ToLower(explicit))
	}
	if fd := os.Stdout.Fd(); isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return FormatTable
	}
	return FormatJSON
}

// Formatter writes data to w.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter returns the formatter for format. Table formats are the
// fallback.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return jsonFormatter{}
	case FormatYAML:
		return yamlFormatter{}
	default:
		return TableFormatter{}
	}
}

type jsonFormatter struct{}

func (jsonFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

type yamlFormatter struct{}

func (yamlFormatter) Format(w io.Writer, data any) error {
	out, err := yaml.MarshalWithOptions(data, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return errors.WrapParse("yaml", "", err)
	}
	_, err = w.Write(out)
	return err
}

// TableFormatter renders table.Data with tablewriter. Any other value is
// written as JSON.
type TableFormatter struct{}

// Format implements Formatter.
func (f TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case table.Data:
		return render(w, v)
	case *table.Data:
		return render(w, *v)
	default:
		return jsonFormatter{}.Format(w, data)
	}
}

func render(w io.Writer, data table.Data) error {
	var config tablewriter.Config
	if len(data.ColumnAlignment) > 0 {
		align := make([]tw.Align, len(data.ColumnAlignment))
		for i, a := range data.ColumnAlignment {
			align[i] = alignments[a]
		}
		config.Header.Alignment = tw.CellAlignment{PerColumn: align}
		config.Row.Alignment = tw.CellAlignment{PerColumn: align}
	}

	tbl := tablewriter.NewTable(w, tablewriter.WithConfig(config))
	if len(data.Headers) > 0 {
		tbl.Header(cells(data.Headers)...)
	}
	for _, row := range data.Rows {
		if err := tbl.Append(cells(row)...); err != nil {
			return err
		}
	}
	return tbl.Render()
}

// alignments maps table alignments onto tablewriter's; AlignDefault maps to
// tw.Skip, which keeps tablewriter's own choice.
var alignments = map[table.Align]tw.Align{
	table.AlignDefault: tw.Skip,
	table.AlignLeft:    tw.AlignLeft,
	table.AlignCenter:  tw.AlignCenter,
	table.AlignRight:   tw.AlignRight,
}

func cells(row []string) []any {
	out := make([]any, len(row))
	for i, c := range row {
		out[i] = c
	}
	return out
}

// KeyValues builds a two-column table from snake_case keys, title-casing
// them for display.
func KeyValues(pairs [][2]string) table.Data {
	caser := cases.Title(language.English)
	rows := make([][]string, len(pairs))
	for i, p := range pairs {
		rows[i] = []string{caser.String(strings.ReplaceAll(p[0], "_", " ")), p[1]}
	}
	return table.Data{
		Headers:         []string{"Property", "Value"},
		Rows:            rows,
		ColumnAlignment: []table.Align{table.AlignLeft, table.AlignRight},
	}
}
