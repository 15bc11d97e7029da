package table

import (
	"fmt"
	"strconv"

	"github.com/agentstation/ontomerge/pkg/diagnostics"
	"github.com/agentstation/ontomerge/pkg/resolver"
	"github.com/agentstation/ontomerge/pkg/schema"
	"github.com/agentstation/ontomerge/pkg/types"
)

// EntitiesToTableData converts merged schema entities to table format. The
// wide form adds members and annotations.
func EntitiesToTableData(entities []schema.Entity, wide bool) Data {
	headers := []string{"Name", "Kind", "Origin", "Super", "Domain", "Range", "Sources"}
	if wide {
		headers = append(headers, "Members", "Annotations")
	}

	rows := make([][]string, 0, len(entities))
	for _, e := range entities {
		row := []string{
			e.Name,
			string(e.Kind),
			string(e.Origin),
			joinOrDash(e.Super),
			joinOrDash(e.Domain),
			joinOrDash(e.Range),
			joinOrDash(tagStrings(e.Sources)),
		}
		if wide {
			members := e.Members
			if e.Origin == schema.OriginSource {
				members = []string{e.IRI}
			}
			row = append(row, joinOrDash(members), strconv.Itoa(len(e.Annotations)))
		}
		rows = append(rows, row)
	}

	return Data{
		Headers: headers,
		Rows:    rows,
	}
}

// ClassesToTableData converts resolved equivalence classes to table format.
func ClassesToTableData(res *resolver.Result, wide bool) Data {
	headers := []string{"#", "Name", "Kind", "Size", "Sources", "Status"}
	if wide {
		headers = append(headers, "Members")
	}

	rows := make([][]string, 0, len(res.Resolutions))
	for _, r := range res.Resolutions {
		status := "merged"
		switch {
		case r.Dropped:
			status = "dropped"
		case r.Renamed:
			status = "renamed"
		case len(r.Discarded) > 0:
			status = fmt.Sprintf("mixed (%d discarded)", len(r.Discarded))
		}

		name := r.Name
		if name == "" {
			name = "-"
		}
		row := []string{
			strconv.Itoa(r.Index + 1),
			name,
			string(r.Kind),
			strconv.Itoa(r.Class.Size()),
			joinOrDash(tagStrings(r.Sources)),
			status,
		}
		if wide {
			row = append(row, joinOrDash(r.Class.Members))
		}
		rows = append(rows, row)
	}

	align := []Align{AlignRight, AlignLeft, AlignLeft, AlignRight, AlignLeft, AlignLeft, AlignLeft}
	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: align[:len(headers)],
	}
}

// DiagnosticsToTableData converts diagnostics to table format.
func DiagnosticsToTableData(ds []diagnostics.Diagnostic, wide bool) Data {
	headers := []string{"Code", "Severity", "Stage", "Subject", "Message"}

	rows := make([][]string, 0, len(ds))
	for _, d := range ds {
		subject := d.Class
		if subject == "" {
			subject = d.IRI
		}
		if d.Line > 0 {
			subject = fmt.Sprintf("%s:%d", subject, d.Line)
		}
		if subject == "" {
			subject = "-"
		}

		message := d.Message
		if !wide {
			message = truncate(message, MaxCell)
		}
		rows = append(rows, []string{string(d.Code), string(d.Severity), string(d.Stage), subject, message})
	}

	return Data{
		Headers: headers,
		Rows:    rows,
	}
}

// CountsToTableData summarizes diagnostics per code, in reporting order.
func CountsToTableData(ds []diagnostics.Diagnostic) Data {
	counts := diagnostics.Counts(ds)
	rows := make([][]string, 0, len(counts))
	for _, code := range diagnostics.Codes() {
		if counts[code] == 0 {
			continue
		}
		rows = append(rows, []string{string(code), string(code.Severity()), strconv.Itoa(counts[code])})
	}
	return Data{
		Headers:         []string{"Code", "Severity", "Count"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight},
	}
}

func tagStrings(tags []types.SourceTag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}
