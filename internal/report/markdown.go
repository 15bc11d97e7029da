package report

import (
	"strings"

	md "github.com/nao1215/markdown"
)

// pairs adds a two-column table from ordered key/value pairs.
func pairs(m *md.Markdown, key, value string, kv [][2]string) {
	rows := make([][]string, len(kv))
	for i, p := range kv {
		rows[i] = []string{p[0], p[1]}
	}
	m.Table(md.TableSet{Header: []string{key, value}, Rows: rows})
}

// alert adds a GitHub alert block such as [!NOTE].
func alert(m *md.Markdown, kind, text string) {
	m.PlainText("> [!" + strings.ToUpper(kind) + "]\n> " + text).LF().LF()
}

// code renders values as inline code, comma separated.
func code(values []string) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = md.Code(v)
	}
	return strings.Join(out, ", ")
}
