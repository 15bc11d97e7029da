package schema

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/ontomerge/pkg/constants"
	"github.com/agentstation/ontomerge/pkg/errors"
)

// Format is a document encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks JSON for .json files and YAML otherwise.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Encode writes the document to w.
func (d *Document) Encode(w io.Writer, format Format) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(d, "", "  ")
		data = append(data, '\n')
	case FormatYAML, "":
		data, err = yaml.MarshalWithOptions(d, yaml.Indent(2), yaml.IndentSequence(false))
	default:
		return &errors.ValidationError{Field: "format", Value: format, Message: "must be yaml or json"}
	}
	if err != nil {
		return errors.WrapParse(string(format), "schema", err)
	}
	_, err = w.Write(data)
	return errors.WrapIO("write", "schema", err)
}

// Decode reads a document in either format; JSON is valid YAML.
func Decode(r io.Reader, name string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO("read", name, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	if doc.Version == "" {
		return nil, &errors.ParseError{Format: "yaml", File: name, Message: "missing version: not a merged schema document"}
	}
	return &doc, nil
}

// WriteFile writes the document to path in the format its extension names,
// creating parent directories.
func WriteFile(path string, d *Document) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions) //nolint:gosec // path comes from CLI flags
	if err != nil {
		return errors.WrapIO("open", path, err)
	}
	if err := d.Encode(f, FormatFromPath(path)); err != nil {
		_ = f.Close()
		return err
	}
	return errors.WrapIO("close", path, f.Close())
}

// ReadFile reads a document from path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from CLI flags
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only
	return Decode(f, path)
}
