// Package alerts provides status notifications written to stderr in the
// command's output format.
package alerts

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"

	"github.com/agentstation/ontomerge/internal/cmd/emoji"
	"github.com/agentstation/ontomerge/internal/cmd/output"
)

// Level represents the severity of an alert.
type Level int

const (
	// LevelError indicates a failure or error condition.
	LevelError Level = iota
	// LevelWarning indicates a potential issue or important notice.
	LevelWarning
	// LevelInfo indicates general informational messages.
	LevelInfo
	// LevelSuccess indicates successful completion of an operation.
	LevelSuccess
)

// String returns the string representation of the alert level.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}

// Icon returns the symbol for the alert level.
func (l Level) Icon() string {
	switch l {
	case LevelError:
		return emoji.Error
	case LevelWarning:
		return emoji.Warning
	case LevelSuccess:
		return emoji.Success
	default:
		return emoji.Info
	}
}

// color returns the ANSI color code for terminal output.
func (l Level) color() string {
	switch l {
	case LevelError:
		return "\033[31m"
	case LevelWarning:
		return "\033[33m"
	case LevelSuccess:
		return "\033[32m"
	default:
		return "\033[36m"
	}
}

const reset = "\033[0m"

// Alert represents a status notification.
type Alert struct {
	Level   Level
	Message string
	Details []string
}

// New creates a new alert with the given level and message.
func New(level Level, message string) *Alert {
	return &Alert{Level: level, Message: message}
}

// WithDetails adds context lines to the alert.
func (a *Alert) WithDetails(details ...string) *Alert {
	a.Details = append(a.Details, details...)
	return a
}

// String returns the alert on one line.
func (a *Alert) String() string {
	return fmt.Sprintf("%s %s", a.Level.Icon(), a.Message)
}

// Writer writes alerts.
type Writer struct {
	w      io.Writer
	format output.Format
	color  bool
}

// NewWriter creates a writer for format. Color is used only for table
// output to a terminal.
func NewWriter(w io.Writer, format output.Format, noColor bool) *Writer {
	return &Writer{
		w:      w,
		format: format,
		color:  !noColor && format.IsTable() && isTerminal(w),
	}
}

// alertData represents alert data for structured output.
type alertData struct {
	Level   string   `json:"level" yaml:"level"`
	Message string   `json:"message" yaml:"message"`
	Details []string `json:"details,omitempty" yaml:"details,omitempty"`
}

// Write writes an alert in the configured format.
func (aw *Writer) Write(alert *Alert) error {
	data := alertData{Level: alert.Level.String(), Message: alert.Message, Details: alert.Details}

	switch aw.format {
	case output.FormatJSON:
		encoder := json.NewEncoder(aw.w)
		return encoder.Encode(data)
	case output.FormatYAML:
		out, err := yaml.MarshalWithOptions(data, yaml.Indent(2), yaml.IndentSequence(false))
		if err != nil {
			return err
		}
		_, err = aw.w.Write(out)
		return err
	}

	message := alert.String()
	if aw.color {
		message = alert.Level.color() + message + reset
	}
	if _, err := fmt.Fprintln(aw.w, message); err != nil {
		return err
	}
	for _, detail := range alert.Details {
		if _, err := fmt.Fprintf(aw.w, "   %s\n", detail); err != nil {
			return err
		}
	}
	return nil
}

// isTerminal checks if the writer is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
