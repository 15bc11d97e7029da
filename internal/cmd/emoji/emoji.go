// Package emoji provides symbol constants for CLI output.
package emoji

// Status symbols shared by every command.
const (
	// Success marks a completed check or operation.
	Success = "✓"

	// Error marks a failed check or fatal input problem.
	Error = "✗"

	// Warning marks a resolved conflict worth reviewing.
	Warning = "!"

	// Info marks neutral notes.
	Info = "i"
)
