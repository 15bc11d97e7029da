// Package application provides the application interface for ontomerge commands.
//
// The Application interface defines the contract between the application layer
// and command implementations, so commands can be tested against a mock
// instead of the full CLI application.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            r, err := app.Reconciler()
//	            if err != nil {
//	                return err
//	            }
//	            in, err := r.Load(cmd.Context(), files)
//	            // ... run the merge
//	        },
//	    }
//	}
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/ontomerge/pkg/reconciler"
)

// Application provides what commands need from the CLI application.
// The App struct from cmd/ontomerge/app implements this interface.
type Application interface {
	// Reconciler returns a reconciler configured from the loaded config.
	// Options passed here are applied after the configured ones, so command
	// flags override config files and environment variables.
	Reconciler(opts ...reconciler.Option) (reconciler.Reconciler, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the requested output format, or "" for auto-detection.
	OutputFormat() string

	// MetricsFile returns the configured Prometheus textfile path, if any.
	MetricsFile() string

	// Version information
	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}
