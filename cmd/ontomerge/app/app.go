// Package app provides the application context for the ontomerge CLI. It
// centralizes configuration, logging and reconciler construction so that
// commands only depend on the application.Application interface.
package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/ontomerge/cmd/application"
	"github.com/agentstation/ontomerge/pkg/candidates"
	"github.com/agentstation/ontomerge/pkg/errors"
	"github.com/agentstation/ontomerge/pkg/matchgraph"
	"github.com/agentstation/ontomerge/pkg/reconciler"
)

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// App represents the ontomerge application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// cancel releases the per-command timeout context
	cancel context.CancelFunc
}

// Option configures an App.
type Option func(*App) error

// WithConfig replaces the loaded configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return &errors.ValidationError{Field: "config", Message: "cannot be nil"}
		}
		if err := config.Validate(); err != nil {
			return err
		}
		a.config = config
		logger := NewLogger(config)
		a.logger = &logger
		return nil
	}
}

// WithLogger replaces the configured logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		if logger == nil {
			return &errors.ValidationError{Field: "logger", Message: "cannot be nil"}
		}
		a.logger = logger
		return nil
	}
}

// New creates a new App instance with the given version information.
// Configuration is loaded from the environment and config files, then
// options are applied.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Reconciler builds a reconciler from the configuration. Options passed in
// are applied last and win over configured values.
func (a *App) Reconciler(opts ...reconciler.Option) (reconciler.Reconciler, error) {
	mode, err := matchgraph.ParseAdmission(a.config.Admission)
	if err != nil {
		return nil, err
	}
	card, err := candidates.ParseCardinality(a.config.Cardinality)
	if err != nil {
		return nil, err
	}

	configured := []reconciler.Option{
		reconciler.WithRule(matchgraph.Rule{Mode: mode, Threshold: a.config.Threshold}),
		reconciler.WithCardinality(card),
		reconciler.WithBuiltins(a.config.Builtins),
	}
	if a.config.Workers > 0 {
		configured = append(configured, reconciler.WithWorkers(a.config.Workers))
	}
	if len(a.config.Exclude) > 0 {
		configured = append(configured, reconciler.WithExclude(a.config.Exclude...))
	}
	return reconciler.New(append(configured, opts...)...)
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns who built the binary.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the configured logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// MetricsFile returns the configured Prometheus textfile path.
func (a *App) MetricsFile() string {
	return a.config.MetricsFile
}
