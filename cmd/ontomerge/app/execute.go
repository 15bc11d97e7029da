package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/ontomerge/pkg/logging"
)

// Execute runs the ontomerge CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)

	defer a.release()
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ontomerge",
		Short:   "Ontology merge engine",
		Version: a.version,
		Long: `Ontomerge consolidates several source ontologies into one merged schema.

It reads source catalogs and match candidates produced by an upstream
matcher, groups equivalent entities into classes, picks a canonical name
and kind for each class, and merges hierarchy, signatures, annotations and
alignment into one entity per class. Every decision that loses information
is reported as a diagnostic.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.ontomerge.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("format", "o", "", "output format: table, wide, json, yaml")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("ontomerge {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs. It applies flags on top
// of the loaded configuration, rebuilds the logger and bounds the command
// context by the configured timeout.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if path := mustGetString(cmd, "config"); path != "" {
		config, err := loadConfig(path)
		if err != nil {
			return err
		}
		a.config = config
	}

	a.config.UpdateFromFlags(
		mustGetBool(cmd, "verbose"),
		mustGetBool(cmd, "quiet"),
		mustGetBool(cmd, "no-color"),
		mustGetString(cmd, "format"),
		mustGetString(cmd, "log-level"),
	)

	logger := NewLogger(a.config)
	a.logger = &logger

	ctx, cancel := withTimeout(cmd.Context(), a.config.Timeout)
	a.cancel = cancel
	cmd.SetContext(logging.WithLogger(ctx, a.logger))

	a.logger.Debug().
		Str("command", cmd.Name()).
		Str("config_file", a.config.ConfigFile).
		Dur("timeout", a.config.Timeout).
		Msg("Command setup complete")
	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(a.NewMergeCommand())
	rootCmd.AddCommand(a.NewClusterCommand())
	rootCmd.AddCommand(a.NewDiffCommand())

	// Management commands
	rootCmd.AddCommand(a.NewValidateCommand())

	// Utility commands
	rootCmd.AddCommand(a.NewVersionCommand())
}

// release cancels the command context created by setupCommand.
func (a *App) release() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// ExitOnError prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
