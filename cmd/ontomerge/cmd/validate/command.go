// Package validate implements the validate command.
package validate

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/agentstation/ontomerge/cmd/application"
	"github.com/agentstation/ontomerge/internal/cmd/alerts"
	"github.com/agentstation/ontomerge/internal/cmd/cmdutil"
	"github.com/agentstation/ontomerge/internal/cmd/output"
	"github.com/agentstation/ontomerge/pkg/diagnostics"
	"github.com/agentstation/ontomerge/pkg/errors"
	"github.com/agentstation/ontomerge/pkg/reconciler"
)

// Report is the structured output of the validate command.
type Report struct {
	Valid    bool                        `json:"valid" yaml:"valid"`
	Errors   []diagnostics.Diagnostic    `json:"errors" yaml:"errors"`
	Warnings []diagnostics.Diagnostic    `json:"warnings" yaml:"warnings"`
	Stats    reconciler.ResultStatistics `json:"stats" yaml:"stats"`
}

// NewCommand creates the validate command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		input  *cmdutil.InputFlags
		rule   *cmdutil.RuleFlags
		strict bool
	)

	cmd := &cobra.Command{
		Use:     "validate",
		GroupID: "management",
		Short:   "Check catalogs and candidates without merging",
		Long: `Validate loads the inputs, builds the match graph and resolves every
equivalence class, then reports the diagnostics found so far.

Dangling candidate references and malformed rows are errors; resolved
conflicts such as renamed classes or mixed kinds are warnings. The
command exits non-zero on errors, and on warnings with --strict.`,
		Example: `  ontomerge validate -c osn.yaml -c mp.yaml -m candidates.tsv
  ontomerge validate -c osn.yaml -c mp.yaml -m candidates.tsv --strict -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cmdutil.OutputFormat(app)
			if err != nil {
				return err
			}
			opts, err := rule.Options(cmd)
			if err != nil {
				return err
			}
			r, err := app.Reconciler(opts...)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			in, err := r.Load(ctx, input.Files())
			if err != nil {
				return err
			}
			v, err := r.Validate(ctx, in)
			if err != nil {
				return err
			}

			if err := render(cmd, format, v); err != nil {
				return err
			}
			return verdict(v, strict)
		},
	}

	input = cmdutil.AddInputFlags(cmd)
	rule = cmdutil.AddRuleFlags(cmd)
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")

	return cmd
}

// render writes the diagnostics to stdout and the verdict alert to stderr.
func render(cmd *cobra.Command, format output.Format, v *reconciler.ValidationResult) error {
	w := cmd.OutOrStdout()
	all := slices.Concat(v.Errors, v.Warnings)
	diagnostics.Sort(all)

	if format.IsTable() {
		if err := output.Diagnostics(w, format, all); err != nil {
			return err
		}
	} else {
		report := Report{Valid: v.IsValid(), Errors: v.Errors, Warnings: v.Warnings, Stats: v.Stats}
		if err := output.NewFormatter(format).Format(w, report); err != nil {
			return err
		}
	}

	level := alerts.LevelSuccess
	switch {
	case !v.IsValid():
		level = alerts.LevelError
	case v.HasWarnings():
		level = alerts.LevelWarning
	}
	alert := alerts.New(level, v.String())
	counts := diagnostics.Counts(all)
	for _, code := range diagnostics.Codes() {
		if counts[code] > 0 {
			alert.WithDetails(fmt.Sprintf("%s: %d", code, counts[code]))
		}
	}
	return alerts.NewWriter(cmd.ErrOrStderr(), format, os.Getenv("NO_COLOR") != "").Write(alert)
}

// verdict turns the validation result into the command error.
func verdict(v *reconciler.ValidationResult, strict bool) error {
	if !v.IsValid() {
		return &errors.ValidationError{Field: "input", Value: len(v.Errors), Message: v.String()}
	}
	if strict && v.HasWarnings() {
		return &errors.ValidationError{
			Field:   "input",
			Value:   len(v.Warnings),
			Message: fmt.Sprintf("%d warnings with --strict", len(v.Warnings)),
		}
	}
	return nil
}
