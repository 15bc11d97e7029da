// Package diff implements the diff command.
package diff

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/ontomerge/cmd/application"
	"github.com/agentstation/ontomerge/internal/cmd/cmdutil"
	"github.com/agentstation/ontomerge/internal/cmd/output"
	"github.com/agentstation/ontomerge/pkg/differ"
	"github.com/agentstation/ontomerge/pkg/errors"
	"github.com/agentstation/ontomerge/pkg/schema"
)

// NewCommand creates the diff command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		ignore        []string
		only          string
		noDiagnostics bool
		exitCode      bool
	)

	cmd := &cobra.Command{
		Use:     "diff <old> <new>",
		GroupID: "core",
		Short:   "Compare two merged schema documents",
		Long: `Diff compares two merged schema documents entity by entity. Merged
entities are matched by name and carried-through source entities by IRI.
Diagnostics are compared as a multiset.`,
		Example: `  ontomerge diff merged-old.yaml merged.yaml
  ontomerge diff merged-old.yaml merged.json --ignore annotations --ignore source_origin
  ontomerge diff merged-old.yaml merged.yaml --only additive
  ontomerge diff merged-old.yaml merged.yaml --exit-code`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cmdutil.OutputFormat(app)
			if err != nil {
				return err
			}
			strategy, err := parseStrategy(only)
			if err != nil {
				return err
			}

			existing, err := schema.ReadFile(args[0])
			if err != nil {
				return err
			}
			updated, err := schema.ReadFile(args[1])
			if err != nil {
				return err
			}

			cs := differ.New(
				differ.WithIgnoredFields(ignore...),
				differ.WithDiagnostics(!noDiagnostics),
			).Documents(existing, updated).Filter(strategy)

			app.Logger().Debug().
				Int("added", cs.Summary.EntitiesAdded).
				Int("updated", cs.Summary.EntitiesUpdated).
				Int("removed", cs.Summary.EntitiesRemoved).
				Msg("Documents compared")

			if err := output.Changeset(cmd.OutOrStdout(), format, cs); err != nil {
				return err
			}
			if exitCode && cs.HasChanges() {
				return &errors.ValidationError{Field: "documents", Message: cs.String()}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&ignore, "ignore", nil,
		"Entity fields to ignore, e.g. annotations or source_origin (repeatable)")
	cmd.Flags().StringVar(&only, "only", string(differ.ApplyAll),
		"Changes to show: all, additive, updates-only, additions-only")
	cmd.Flags().BoolVar(&noDiagnostics, "no-diagnostics", false,
		"Compare entities only")
	cmd.Flags().BoolVar(&exitCode, "exit-code", false,
		"Exit non-zero when the documents differ")

	return cmd
}

// parseStrategy validates the --only flag.
func parseStrategy(s string) (differ.ApplyStrategy, error) {
	switch strategy := differ.ApplyStrategy(s); strategy {
	case differ.ApplyAll, differ.ApplyAdditive, differ.ApplyUpdatesOnly, differ.ApplyAdditionsOnly:
		return strategy, nil
	default:
		return "", &errors.ValidationError{
			Field:   "only",
			Value:   s,
			Message: "must be one of all, additive, updates-only, additions-only",
		}
	}
}
