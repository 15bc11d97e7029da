// Package cluster implements the cluster command.
package cluster

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/ontomerge/cmd/application"
	"github.com/agentstation/ontomerge/internal/cmd/cmdutil"
	"github.com/agentstation/ontomerge/internal/cmd/output"
)

// NewCommand creates the cluster command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		input *cmdutil.InputFlags
		rule  *cmdutil.RuleFlags
		stats bool
	)

	cmd := &cobra.Command{
		Use:     "cluster",
		GroupID: "core",
		Short:   "Show equivalence classes without merging",
		Long: `Cluster builds the match graph from the admitted candidates and prints
every equivalence class with its canonical name and kind. Nothing is
merged or written.

Use it to tune --threshold and --admission before running merge.`,
		Example: `  ontomerge cluster -c osn.yaml -c mp.yaml -m candidates.tsv
  ontomerge cluster -c osn.yaml -c mp.yaml -m candidates.tsv --threshold 0.8 -o wide
  ontomerge cluster -c osn.yaml -c mp.yaml -m candidates.tsv --stats`,
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
			result, err := r.Cluster(ctx, in)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if stats {
				return output.Stats(w, format, result.Metadata.Stats)
			}
			if err := output.Classes(w, format, result.Resolution); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d classes over %d entities; %d diagnostics\n",
				result.Metadata.Stats.Classes, result.Metadata.Stats.Clustered, len(result.Diagnostics))
			return nil
		},
	}

	input = cmdutil.AddInputFlags(cmd)
	rule = cmdutil.AddRuleFlags(cmd)
	cmd.Flags().BoolVar(&stats, "stats", false, "Print run statistics instead of the classes")

	return cmd
}
