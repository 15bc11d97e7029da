// Package merge implements the merge command.
package merge

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/ontomerge/cmd/application"
	"github.com/agentstation/ontomerge/internal/cmd/cmdutil"
	"github.com/agentstation/ontomerge/internal/cmd/output"
	"github.com/agentstation/ontomerge/internal/metrics"
	"github.com/agentstation/ontomerge/internal/report"
	"github.com/agentstation/ontomerge/pkg/reconciler"
	"github.com/agentstation/ontomerge/pkg/schema"
)

// Flags holds the merge command flags.
type Flags struct {
	Input *cmdutil.InputFlags
	Rule  *cmdutil.RuleFlags

	Out           string
	Report        string
	Baseline      string
	MetricsFile   string
	Explain       []string
	NoPassThrough bool
	NoProvenance  bool
}

// NewCommand creates the merge command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "merge",
		GroupID: "core",
		Short:   "Merge source catalogs into one schema",
		Long: `Merge reads source catalogs and match candidates, clusters equivalent
entities and writes the merged schema.

Without --out the merged schema is written to stdout. With --out the run
statistics are printed instead. Diagnostics are logged as they are raised
and included in the schema document.`,
		Example: `  ontomerge merge -c osn.yaml -c mp.yaml -m candidates.tsv
  ontomerge merge -c osn.yaml -c mp.yaml -m candidates.tsv --out merged.yaml --report merged.md
  ontomerge merge -c osn.yaml -c mp.yaml -m candidates.tsv --baseline merged.yaml --threshold 0.8
  ontomerge merge -c osn.yaml -c mp.yaml -m candidates.tsv --explain 'Hum*'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, flags)
		},
	}

	flags.Input = cmdutil.AddInputFlags(cmd)
	flags.Rule = cmdutil.AddRuleFlags(cmd)
	cmd.Flags().StringVar(&flags.Out, "out", "",
		"Write the merged schema to a file (.yaml or .json)")
	cmd.Flags().StringVar(&flags.Report, "report", "",
		"Write a markdown review report to a file")
	cmd.Flags().StringVar(&flags.Baseline, "baseline", "",
		"Compare against a previously merged schema")
	cmd.Flags().StringVar(&flags.MetricsFile, "metrics-file", "",
		"Write Prometheus metrics in textfile format")
	cmd.Flags().StringSliceVar(&flags.Explain, "explain", nil,
		"Print provenance facts for entities matching a glob (repeatable)")
	cmd.Flags().BoolVar(&flags.NoPassThrough, "no-pass-through", false,
		"Leave unmatched entities out of the merged schema")
	cmd.Flags().BoolVar(&flags.NoProvenance, "no-provenance", false,
		"Skip the provenance ledger")

	return cmd
}

// run executes a merge and writes every requested artifact.
func run(cmd *cobra.Command, app application.Application, flags *Flags) error {
	ctx := cmd.Context()
	logger := app.Logger()

	format, err := cmdutil.OutputFormat(app)
	if err != nil {
		return err
	}

	opts, err := options(cmd, flags)
	if err != nil {
		return err
	}
	r, err := app.Reconciler(opts...)
	if err != nil {
		return err
	}

	in, err := r.Load(ctx, flags.Input.Files())
	if err != nil {
		return err
	}
	result, err := r.Run(ctx, in)
	if err != nil {
		return err
	}

	if flags.Out != "" {
		if err := schema.WriteFile(flags.Out, result.Document); err != nil {
			return err
		}
		logger.Info().Str("path", flags.Out).Int("entities", len(result.Document.Entities)).Msg("Merged schema written")
	}
	if flags.Report != "" {
		if err := report.WriteFile(flags.Report, result); err != nil {
			return err
		}
		logger.Info().Str("path", flags.Report).Msg("Report written")
	}
	if err := writeMetrics(app, flags, result); err != nil {
		return err
	}

	if err := render(cmd, format, flags, result); err != nil {
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr(), result.Summary())
	return nil
}

// options turns command flags into reconciler options.
func options(cmd *cobra.Command, flags *Flags) ([]reconciler.Option, error) {
	opts, err := flags.Rule.Options(cmd)
	if err != nil {
		return nil, err
	}
	if flags.Baseline != "" {
		baseline, err := schema.ReadFile(flags.Baseline)
		if err != nil {
			return nil, err
		}
		opts = append(opts, reconciler.WithBaseline(baseline))
	}
	opts = append(opts,
		reconciler.WithPassThrough(!flags.NoPassThrough),
		reconciler.WithProvenance(!flags.NoProvenance || len(flags.Explain) > 0),
	)
	return opts, nil
}

// writeMetrics records the run if a metrics file is configured.
func writeMetrics(app application.Application, flags *Flags, result *reconciler.Result) error {
	path := flags.MetricsFile
	if path == "" {
		path = app.MetricsFile()
	}
	if path == "" {
		return nil
	}

	recorder, err := metrics.New()
	if err != nil {
		return err
	}
	recorder.Record(result)
	if err := recorder.WriteFile(path); err != nil {
		return err
	}
	app.Logger().Debug().Str("path", path).Msg("Metrics written")
	return nil
}

// render writes the command output to stdout. Tables are followed by the
// baseline changeset, if any.
func render(cmd *cobra.Command, format output.Format, flags *Flags, result *reconciler.Result) error {
	w := cmd.OutOrStdout()

	switch {
	case len(flags.Explain) > 0:
		return output.Provenance(w, format, result.Provenance, flags.Explain)
	case flags.Out != "":
		if err := output.Stats(w, format, result.Metadata.Stats); err != nil {
			return err
		}
	case format.IsTable():
		if err := output.Entities(w, format, result.Document.Entities); err != nil {
			return err
		}
	default:
		return output.NewFormatter(format).Format(w, result.Document)
	}

	if result.Changeset != nil && format.IsTable() {
		fmt.Fprintln(w)
		return output.Changeset(w, format, result.Changeset)
	}
	return nil
}
