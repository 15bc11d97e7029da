// Package cmdutil provides shared flags and option helpers for ontomerge commands.
package cmdutil

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/ontomerge/internal/cmd/output"
	"github.com/agentstation/ontomerge/pkg/candidates"
	"github.com/agentstation/ontomerge/pkg/matchgraph"
	"github.com/agentstation/ontomerge/pkg/reconciler"
)

// InputFlags holds the input files of a run.
type InputFlags struct {
	Catalogs   []string
	Candidates []string
}

// AddInputFlags adds catalog and candidate file flags to a command.
func AddInputFlags(cmd *cobra.Command) *InputFlags {
	flags := &InputFlags{}

	cmd.Flags().StringSliceVarP(&flags.Catalogs, "catalog", "c", nil,
		"Source catalog file (repeatable)")
	cmd.Flags().StringSliceVarP(&flags.Candidates, "candidates", "m", nil,
		"Match candidate file, TSV or CSV (repeatable)")
	_ = cmd.MarkFlagRequired("catalog")

	return flags
}

// Files returns the run inputs named by the flags.
func (f *InputFlags) Files() reconciler.Files {
	return reconciler.Files{Catalogs: f.Catalogs, Candidates: f.Candidates}
}

// RuleFlags holds flags that override the configured admission rule.
type RuleFlags struct {
	Threshold   float64
	Admission   string
	Cardinality string
	Workers     int
	Exclude     []string
}

// AddRuleFlags adds admission rule flags to a command.
func AddRuleFlags(cmd *cobra.Command) *RuleFlags {
	flags := &RuleFlags{}

	cmd.Flags().Float64VarP(&flags.Threshold, "threshold", "t", 0,
		"Minimum similarity score for a candidate (0..1)")
	cmd.Flags().StringVar(&flags.Admission, "admission", "",
		"Admission mode: score, label, both, either")
	cmd.Flags().StringVar(&flags.Cardinality, "cardinality", "",
		"Candidate filter: none, many-to-one, one-to-many, one-to-one")
	cmd.Flags().IntVarP(&flags.Workers, "workers", "w", 0,
		"Concurrent merge workers")
	cmd.Flags().StringSliceVar(&flags.Exclude, "exclude", nil,
		"Skip catalog entities whose IRI matches a glob (repeatable)")

	return flags
}

// Options converts the flags that were set on cmd into reconciler options.
// Unset flags leave the configured values alone.
func (f *RuleFlags) Options(cmd *cobra.Command) ([]reconciler.Option, error) {
	var opts []reconciler.Option
	changed := cmd.Flags().Changed

	if changed("threshold") {
		opts = append(opts, reconciler.WithThreshold(f.Threshold))
	}
	if changed("admission") {
		mode, err := matchgraph.ParseAdmission(f.Admission)
		if err != nil {
			return nil, err
		}
		opts = append(opts, reconciler.WithAdmission(mode))
	}
	if changed("cardinality") {
		c, err := candidates.ParseCardinality(f.Cardinality)
		if err != nil {
			return nil, err
		}
		opts = append(opts, reconciler.WithCardinality(c))
	}
	if changed("workers") {
		opts = append(opts, reconciler.WithWorkers(f.Workers))
	}
	if len(f.Exclude) > 0 {
		opts = append(opts, reconciler.WithExclude(f.Exclude...))
	}
	return opts, nil
}

// Formatter is the part of the application that knows the requested format.
type Formatter interface {
	OutputFormat() string
}

// OutputFormat resolves the output format: an explicit format is validated,
// otherwise tables go to terminals and JSON to pipes.
func OutputFormat(app Formatter) (output.Format, error) {
	return output.ParseFormat(string(output.DetectFormat(app.OutputFormat())))
}
