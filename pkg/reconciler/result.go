package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/ontomerge/pkg/candidates"
	"github.com/agentstation/ontomerge/pkg/cluster"
	"github.com/agentstation/ontomerge/pkg/diagnostics"
	"github.com/agentstation/ontomerge/pkg/differ"
	"github.com/agentstation/ontomerge/pkg/matchgraph"
	"github.com/agentstation/ontomerge/pkg/merger"
	"github.com/agentstation/ontomerge/pkg/provenance"
	"github.com/agentstation/ontomerge/pkg/resolver"
	"github.com/agentstation/ontomerge/pkg/schema"
	"github.com/agentstation/ontomerge/pkg/types"
)

// Result represents the outcome of a merge run.
type Result struct {
	// Core data
	Document    *schema.Document
	Partition   *cluster.Partition
	Resolution  *resolver.Result
	Merged      []*merger.Entity
	PassThrough []*merger.Entity
	Changeset   *differ.Changeset

	// Provenance tracking
	Provenance provenance.Map

	// Issues
	Diagnostics []diagnostics.Diagnostic

	// Metadata
	Metadata ResultMetadata
}

// ResultMetadata contains metadata about the run.
type ResultMetadata struct {
	// RunID identifies the run in logs and output
	RunID string

	// StartTime when the run started
	StartTime time.Time

	// EndTime when the run completed
	EndTime time.Time

	// Duration of the run
	Duration time.Duration

	// Sources that contributed entities
	Sources []types.SourceTag

	// Rule used to admit candidates
	Rule matchgraph.Rule

	// Cardinality filter applied to admitted candidates
	Cardinality candidates.Cardinality

	// Workers bounding the merge sweeps
	Workers int

	// Statistics about the run
	Stats ResultStatistics
}

// ResultStatistics contains statistics about the run.
type ResultStatistics struct {
	Entities      int              `json:"entities" yaml:"entities"`
	Candidates    int              `json:"candidates" yaml:"candidates"`
	Filtered      int              `json:"filtered" yaml:"filtered"`
	Graph         matchgraph.Stats `json:"graph" yaml:"graph"`
	Classes       int              `json:"classes" yaml:"classes"`
	Clustered     int              `json:"clustered" yaml:"clustered"`
	Merged        int              `json:"merged" yaml:"merged"`
	Dropped       int              `json:"dropped" yaml:"dropped"`
	Renamed       int              `json:"renamed" yaml:"renamed"`
	MixedKind     int              `json:"mixed_kind" yaml:"mixed_kind"`
	PassedThrough int              `json:"passed_through" yaml:"passed_through"`
	Diagnostics   int              `json:"diagnostics" yaml:"diagnostics"`
	TotalTimeMs   int64            `json:"total_time_ms" yaml:"total_time_ms"`
}

// HasChanges returns true if the run differs from the baseline.
func (r *Result) HasChanges() bool {
	return r.Changeset != nil && r.Changeset.HasChanges()
}

// HasDiagnostics returns true if the run raised any diagnostics.
func (r *Result) HasDiagnostics() bool {
	return len(r.Diagnostics) > 0
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	s := r.Metadata.Stats
	summary := fmt.Sprintf("Merged %d classes from %d sources; %d entities passed through; %d diagnostics",
		s.Merged, len(r.Metadata.Sources), s.PassedThrough, s.Diagnostics)

	switch {
	case r.Changeset == nil:
		return summary
	case r.HasChanges():
		return fmt.Sprintf("%s. %s", summary, r.Changeset.String())
	default:
		return summary + ". No changes against baseline."
	}
}

// NewResult creates a new result with defaults.
func NewResult(runID string) *Result {
	return &Result{
		Provenance:  make(provenance.Map),
		Diagnostics: []diagnostics.Diagnostic{},
		Metadata: ResultMetadata{
			RunID:     runID,
			StartTime: time.Now(),
			Sources:   []types.SourceTag{},
		},
	}
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
	r.Metadata.Stats.TotalTimeMs = r.Metadata.Duration.Milliseconds()
}
