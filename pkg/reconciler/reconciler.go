// Package reconciler drives a complete merge run: it loads catalogs and
// candidate files, builds the match graph, clusters equivalent entities,
// resolves canonical names, merges every class and assembles the merged
// schema document together with its diagnostics, provenance and a changeset
// against an optional baseline.
package reconciler

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/ontomerge/pkg/authority"
	"github.com/agentstation/ontomerge/pkg/candidates"
	"github.com/agentstation/ontomerge/pkg/catalog"
	"github.com/agentstation/ontomerge/pkg/cluster"
	"github.com/agentstation/ontomerge/pkg/diagnostics"
	"github.com/agentstation/ontomerge/pkg/differ"
	"github.com/agentstation/ontomerge/pkg/errors"
	"github.com/agentstation/ontomerge/pkg/logging"
	"github.com/agentstation/ontomerge/pkg/matchgraph"
	"github.com/agentstation/ontomerge/pkg/merger"
	"github.com/agentstation/ontomerge/pkg/provenance"
	"github.com/agentstation/ontomerge/pkg/resolver"
	"github.com/agentstation/ontomerge/pkg/schema"
)

// Reconciler is the main interface for merging schemas from multiple sources.
type Reconciler interface {
	// Load reads catalog and candidate files into a run input
	Load(ctx context.Context, files Files) (*Input, error)

	// Run executes the full pipeline and returns the merged schema
	Run(ctx context.Context, in *Input) (*Result, error)

	// Cluster stops after canonical resolution; no entities are merged
	Cluster(ctx context.Context, in *Input) (*Result, error)

	// Validate checks an input without merging it
	Validate(ctx context.Context, in *Input) (*ValidationResult, error)
}

// Files names the inputs of a run.
type Files struct {
	Catalogs   []string
	Candidates []string
}

// Input is everything a run reads. It is not modified by a run, so the same
// input can be merged repeatedly.
type Input struct {
	Catalog    *catalog.Catalog
	Candidates []matchgraph.Candidate
	// Diagnostics raised while reading the inputs.
	Diagnostics []diagnostics.Diagnostic
	LoadStats   catalog.Stats
	ReadStats   candidates.Stats
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	rule        matchgraph.Rule
	cardinality candidates.Cardinality
	authorities authority.Authority
	workers     int
	exclude     []string
	builtins    bool
	passThrough bool
	tracking    bool
	baseline    *schema.Document
	runID       string
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	r := &reconciler{
		rule:        options.rule,
		cardinality: options.cardinality,
		authorities: options.authorities,
		workers:     options.workers,
		exclude:     options.exclude,
		builtins:    options.builtins,
		passThrough: options.passThrough,
		tracking:    options.tracking,
		baseline:    options.baseline,
		runID:       options.runID,
	}
	return r, nil
}

// reconcileContext holds the per-run state.
type reconcileContext struct {
	ctx    context.Context
	in     *Input
	diags  *diagnostics.Collector
	ledger provenance.Ledger
	logger *zerolog.Logger
	result *Result
}

// Load reads every catalog file, then every candidate file. Catalog
// problems and unreadable candidate headers are fatal; malformed candidate
// rows become diagnostics on the input.
func (r *reconciler) Load(ctx context.Context, files Files) (*Input, error) {
	if len(files.Catalogs) == 0 {
		return nil, &errors.ValidationError{Field: "catalogs", Message: "at least one catalog file is required"}
	}
	logger := logging.FromContext(ctx)

	var loadOpts []catalog.Option
	if len(r.exclude) > 0 {
		loadOpts = append(loadOpts, catalog.WithExclude(r.exclude...))
	}
	loadOpts = append(loadOpts, catalog.WithBuiltins(r.builtins))
	loader, err := catalog.NewLoader(loadOpts...)
	if err != nil {
		return nil, err
	}
	for _, path := range files.Catalogs {
		if err := loader.AddFile(ctx, path); err != nil {
			return nil, err
		}
	}

	diags := diagnostics.NewCollector()
	in := &Input{Catalog: loader.Catalog(), LoadStats: loader.Stats()}
	for _, path := range files.Candidates {
		cands, stats, err := candidates.ReadFile(ctx, path, candidates.WithDiagnostics(diags))
		if err != nil {
			return nil, err
		}
		in.Candidates = append(in.Candidates, cands...)
		in.ReadStats.Add(stats)
	}
	in.Diagnostics = diags.Diagnostics()

	logger.Info().
		Int("catalogs", len(files.Catalogs)).
		Int("entities", in.Catalog.Len()).
		Int("excluded", in.LoadStats.Excluded).
		Int("candidates", len(in.Candidates)).
		Int("malformed", in.ReadStats.Malformed).
		Msg("Inputs loaded")
	return in, nil
}

// Run performs a merge with a clean step-by-step flow.
func (r *reconciler) Run(ctx context.Context, in *Input) (*Result, error) {
	// Step 1: Initialize run state and validate input
	rctx, err := r.initialize(ctx, in)
	if err != nil {
		return nil, err
	}

	// Step 2: Match graph, partition and canonical names
	if err := r.resolve(rctx); err != nil {
		return nil, err
	}

	// Step 3: Merge every live class, then carry unmatched entities through
	if err := r.merge(rctx); err != nil {
		return nil, err
	}

	// Step 4: Assemble the merged schema document
	result := rctx.result
	result.Diagnostics = r.diagnostics(rctx)
	result.Document = schema.New(result.Merged, result.PassThrough, result.Diagnostics)
	result.Document.RunID = result.Metadata.RunID

	// Step 5: Compare against the baseline
	result.Changeset = r.changeset(rctx, result.Document)

	// Step 6: Provenance and statistics
	result.Provenance = rctx.ledger.Map()
	result.Metadata.Stats = r.calcStats(rctx)
	result.Finalize()

	rctx.logger.Info().
		Int("merged", result.Metadata.Stats.Merged).
		Int("passed_through", result.Metadata.Stats.PassedThrough).
		Int("diagnostics", result.Metadata.Stats.Diagnostics).
		Dur("duration", result.Metadata.Duration).
		Msg("Merge complete")
	return result, nil
}

// Cluster runs the pipeline up to canonical resolution.
func (r *reconciler) Cluster(ctx context.Context, in *Input) (*Result, error) {
	rctx, err := r.initialize(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := r.resolve(rctx); err != nil {
		return nil, err
	}

	result := rctx.result
	result.Diagnostics = r.diagnostics(rctx)
	result.Metadata.Stats = r.calcStats(rctx)
	result.Finalize()
	return result, nil
}

// initialize validates the input and creates the per-run state.
func (r *reconciler) initialize(ctx context.Context, in *Input) (*reconcileContext, error) {
	if in == nil || in.Catalog == nil {
		return nil, &errors.ValidationError{Field: "input", Message: "catalog cannot be nil"}
	}

	runID := r.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = logging.WithRun(ctx, runID)
	logger := logging.FromContext(ctx)

	result := NewResult(runID)
	result.Metadata.Sources = in.Catalog.Sources()
	result.Metadata.Rule = r.rule
	result.Metadata.Cardinality = r.cardinality
	result.Metadata.Workers = r.workers

	logger.Debug().
		Str("rule", r.rule.String()).
		Str("cardinality", string(r.cardinality)).
		Int("workers", r.workers).
		Int("sources", len(result.Metadata.Sources)).
		Msg("Starting merge run")

	return &reconcileContext{
		ctx:    ctx,
		in:     in,
		diags:  diagnostics.NewCollector(),
		ledger: provenance.NewLedger(r.tracking),
		logger: logger,
		result: result,
	}, nil
}

// resolve builds the match graph, clusters it and resolves every class.
func (r *reconciler) resolve(rctx *reconcileContext) error {
	screened, dangling := matchgraph.Screen(rctx.ctx, rctx.in.Candidates, r.rule, rctx.in.Catalog, rctx.diags)

	filtered := candidates.Filter(screened, r.rule, r.cardinality)
	if removed := len(screened) - len(filtered); removed > 0 {
		rctx.logger.Debug().
			Int("removed", removed).
			Str("cardinality", string(r.cardinality)).
			Msg("Candidates filtered")
	}
	rctx.result.Metadata.Stats.Filtered = len(screened) - len(filtered)

	graph, stats := matchgraph.Build(rctx.ctx, filtered, r.rule, rctx.in.Catalog, rctx.diags)
	stats.Seen += dangling
	stats.Referential += dangling
	rctx.result.Metadata.Stats.Graph = stats

	partition := cluster.Compute(rctx.ctx, graph)
	if err := rctx.ctx.Err(); err != nil {
		return errors.WrapCanceled("cluster", err)
	}
	rctx.result.Partition = partition

	res, err := resolver.New(rctx.in.Catalog,
		resolver.WithAuthority(r.authorities),
		resolver.WithDiagnostics(rctx.diags),
		resolver.WithReserved(unclustered(rctx.in.Catalog, partition)...),
	)
	if err != nil {
		return err
	}
	resolution, err := res.Resolve(rctx.ctx, partition)
	if err != nil {
		return err
	}
	rctx.result.Resolution = resolution
	return nil
}

// unclustered returns the local names of catalog entities outside every
// class. References to them render by local name, so no class may take one.
func unclustered(cat *catalog.Catalog, partition *cluster.Partition) []string {
	var names []string
	for _, iri := range cat.IRIs() {
		if !partition.Clustered(iri) {
			names = append(names, cat.LocalName(iri))
		}
	}
	return names
}

// merge runs the merge engine and records provenance.
func (r *reconciler) merge(rctx *reconcileContext) error {
	engine, err := merger.New(rctx.in.Catalog,
		merger.WithAuthority(r.authorities),
		merger.WithDiagnostics(rctx.diags),
		merger.WithLedger(rctx.ledger),
		merger.WithWorkers(r.workers),
	)
	if err != nil {
		return err
	}

	merged, err := engine.Merge(rctx.ctx, rctx.result.Resolution)
	if err != nil {
		return err
	}
	rctx.result.Merged = merged

	if !r.passThrough {
		return nil
	}
	singles, err := engine.PassThrough(rctx.ctx, rctx.result.Resolution, rctx.in.Catalog.IRIs())
	if err != nil {
		return err
	}
	// Pass-through entities are keyed by IRI; their local names may repeat.
	for _, ent := range singles {
		key := ent.Members[0]
		for _, f := range ent.Provenance {
			rctx.ledger.Track(key, f)
		}
		for _, tag := range ent.Sources {
			rctx.ledger.Touch(key, tag)
		}
	}
	rctx.result.PassThrough = singles
	return nil
}

// diagnostics merges the input diagnostics with those raised by the run.
func (r *reconciler) diagnostics(rctx *reconcileContext) []diagnostics.Diagnostic {
	all := slices.Concat(rctx.in.Diagnostics, rctx.diags.Diagnostics())
	diagnostics.Sort(all)
	return all
}

// changeset compares the new document against the baseline, if any.
func (r *reconciler) changeset(rctx *reconcileContext, doc *schema.Document) *differ.Changeset {
	if r.baseline == nil {
		return nil
	}
	rctx.logger.Debug().Str("baseline_run", r.baseline.RunID).Msg("Comparing against baseline document")
	return differ.New().Documents(r.baseline, doc)
}

// calcStats computes statistics from the run state.
func (r *reconciler) calcStats(rctx *reconcileContext) ResultStatistics {
	result := rctx.result
	stats := result.Metadata.Stats

	stats.Entities = rctx.in.Catalog.Len()
	stats.Candidates = len(rctx.in.Candidates)
	if result.Partition != nil {
		stats.Classes = result.Partition.Len()
		stats.Clustered = len(result.Partition.Members())
	}
	if result.Resolution != nil {
		for _, res := range result.Resolution.Resolutions {
			if res.Dropped {
				stats.Dropped++
			}
			if res.Renamed {
				stats.Renamed++
			}
			if len(res.Discarded) > 0 {
				stats.MixedKind++
			}
		}
	}
	stats.Merged = len(result.Merged)
	stats.PassedThrough = len(result.PassThrough)
	stats.Diagnostics = len(result.Diagnostics)
	return stats
}
