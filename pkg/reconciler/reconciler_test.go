package reconciler_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ontomerge/pkg/candidates"
	"github.com/agentstation/ontomerge/pkg/catalog"
	"github.com/agentstation/ontomerge/pkg/diagnostics"
	"github.com/agentstation/ontomerge/pkg/differ"
	"github.com/agentstation/ontomerge/pkg/errors"
	"github.com/agentstation/ontomerge/pkg/logging"
	"github.com/agentstation/ontomerge/pkg/matchgraph"
	"github.com/agentstation/ontomerge/pkg/provenance"
	"github.com/agentstation/ontomerge/pkg/reconciler"
	"github.com/agentstation/ontomerge/pkg/schema"
	"github.com/agentstation/ontomerge/pkg/types"
)

var fixtures = reconciler.Files{
	Catalogs:   []string{filepath.Join("testdata", "osn.yaml"), filepath.Join("testdata", "mp.yaml")},
	Candidates: []string{filepath.Join("testdata", "candidates.tsv")},
}

func load(t *testing.T, opts ...reconciler.Option) (reconciler.Reconciler, *reconciler.Input) {
	t.Helper()
	logging.DisableLoggingForTest(t)

	r, err := reconciler.New(opts...)
	require.NoError(t, err)
	in, err := r.Load(context.Background(), fixtures)
	require.NoError(t, err)
	return r, in
}

func run(t *testing.T, opts ...reconciler.Option) *reconciler.Result {
	t.Helper()
	r, in := load(t, opts...)
	result, err := r.Run(context.Background(), in)
	require.NoError(t, err)
	return result
}

func TestLoad(t *testing.T) {
	_, in := load(t)

	assert.Equal(t, 12, in.Catalog.Len())
	assert.Equal(t, []types.SourceTag{"MP", "OSN"}, in.Catalog.Sources())
	assert.Len(t, in.Candidates, 6)
	assert.Equal(t, candidates.Stats{Rows: 7, Read: 6, Malformed: 1}, in.ReadStats)
	require.Len(t, in.Diagnostics, 1)
	assert.Equal(t, diagnostics.CodeMalformedRecord, in.Diagnostics[0].Code)
}

func TestLoadErrors(t *testing.T) {
	logging.DisableLoggingForTest(t)
	r, err := reconciler.New()
	require.NoError(t, err)

	_, err = r.Load(context.Background(), reconciler.Files{})
	assert.True(t, errors.IsValidationError(err))

	_, err = r.Load(context.Background(), reconciler.Files{Catalogs: []string{"testdata/missing.yaml"}})
	require.Error(t, err)

	_, err = r.Load(context.Background(), reconciler.Files{
		Catalogs:   fixtures.Catalogs,
		Candidates: []string{"testdata/missing.tsv"},
	})
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	result := run(t, reconciler.WithRunID("run-1"))
	doc := result.Document

	assert.Equal(t, "run-1", doc.RunID)
	assert.Equal(t, []string{"Human", "Organization", "knows"}, doc.Names())
	assert.Equal(t, reconciler.ResultStatistics{
		Entities:   12,
		Candidates: 6,
		Graph: matchgraph.Stats{
			Seen: 6, Admitted: 3, Rejected: 2, Referential: 1,
		},
		Classes:       3,
		Clustered:     6,
		Merged:        3,
		PassedThrough: 6,
		Diagnostics:   2,
		TotalTimeMs:   result.Metadata.Stats.TotalTimeMs,
	}, result.Metadata.Stats)

	human, ok := doc.Find("merged:Human")
	require.True(t, ok)
	assert.Equal(t, []string{"Agent"}, human.Super)
	assert.Equal(t, map[types.SourceTag][]string{
		"MP":  {"A human being"},
		"OSN": {"A user of the network"},
	}, human.Comments())
	assert.Equal(t, map[types.SourceTag][]string{
		"MP":  {"http://example.org/mp#Human"},
		"OSN": {"http://example.org/osn#Person"},
	}, human.Alignment())

	knows, ok := doc.Find("merged:knows")
	require.True(t, ok)
	assert.Equal(t, types.KindObjectRelation, knows.Kind)
	assert.Equal(t, []string{"Human"}, knows.Domain)
	assert.Equal(t, []string{"Human"}, knows.Range)

	age, ok := doc.Find("source:http://example.org/osn#age")
	require.True(t, ok)
	assert.Equal(t, []string{"Human"}, age.Domain)
	assert.Equal(t, []string{"integer"}, age.Range)

	codes := []diagnostics.Code{}
	for _, d := range result.Diagnostics {
		codes = append(codes, d.Code)
	}
	assert.Equal(t, []diagnostics.Code{diagnostics.CodeMalformedRecord, diagnostics.CodeReferentialError}, codes)
	assert.Nil(t, result.Changeset, "no baseline configured")
	assert.Contains(t, result.Summary(), "Merged 3 classes from 2 sources")
}

func TestRunKeepsEveryEntity(t *testing.T) {
	r, in := load(t)
	result, err := r.Run(context.Background(), in)
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, e := range result.Document.Merged() {
		for _, iri := range e.Members {
			seen[iri]++
		}
	}
	for _, e := range result.Document.PassedThrough() {
		seen[e.IRI]++
	}
	for _, iri := range in.Catalog.IRIs() {
		assert.Equal(t, 1, seen[iri], "%s must appear exactly once", iri)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	r, in := load(t)
	ctx := context.Background()

	first, err := r.Run(ctx, in)
	require.NoError(t, err)
	second, err := r.Run(ctx, in)
	require.NoError(t, err)

	cs := differ.New().Documents(first.Document, second.Document)
	assert.True(t, cs.IsEmpty(), cs.String())
	assert.Equal(t, first.Diagnostics, second.Diagnostics)
	assert.Equal(t, first.Provenance, second.Provenance)
}

func TestRunAgainstBaseline(t *testing.T) {
	baseline := run(t).Document

	same := run(t, reconciler.WithBaseline(baseline))
	require.NotNil(t, same.Changeset)
	assert.False(t, same.HasChanges())
	assert.Contains(t, same.Summary(), "No changes against baseline")

	stricter := run(t, reconciler.WithBaseline(baseline), reconciler.WithThreshold(0.8))
	require.True(t, stricter.HasChanges())
	assert.Equal(t, 1, stricter.Changeset.Summary.EntitiesRemoved, "Organization is no longer merged")
	assert.Equal(t, 2, stricter.Changeset.Summary.EntitiesAdded, "its members pass through")
}

func TestMonotonicThreshold(t *testing.T) {
	thresholds := []float64{0.95, 0.9, 0.8, 0.6, 0.5, 0.3}

	var previous *reconciler.Result
	for _, threshold := range thresholds {
		current := run(t, reconciler.WithRule(matchgraph.Rule{Mode: matchgraph.AdmitScore, Threshold: threshold}))
		if previous != nil {
			for _, class := range previous.Partition.Classes {
				wider, ok := current.Partition.ClassOf(class.Members[0])
				require.True(t, ok, "threshold %v", threshold)
				for _, iri := range class.Members {
					assert.True(t, wider.Contains(iri), "threshold %v splits %v", threshold, class.Members)
				}
			}
		}
		previous = current
	}
	assert.Equal(t, 5, previous.Partition.Len())
}

func TestCardinality(t *testing.T) {
	r, in := load(t)
	in.Candidates = append(in.Candidates, matchgraph.Candidate{
		EntityA:  "http://example.org/osn#Person",
		EntityB:  "http://example.org/mp#Student",
		Score:    matchgraph.Score(0.8),
		Accepted: true,
	})

	result, err := r.Run(context.Background(), in)
	require.NoError(t, err)
	human, _ := result.Partition.ClassOf("http://example.org/mp#Human")
	assert.Equal(t, 3, human.Size())

	r, err = reconciler.New(reconciler.WithCardinality(candidates.CardinalityOneToOne))
	require.NoError(t, err)
	result, err = r.Run(context.Background(), in)
	require.NoError(t, err)
	human, _ = result.Partition.ClassOf("http://example.org/mp#Human")
	assert.Equal(t, []string{"http://example.org/mp#Human", "http://example.org/osn#Person"}, human.Members)
	assert.Equal(t, 1, result.Metadata.Stats.Filtered, "Person keeps Human over Student")
}

func TestCardinalityIgnoresDanglingCandidates(t *testing.T) {
	_, in := load(t)
	in.Candidates = append(in.Candidates,
		matchgraph.Candidate{
			EntityA:  "http://example.org/osn#Agent",
			EntityB:  "http://example.org/mp#Phantom",
			Score:    matchgraph.Score(0.99),
			Accepted: true,
		},
		matchgraph.Candidate{
			EntityA:  "http://example.org/osn#Agent",
			EntityB:  "http://example.org/mp#Student",
			Score:    matchgraph.Score(0.9),
			Accepted: true,
		},
	)

	r, err := reconciler.New(reconciler.WithCardinality(candidates.CardinalityManyToOne))
	require.NoError(t, err)
	result, err := r.Run(context.Background(), in)
	require.NoError(t, err)

	agent, ok := result.Partition.ClassOf("http://example.org/osn#Agent")
	require.True(t, ok, "Agent keeps its best match that exists")
	assert.Equal(t, []string{"http://example.org/mp#Student", "http://example.org/osn#Agent"}, agent.Members)
	assert.Zero(t, result.Metadata.Stats.Filtered)
	assert.Equal(t, 2, result.Metadata.Stats.Graph.Referential)

	var referential int
	for _, d := range result.Diagnostics {
		if d.Code == diagnostics.CodeReferentialError {
			referential++
		}
	}
	assert.Equal(t, 2, referential)
}

func TestPassThroughNamesAreReserved(t *testing.T) {
	logging.DisableLoggingForTest(t)

	cat := catalog.New()
	for _, e := range []catalog.Entity{
		{IRI: "http://example.org/a#Person", Source: "A", Kind: types.KindClass},
		{IRI: "http://example.org/b#Human", Source: "B", Kind: types.KindClass},
		{IRI: "http://example.org/c#Person", Source: "C", Kind: types.KindClass},
		{IRI: "http://example.org/c#Student", Source: "C", Kind: types.KindClass, SuperIRIs: []string{"http://example.org/c#Person"}},
	} {
		require.NoError(t, cat.AddSource(e.Source, ""))
		require.NoError(t, cat.Add(e))
	}
	in := &reconciler.Input{
		Catalog: cat,
		Candidates: []matchgraph.Candidate{{
			EntityA:  "http://example.org/a#Person",
			EntityB:  "http://example.org/b#Human",
			Score:    matchgraph.Score(0.9),
			Accepted: true,
		}},
	}

	r, err := reconciler.New()
	require.NoError(t, err)
	result, err := r.Run(context.Background(), in)
	require.NoError(t, err)
	doc := result.Document

	assert.Equal(t, []string{"Person_A"}, result.Resolution.Names())
	_, ok := doc.Find("merged:Person_A")
	assert.True(t, ok)
	_, ok = doc.Find("merged:Person")
	assert.False(t, ok, "Person belongs to the unclustered c#Person")

	student, ok := doc.Find("source:http://example.org/c#Student")
	require.True(t, ok)
	assert.Equal(t, []string{"Person"}, student.Super)

	var codes []diagnostics.Code
	for _, d := range result.Diagnostics {
		codes = append(codes, d.Code)
	}
	assert.Equal(t, []diagnostics.Code{diagnostics.CodeNameCollisionResolved}, codes)
}

func TestProvenance(t *testing.T) {
	result := run(t)

	assert.True(t, result.Provenance["Human"].Contains(provenance.Fact{
		Relation: provenance.RelationSubClassOf, Name: "Agent", Source: "OSN",
	}))
	assert.True(t, result.Provenance["http://example.org/mp#Student"].Contains(provenance.Fact{
		Relation: provenance.RelationSubClassOf, Name: "Human", Source: "MP",
	}))

	untracked := run(t, reconciler.WithProvenance(false))
	assert.Empty(t, untracked.Provenance)
	assert.Equal(t, result.Document.Entities, untracked.Document.Entities, "the ledger does not change the output")
}

func TestWithoutPassThrough(t *testing.T) {
	result := run(t, reconciler.WithPassThrough(false))
	assert.Empty(t, result.Document.PassedThrough())
	assert.Len(t, result.Document.Merged(), 3)
}

func TestCluster(t *testing.T) {
	r, in := load(t)
	result, err := r.Cluster(context.Background(), in)
	require.NoError(t, err)

	assert.Nil(t, result.Document)
	assert.Empty(t, result.Merged)
	assert.Equal(t, 3, result.Partition.Len())
	assert.Equal(t, []string{"Human", "Organization", "knows"}, result.Resolution.Names())
}

func TestValidate(t *testing.T) {
	r, in := load(t)
	v, err := r.Validate(context.Background(), in)
	require.NoError(t, err)

	assert.False(t, v.IsValid())
	assert.Len(t, v.Errors, 2)
	assert.Empty(t, v.Warnings)
	assert.Equal(t, "Validation failed with 2 errors", v.String())

	in.Diagnostics = nil
	in.Candidates = in.Candidates[:3]
	v, err = r.Validate(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, v.IsValid())
	assert.Equal(t, "Validation passed", v.String())
}

func TestRunCanceled(t *testing.T) {
	r, in := load(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := r.Run(ctx, in)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsCanceled(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRejectsNilInput(t *testing.T) {
	r, err := reconciler.New()
	require.NoError(t, err)
	_, err = r.Run(context.Background(), nil)
	assert.True(t, errors.IsValidationError(err))
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  reconciler.Option
	}{
		{"zero workers", reconciler.WithWorkers(0)},
		{"unknown cardinality", reconciler.WithCardinality("two-to-two")},
		{"unknown admission", reconciler.WithAdmission("maybe")},
		{"nil authorities", reconciler.WithAuthorities(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reconciler.New(tt.opt)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	result := run(t)
	path := filepath.Join(t.TempDir(), "merged.yaml")
	require.NoError(t, schema.WriteFile(path, result.Document))

	got, err := schema.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, differ.New().Documents(result.Document, got).IsEmpty())
}
