package merger_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ontomerge/pkg/catalog"
	"github.com/agentstation/ontomerge/pkg/cluster"
	"github.com/agentstation/ontomerge/pkg/diagnostics"
	"github.com/agentstation/ontomerge/pkg/errors"
	"github.com/agentstation/ontomerge/pkg/logging"
	"github.com/agentstation/ontomerge/pkg/matchgraph"
	"github.com/agentstation/ontomerge/pkg/merger"
	"github.com/agentstation/ontomerge/pkg/provenance"
	"github.com/agentstation/ontomerge/pkg/resolver"
	"github.com/agentstation/ontomerge/pkg/types"
)

func newCatalog(t *testing.T, entities ...catalog.Entity) *catalog.Catalog {
	t.Helper()
	c := catalog.New()
	for _, e := range entities {
		require.NoError(t, c.AddSource(e.Source, ""))
		require.NoError(t, c.Add(e))
	}
	return c
}

func class(iri, tag string, super ...string) catalog.Entity {
	return catalog.Entity{IRI: iri, Source: types.SourceTag(tag), Kind: types.KindClass, SuperIRIs: super}
}

func relation(iri, tag string, kind types.Kind, domain, rng []string) catalog.Entity {
	return catalog.Entity{IRI: iri, Source: types.SourceTag(tag), Kind: kind, DomainIRIs: domain, RangeIRIs: rng}
}

func commented(e catalog.Entity, comments ...string) catalog.Entity {
	e.Comments = comments
	return e
}

type run struct {
	res      *resolver.Result
	engine   *merger.Engine
	entities []*merger.Entity
	diags    *diagnostics.Collector
}

func (r run) byName(t *testing.T, name string) *merger.Entity {
	t.Helper()
	for _, e := range r.entities {
		if e.CanonicalName == name {
			return e
		}
	}
	require.Failf(t, "entity not found", "no merged entity named %q", name)
	return nil
}

func (r run) codes() []diagnostics.Code {
	var out []diagnostics.Code
	for _, d := range r.diags.Diagnostics() {
		out = append(out, d.Code)
	}
	return out
}

func merge(t *testing.T, c *catalog.Catalog, p *cluster.Partition, opts ...merger.Option) run {
	t.Helper()
	logging.DisableLoggingForTest(t)
	ctx := context.Background()

	diags := diagnostics.NewCollector()
	r, err := resolver.New(c, resolver.WithDiagnostics(diags))
	require.NoError(t, err)
	res, err := r.Resolve(ctx, p)
	require.NoError(t, err)

	engine, err := merger.New(c, append([]merger.Option{merger.WithDiagnostics(diags)}, opts...)...)
	require.NoError(t, err)
	entities, err := engine.Merge(ctx, res)
	require.NoError(t, err)
	return run{res: res, engine: engine, entities: entities, diags: diags}
}

// Only the pair above the threshold clusters, and each side
// learns the other as an alignment partner.
func TestAlignmentPartners(t *testing.T) {
	c := newCatalog(t,
		class("http://s1.org#X", "S1"),
		class("http://s2.org#Y", "S2"),
		class("http://s3.org#Z", "S3"),
	)
	candidates := []matchgraph.Candidate{
		{EntityA: "http://s1.org#X", EntityB: "http://s2.org#Y", Score: matchgraph.Score(0.9)},
		{EntityA: "http://s2.org#Y", EntityB: "http://s1.org#X", Score: matchgraph.Score(0.85)},
		{EntityA: "http://s1.org#X", EntityB: "http://s3.org#Z", Score: matchgraph.Score(0.5)},
	}
	rule := matchgraph.Rule{Mode: matchgraph.AdmitScore, Threshold: 0.8}
	g, _ := matchgraph.Build(context.Background(), candidates, rule, c, diagnostics.NewCollector())
	p := cluster.Compute(context.Background(), g)

	require.Equal(t, 1, p.Len())
	assert.False(t, p.Clustered("http://s3.org#Z"))

	out := merge(t, c, p)
	require.Len(t, out.entities, 1)
	x := out.entities[0]
	assert.Equal(t, "X", x.CanonicalName)
	assert.Equal(t, map[types.SourceTag][]string{
		"S1": {"http://s1.org#X"},
		"S2": {"http://s2.org#Y"},
	}, x.AlignmentPartnersBySource)

	partners := x.PartnersOf("http://s1.org#X")
	assert.Equal(t, []string{"http://s2.org#Y"}, partners["S2"])
	assert.NotContains(t, partners, types.SourceTag("S1"), "a member is not its own partner")
	assert.Nil(t, x.PartnersOf("http://s3.org#Z"))
}

// The ObjectRelation wins; its signature is kept and the Class
// member's hierarchy is discarded.
func TestMixedKindKeepsCanonicalStructure(t *testing.T) {
	c := newCatalog(t,
		class("http://a.org#Agent", "S1"),
		class("http://a.org#Follows", "S1", "http://a.org#Agent"),
		commented(relation("http://b.org#follows", "S2", types.KindObjectRelation,
			[]string{"http://b.org#User"}, []string{"http://b.org#User"}), "who follows whom"),
		class("http://b.org#User", "S2"),
	)
	out := merge(t, c, cluster.FromClasses([]string{"http://a.org#Follows", "http://b.org#follows"}))

	follows := out.byName(t, "follows")
	assert.Equal(t, types.KindObjectRelation, follows.Kind)
	assert.Equal(t, []string{"User"}, follows.DomainNames)
	assert.Equal(t, []string{"User"}, follows.RangeNames)
	assert.Empty(t, follows.SuperNames, "hierarchy of the discarded Class member is dropped")
	assert.False(t, follows.Provenance.Contains(provenance.Fact{
		Relation: provenance.RelationSubClassOf, Name: "Agent", Source: "S1",
	}))
	assert.True(t, follows.Provenance.Contains(provenance.Fact{
		Relation: provenance.RelationDomain, Name: "User", Source: "S2",
	}))
	assert.Equal(t, map[types.SourceTag][]string{"S2": {"who follows whom"}}, follows.CommentsBySource)
	assert.Len(t, follows.AlignmentPartnersBySource, 2, "identity of the discarded member is kept")

	ds := out.diags.Diagnostics()
	require.Len(t, ds, 1)
	assert.Equal(t, diagnostics.CodeMixedKindConflict, ds[0].Code)
	assert.Equal(t, []string{"http://a.org#Follows"}, ds[0].Related)
}

// The first member per tag wins, members ordered by IRI.
func TestAnnotationFirstOccurrenceWins(t *testing.T) {
	c := newCatalog(t,
		commented(class("http://s1.org#A", "S1"), "a"),
		commented(class("http://s1.org#B", "S1"), "b"),
		commented(class("http://s2.org#C", "S2"), "c", "c", "d"),
	)
	out := merge(t, c, cluster.FromClasses([]string{"http://s1.org#B", "http://s1.org#A", "http://s2.org#C"}))

	e := out.byName(t, "A")
	assert.Equal(t, []string{"a"}, e.CommentsBySource["S1"])
	assert.Equal(t, []string{"c", "d"}, e.CommentsBySource["S2"], "duplicates within a member collapse")
}

func TestAnnotationFirstMemberClaimsItsSource(t *testing.T) {
	c := newCatalog(t,
		class("http://s1.org#A", "S1"),
		commented(class("http://s1.org#B", "S1"), "b"),
		class("http://s2.org#C", "S2"),
		commented(class("http://s3.org#D", "S3"), "d"),
	)
	out := merge(t, c, cluster.FromClasses([]string{"http://s1.org#A", "http://s1.org#B", "http://s2.org#C", "http://s3.org#D"}))

	e := out.byName(t, "A")
	assert.NotContains(t, e.CommentsBySource, types.SourceTag("S1"), "A comes first for S1 and has no comments")
	assert.NotContains(t, e.CommentsBySource, types.SourceTag("S2"))
	assert.Equal(t, map[types.SourceTag][]string{"S3": {"d"}}, e.CommentsBySource)
}

// Members listing each other as superclass collapse into a
// self edge, which is dropped.
func TestSelfReferenceDropped(t *testing.T) {
	c := newCatalog(t,
		class("http://s1.org#Agent", "S1"),
		class("http://s1.org#Person", "S1", "http://s2.org#Human", "http://s1.org#Agent"),
		class("http://s2.org#Human", "S2", "http://s1.org#Person"),
	)
	out := merge(t, c, cluster.FromClasses([]string{"http://s1.org#Person", "http://s2.org#Human"}))

	person := out.byName(t, "Person")
	assert.Equal(t, []string{"Agent"}, person.SuperNames)
	assert.Equal(t, provenance.Facts{
		{Relation: provenance.RelationSubClassOf, Name: "Agent", Source: "S1"},
	}, person.Provenance)

	ds := out.diags.Diagnostics()
	require.Len(t, ds, 1)
	assert.Equal(t, diagnostics.CodeSelfReferenceDropped, ds[0].Code)
	assert.Equal(t, diagnostics.SeverityNote, ds[0].Severity)
	assert.Equal(t, "Person", ds[0].Class)
	assert.Equal(t, []string{"http://s1.org#Person", "http://s2.org#Human"}, ds[0].Related)
}

func TestHierarchyMapsThroughPartition(t *testing.T) {
	c := newCatalog(t,
		class("http://s1.org#Agent", "S1"),
		class("http://s2.org#Actor", "S2"),
		class("http://s1.org#Person", "S1", "http://s1.org#Agent", "http://www.w3.org/2002/07/owl#Thing"),
		class("http://s2.org#Human", "S2", "http://s2.org#Actor", "http://s2.org#Mammal"),
	)
	out := merge(t, c, cluster.FromClasses(
		[]string{"http://s1.org#Person", "http://s2.org#Human"},
		[]string{"http://s1.org#Agent", "http://s2.org#Actor"},
	))

	person := out.byName(t, "Person")
	assert.Equal(t, []string{"Agent"}, person.SuperNames, "both supers resolve to one canonical name")
	assert.Equal(t, provenance.Facts{
		{Relation: provenance.RelationSubClassOf, Name: "Agent", Source: "S1"},
		{Relation: provenance.RelationSubClassOf, Name: "Agent", Source: "S2"},
	}, person.Provenance)

	ds := out.diags.Diagnostics()
	require.Len(t, ds, 1, "owl:Thing is skipped silently")
	assert.Equal(t, diagnostics.CodeReferentialError, ds[0].Code)
	assert.Equal(t, diagnostics.StageHierarchy, ds[0].Stage)
	assert.Equal(t, "http://s2.org#Human", ds[0].IRI)
	assert.Equal(t, []string{"http://s2.org#Mammal"}, ds[0].Related)
	assert.True(t, errors.IsReferential(ds[0].Err()))
}

func TestSignaturePassesDatatypesThrough(t *testing.T) {
	c := newCatalog(t,
		class("http://s1.org#Person", "S1"),
		relation("http://s1.org#age", "S1", types.KindDataRelation,
			[]string{"http://s1.org#Person"}, []string{"http://www.w3.org/2001/XMLSchema#integer"}),
		relation("http://s2.org#hasAge", "S2", types.KindDataRelation,
			[]string{"http://s2.org#Ghost"}, []string{"http://www.w3.org/2001/XMLSchema#nonNegativeInteger"}),
	)
	out := merge(t, c, cluster.FromClasses([]string{"http://s1.org#age", "http://s2.org#hasAge"}))

	age := out.byName(t, "age")
	assert.Equal(t, types.KindDataRelation, age.Kind)
	assert.Equal(t, []string{"Person"}, age.DomainNames, "unclustered IRIs map to their local name")
	assert.Equal(t, []string{"integer", "nonNegativeInteger"}, age.RangeNames)
	assert.True(t, age.Provenance.Contains(provenance.Fact{
		Relation: provenance.RelationRange, Name: "nonNegativeInteger", Source: "S2",
	}))

	assert.Equal(t, []diagnostics.Code{diagnostics.CodeReferentialError}, out.codes())
	assert.Equal(t, diagnostics.StageSignature, out.diags.Diagnostics()[0].Stage)
}

func TestSweepsAreIdempotent(t *testing.T) {
	c := newCatalog(t,
		commented(class("http://s1.org#Agent", "S1"), "doer"),
		commented(class("http://s1.org#Person", "S1", "http://s1.org#Agent"), "p1"),
		commented(class("http://s2.org#Human", "S2", "http://s2.org#Being"), "h1", "h2"),
		class("http://s2.org#Being", "S2"),
		relation("http://s1.org#knows", "S1", types.KindObjectRelation,
			[]string{"http://s1.org#Person"}, []string{"http://s2.org#Human"}),
		relation("http://s2.org#acquainted", "S2", types.KindObjectRelation,
			[]string{"http://s2.org#Human"}, []string{"http://s2.org#Being"}),
	)
	out := merge(t, c, cluster.FromClasses(
		[]string{"http://s1.org#Person", "http://s2.org#Human"},
		[]string{"http://s1.org#knows", "http://s2.org#acquainted"},
		[]string{"http://s1.org#Agent", "http://s2.org#Being"},
	))

	before := make([]*merger.Entity, len(out.entities))
	for i, e := range out.entities {
		before[i] = e.Clone()
	}
	for _, pass := range merger.Passes() {
		require.NoError(t, out.engine.Sweep(context.Background(), pass, out.res, out.entities))
	}
	assert.Equal(t, before, out.entities)
}

func TestMergeIsDeterministicAcrossWorkers(t *testing.T) {
	var entities []catalog.Entity
	var groups [][]string
	for i := range 40 {
		a := fmt.Sprintf("http://s1.org#C%02d", i)
		b := fmt.Sprintf("http://s2.org#D%02d", i)
		var super []string
		if i > 0 {
			super = []string{fmt.Sprintf("http://s2.org#D%02d", i-1)}
		}
		entities = append(entities,
			commented(class(a, "S1", super...), fmt.Sprintf("c%d", i)),
			commented(class(b, "S2", "http://s2.org#Missing"), fmt.Sprintf("d%d", i)),
		)
		groups = append(groups, []string{a, b})
	}
	c := newCatalog(t, entities...)

	serial := merge(t, c, cluster.FromClasses(groups...), merger.WithWorkers(1))
	parallel := merge(t, c, cluster.FromClasses(groups...), merger.WithWorkers(16))

	assert.Equal(t, serial.entities, parallel.entities)
	assert.Equal(t, serial.diags.Diagnostics(), parallel.diags.Diagnostics())
	assert.Equal(t, []string{"C00"}, serial.byName(t, "C01").SuperNames)
	assert.Equal(t, 40, serial.diags.Count(diagnostics.CodeReferentialError))
}

func TestMergeCanceled(t *testing.T) {
	logging.DisableLoggingForTest(t)
	c := newCatalog(t, class("http://s1.org#A", "S1"), class("http://s2.org#B", "S2"))

	r, err := resolver.New(c)
	require.NoError(t, err)
	res, err := r.Resolve(context.Background(), cluster.FromClasses([]string{"http://s1.org#A", "http://s2.org#B"}))
	require.NoError(t, err)

	engine, err := merger.New(c)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	entities, err := engine.Merge(ctx, res)
	require.Error(t, err)
	assert.True(t, errors.IsCanceled(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, entities, "partial results are not surfaced")
}

func TestMergeRecordsLedger(t *testing.T) {
	c := newCatalog(t,
		class("http://s1.org#Agent", "S1"),
		class("http://s1.org#Person", "S1", "http://s1.org#Agent"),
		class("http://s2.org#Human", "S2"),
	)
	ledger := provenance.NewLedger(true)
	merge(t, c, cluster.FromClasses([]string{"http://s1.org#Person", "http://s2.org#Human"}), merger.WithLedger(ledger))

	assert.Equal(t, []string{"Person"}, ledger.Entities())
	assert.Equal(t, []types.SourceTag{"S1", "S2"}, ledger.Sources("Person"))
	assert.Equal(t, provenance.Facts{
		{Relation: provenance.RelationSubClassOf, Name: "Agent", Source: "S1"},
	}, ledger.FindByEntity("Person"))
}

func TestDroppedClassesAreNotMerged(t *testing.T) {
	c := newCatalog(t, class("http://s1.org#A", "S1"), class("http://s2.org#B", "S2"))
	out := merge(t, c, cluster.FromClasses(
		[]string{"http://s1.org#A", "http://s2.org#B"},
		[]string{"http://s9.org#Ghost", "http://s9.org#Phantom"},
	))

	require.Len(t, out.entities, 1)
	assert.Equal(t, "A", out.entities[0].CanonicalName)
	assert.Equal(t, []string{"http://s1.org#A", "http://s2.org#B"}, out.entities[0].Members)
	assert.Equal(t, 1, out.diags.Count(diagnostics.CodeEmptyClassDropped))
}

func TestNewValidation(t *testing.T) {
	_, err := merger.New(nil)
	assert.True(t, errors.IsValidationError(err))

	c := catalog.New()
	_, err = merger.New(c, merger.WithWorkers(0))
	assert.True(t, errors.IsValidationError(err))
	_, err = merger.New(c, merger.WithWorkers(100000))
	assert.True(t, errors.IsValidationError(err))

	e, err := merger.New(c, merger.WithWorkers(3))
	require.NoError(t, err)
	assert.Equal(t, 3, e.Workers())
}

func TestSweepRejectsMisalignedEntities(t *testing.T) {
	c := newCatalog(t, class("http://s1.org#A", "S1"), class("http://s2.org#B", "S2"))
	out := merge(t, c, cluster.FromClasses([]string{"http://s1.org#A", "http://s2.org#B"}))

	err := out.engine.Sweep(context.Background(), merger.PassHierarchy, out.res, nil)
	assert.True(t, errors.IsValidationError(err))
}

func TestPassThroughKeepsUnmatchedEntities(t *testing.T) {
	c := newCatalog(t,
		class("http://s1.org#Person", "S1", "http://s1.org#Agent"),
		class("http://s2.org#Human", "S2"),
		commented(class("http://s1.org#Agent", "S1", "http://s1.org#Agent"), "doer"),
		commented(class("http://s2.org#Student", "S2", "http://s2.org#Human", "http://s2.org#Nowhere"), "learns"),
		relation("http://s2.org#enrolled", "S2", types.KindObjectRelation,
			[]string{"http://s2.org#Student"}, []string{"http://www.w3.org/2001/XMLSchema#string"}),
	)
	out := merge(t, c, cluster.FromClasses([]string{"http://s1.org#Person", "http://s2.org#Human"}))

	singles, err := out.engine.PassThrough(context.Background(), out.res, c.IRIs())
	require.NoError(t, err)
	require.Len(t, singles, 3)

	agent, student, enrolled := singles[0], singles[1], singles[2]
	assert.Equal(t, "Agent", agent.CanonicalName)
	assert.Empty(t, agent.SuperNames, "self edge dropped")
	assert.Equal(t, map[types.SourceTag][]string{"S1": {"doer"}}, agent.CommentsBySource)

	assert.Equal(t, "enrolled", enrolled.CanonicalName)
	assert.Equal(t, []string{"Student"}, enrolled.DomainNames)
	assert.Equal(t, []string{"string"}, enrolled.RangeNames)

	assert.Equal(t, "Student", student.CanonicalName)
	assert.Equal(t, []string{"http://s2.org#Student"}, student.Members)
	assert.Equal(t, []string{"Person"}, student.SuperNames, "references to clustered IRIs use the canonical name")
	assert.Empty(t, student.AlignmentPartnersBySource)

	assert.Equal(t, 1, out.diags.Count(diagnostics.CodeReferentialError))
	assert.Equal(t, 1, out.diags.Count(diagnostics.CodeSelfReferenceDropped))
}
