package schema_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ontomerge/pkg/diagnostics"
	"github.com/agentstation/ontomerge/pkg/errors"
	"github.com/agentstation/ontomerge/pkg/merger"
	"github.com/agentstation/ontomerge/pkg/provenance"
	"github.com/agentstation/ontomerge/pkg/schema"
	"github.com/agentstation/ontomerge/pkg/types"
)

func sample() *schema.Document {
	person := &merger.Entity{
		CanonicalName: "Person",
		Kind:          types.KindClass,
		SuperNames:    []string{"Agent"},
		CommentsBySource: map[types.SourceTag][]string{
			"OSN": {"A human user"},
		},
		AlignmentPartnersBySource: map[types.SourceTag][]string{
			"OSN": {"http://example.org/osn#Person"},
			"MP":  {"http://example.org/mp#Human"},
		},
		Provenance: provenance.Facts{
			{Relation: provenance.RelationSubClassOf, Name: "Agent", Source: "OSN"},
		},
		Members: []string{"http://example.org/mp#Human", "http://example.org/osn#Person"},
		Sources: []types.SourceTag{"MP", "OSN"},
	}
	follows := &merger.Entity{
		CanonicalName: "follows",
		Kind:          types.KindObjectRelation,
		DomainNames:   []string{"Person"},
		RangeNames:    []string{"Person"},
		Members:       []string{"http://example.org/osn#follows", "http://example.org/mp#knows"},
		Sources:       []types.SourceTag{"MP", "OSN"},
	}
	agent := &merger.Entity{
		CanonicalName: "Agent",
		Kind:          types.KindClass,
		Members:       []string{"http://example.org/osn#Agent"},
		Sources:       []types.SourceTag{"OSN"},
	}
	diags := []diagnostics.Diagnostic{
		diagnostics.EmptyClassDropped("http://x.org#A", []string{"http://x.org#A", "http://x.org#B"}),
		diagnostics.ReferentialError(diagnostics.StageMatchGraph, "", "http://x.org#Z"),
	}
	return schema.New([]*merger.Entity{person, follows}, []*merger.Entity{agent}, diags)
}

func TestNew(t *testing.T) {
	doc := sample()

	assert.Equal(t, schema.Version, doc.Version)
	assert.Equal(t, []types.SourceTag{"MP", "OSN"}, doc.Sources)
	require.Len(t, doc.Entities, 3)
	assert.Equal(t, "Person", doc.Entities[0].Name)
	assert.Equal(t, "follows", doc.Entities[1].Name)
	assert.Equal(t, schema.OriginSource, doc.Entities[2].Origin)
	assert.Equal(t, []string{"Person", "follows"}, doc.Names())

	agent, ok := doc.Find("source:http://example.org/osn#Agent")
	require.True(t, ok)
	assert.Equal(t, "Agent", agent.Name)
	assert.Empty(t, agent.Members)

	person := doc.Merged()[0]
	assert.Equal(t, map[string][]string{
		"OSNcomment":   {"A human user"},
		"alignWithOSN": {"http://example.org/osn#Person"},
		"alignWithMP":  {"http://example.org/mp#Human"},
	}, person.Annotations)
	assert.Equal(t, []string{"subClassOf:Agent_from:OSN"}, person.SourceOrigin)
	assert.Equal(t, map[types.SourceTag][]string{"OSN": {"A human user"}}, person.Comments())
	assert.Len(t, person.Alignment(), 2)

	assert.Len(t, doc.PassedThrough(), 1)
	require.Len(t, doc.Diagnostics, 2)
	assert.Equal(t, diagnostics.StageMatchGraph, doc.Diagnostics[0].Stage, "diagnostics follow pipeline order")
}

func TestEncodeDecode(t *testing.T) {
	doc := sample()
	doc.RunID = "run-1"

	for _, format := range []schema.Format{schema.FormatYAML, schema.FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, doc.Encode(&buf, format))

			got, err := schema.Decode(&buf, "doc")
			require.NoError(t, err)
			assert.Equal(t, doc, got)
		})
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	err := sample().Encode(&bytes.Buffer{}, "xml")
	assert.True(t, errors.IsValidationError(err))
}

func TestDecodeRejectsOtherDocuments(t *testing.T) {
	_, err := schema.Decode(strings.NewReader("source: OSN\nentities: []\n"), "osn.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing version")
}

func TestWriteReadFile(t *testing.T) {
	dir := t.TempDir()
	doc := sample()

	for _, name := range []string{"out/merged.yaml", "out/merged.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, schema.WriteFile(path, doc))
		got, err := schema.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, doc.Entities, got.Entities, name)
	}

	_, err := schema.ReadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, schema.FormatJSON, schema.FormatFromPath("merged.JSON"))
	assert.Equal(t, schema.FormatYAML, schema.FormatFromPath("merged.yml"))
}
