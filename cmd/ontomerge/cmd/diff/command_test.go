package diff

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ontomerge/internal/cmd/application"
	"github.com/agentstation/ontomerge/pkg/differ"
	"github.com/agentstation/ontomerge/pkg/errors"
	"github.com/agentstation/ontomerge/pkg/logging"
	"github.com/agentstation/ontomerge/pkg/reconciler"
	"github.com/agentstation/ontomerge/pkg/schema"
)

// documents merges the fixtures at two thresholds and writes both documents.
func documents(t *testing.T) (string, string) {
	t.Helper()
	logging.DisableLoggingForTest(t)
	dir := t.TempDir()
	files := reconciler.Files{
		Catalogs: []string{
			filepath.Join("..", "..", "testdata", "osn.yaml"),
			filepath.Join("..", "..", "testdata", "mp.yaml"),
		},
		Candidates: []string{filepath.Join("..", "..", "testdata", "candidates.tsv")},
	}

	write := func(name string, threshold float64) string {
		r, err := reconciler.New(reconciler.WithThreshold(threshold), reconciler.WithRunID(name))
		require.NoError(t, err)
		in, err := r.Load(context.Background(), files)
		require.NoError(t, err)
		result, err := r.Run(context.Background(), in)
		require.NoError(t, err)
		path := filepath.Join(dir, name+".yaml")
		require.NoError(t, schema.WriteFile(path, result.Document))
		return path
	}
	return write("loose", 0.6), write("strict", 0.8)
}

func execute(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand(&application.Mock{OutputFormatFunc: func() string { return format }})
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestDiffSameDocument(t *testing.T) {
	loose, _ := documents(t)

	stdout, err := execute(t, "table", loose, loose, "--exit-code")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No changes detected")
}

func TestDiffTable(t *testing.T) {
	loose, strict := documents(t)

	stdout, err := execute(t, "table", loose, strict)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Removed Entities (1)")
	assert.Contains(t, stdout, "Organization")

	_, err = execute(t, "table", loose, strict, "--exit-code")
	assert.True(t, errors.IsValidationError(err))
}

func TestDiffJSON(t *testing.T) {
	loose, strict := documents(t)

	stdout, err := execute(t, "json", loose, strict, "--only", "additions-only")
	require.NoError(t, err)

	var cs differ.Changeset
	require.NoError(t, json.Unmarshal([]byte(stdout), &cs))
	assert.Equal(t, 2, cs.Summary.EntitiesAdded)
	assert.Zero(t, cs.Summary.EntitiesRemoved)
}

func TestDiffErrors(t *testing.T) {
	loose, _ := documents(t)

	_, err := execute(t, "table", loose)
	assert.Error(t, err, "two documents are required")

	_, err = execute(t, "table", loose, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = execute(t, "table", loose, loose, "--only", "removals")
	assert.True(t, errors.IsValidationError(err))
}
