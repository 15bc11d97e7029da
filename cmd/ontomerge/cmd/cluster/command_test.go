package cluster

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ontomerge/internal/cmd/application"
	"github.com/agentstation/ontomerge/pkg/logging"
	"github.com/agentstation/ontomerge/pkg/resolver"
)

func execute(t *testing.T, format string, args ...string) (string, string) {
	t.Helper()
	logging.DisableLoggingForTest(t)

	cmd := NewCommand(&application.Mock{OutputFormatFunc: func() string { return format }})
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{
		"-c", filepath.Join("..", "..", "testdata", "osn.yaml"),
		"-c", filepath.Join("..", "..", "testdata", "mp.yaml"),
		"-m", filepath.Join("..", "..", "testdata", "candidates.tsv"),
	}, args...))

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return stdout.String(), stderr.String()
}

func TestClusterTable(t *testing.T) {
	stdout, stderr := execute(t, "wide")

	for _, name := range []string{"Human", "Organization", "knows"} {
		assert.Contains(t, stdout, name)
	}
	assert.Contains(t, stdout, "http://example.org/osn#Person")
	assert.Equal(t, "3 classes over 6 entities; 2 diagnostics\n", stderr)
}

func TestClusterJSON(t *testing.T) {
	stdout, _ := execute(t, "json", "--threshold", "0.8")

	var resolutions []resolver.Resolution
	require.NoError(t, json.Unmarshal([]byte(stdout), &resolutions))
	names := make([]string, 0, len(resolutions))
	for _, r := range resolutions {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Human", "knows"}, names)
}

func TestClusterStats(t *testing.T) {
	stdout, _ := execute(t, "table", "--stats")
	assert.Contains(t, stdout, "Classes")
	assert.NotContains(t, stdout, "Organization")
}
