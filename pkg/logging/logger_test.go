package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ontomerge/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	original := *logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	buf := &bytes.Buffer{}
	logging.SetDefault(zerolog.New(buf).Level(zerolog.InfoLevel))

	logging.Debug().Msg("debug message")
	logging.Info().Msg("info message")
	logging.Warn().Msg("warning message")

	output := buf.String()
	assert.Contains(t, output, "info message")
	assert.Contains(t, output, "warning message")
	assert.NotContains(t, output, "debug message")
}

func TestContextLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithRun(ctx, "run-42")
	ctx = logging.WithSource(ctx, "OSN")
	ctx = logging.WithClass(ctx, "Vehicle")
	ctx = logging.WithPass(ctx, "hierarchy")

	logging.FromContext(ctx).Info().Msg("sweep done")

	tl.AssertContains(t, `"run_id":"run-42"`)
	tl.AssertContains(t, `"source":"OSN"`)
	tl.AssertContains(t, `"class":"Vehicle"`)
	tl.AssertContains(t, `"pass":"hierarchy"`)
	tl.AssertContains(t, "sweep done")
	assert.Equal(t, "run-42", logging.RunID(ctx))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Equal(t, logging.Default(), logging.FromContext(context.Background()))
	assert.Equal(t, logging.Default(), logging.Ctx(nil)) //nolint:staticcheck // nil context is tolerated
	assert.Empty(t, logging.RunID(context.Background()))
}

func TestWithFields(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithFields(ctx, map[string]any{
		"classes": 3,
		"members": []string{"a", "b"},
		"ok":      true,
	})

	logging.Ctx(ctx).Info().Msg("fields")

	assert.True(t, tl.ContainsAll(`"classes":3`, `"members":["a","b"]`, `"ok":true`))
}

func TestConfiguration(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	tests := []struct {
		name   string
		config *logging.Config
		want   []string
		reject []string
	}{
		{
			name:   "debug level",
			config: &logging.Config{Level: "debug", Format: "json"},
			want:   []string{`"level":"debug"`, `"level":"info"`},
		},
		{
			name:   "error level only",
			config: &logging.Config{Level: "error", Format: "json"},
			want:   []string{`"level":"error"`},
			reject: []string{`"level":"info"`},
		},
		{
			name:   "warning alias",
			config: &logging.Config{Level: "warning", Format: "json"},
			want:   []string{`"level":"error"`},
			reject: []string{`"level":"info"`},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := logging.NewLoggerFromConfig(tc.config).Output(buf)

			logger.Debug().Msg("debug")
			logger.Info().Msg("info")
			logger.Error().Msg("error")

			for _, w := range tc.want {
				assert.Contains(t, buf.String(), w)
			}
			for _, r := range tc.reject {
				assert.NotContains(t, buf.String(), r)
			}
		})
	}
}

func TestConfigureWritesToFile(t *testing.T) {
	original := *logging.Default()
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		logging.SetDefault(original)
		zerolog.SetGlobalLevel(originalLevel)
	})

	path := filepath.Join(t.TempDir(), "merge.log")
	logging.Configure(&logging.Config{
		Level:  "warn",
		Format: "json",
		Output: path,
		Fields: map[string]any{"component": "ontomerge"},
	})

	logging.Info().Msg("hidden")
	logging.Warn().Msg("visible")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(content)
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, `"component":"ontomerge"`)
	assert.NotContains(t, out, "hidden")
}

func TestDefaultConfig(t *testing.T) {
	cfg := logging.DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.False(t, cfg.AddCaller)
}

func TestTestLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	tl.Info().Msg("message 1")
	tl.Error().Msg("message 2")

	tl.AssertContains(t, "message 1")
	tl.AssertNotContains(t, "message 3")
	assert.Equal(t, 2, tl.Count())
	assert.True(t, strings.HasPrefix(tl.Lines()[0], "{"))

	tl.Clear()
	assert.Zero(t, tl.Count())
}

func TestCaptureLoggingForTest(t *testing.T) {
	tl := logging.CaptureLoggingForTest(t)
	logging.Info().Str("source", "LIFE").Msg("captured")
	tl.AssertContains(t, `"source":"LIFE"`)
}
