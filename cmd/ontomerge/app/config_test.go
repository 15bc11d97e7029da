package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentstation/ontomerge/pkg/constants"
	"github.com/agentstation/ontomerge/pkg/errors"
)

// TestLoadConfig verifies defaults.
func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.Threshold != constants.DefaultThreshold {
		t.Errorf("Threshold = %v, want %v", config.Threshold, constants.DefaultThreshold)
	}
	if config.Admission != constants.DefaultAdmission {
		t.Errorf("Admission = %q, want %q", config.Admission, constants.DefaultAdmission)
	}
	if config.Cardinality != constants.DefaultCardinality {
		t.Errorf("Cardinality = %q, want %q", config.Cardinality, constants.DefaultCardinality)
	}
	if config.Timeout != constants.CommandTimeout {
		t.Errorf("Timeout = %v, want %v", config.Timeout, constants.CommandTimeout)
	}
	if config.LogFormat == "" {
		t.Error("LogFormat not set to default")
	}
}

// TestConfig_EnvironmentVariables verifies ONTOMERGE_ variables.
func TestConfig_EnvironmentVariables(t *testing.T) {
	t.Setenv("ONTOMERGE_THRESHOLD", "0.85")
	t.Setenv("ONTOMERGE_ADMISSION", "score")
	t.Setenv("ONTOMERGE_CARDINALITY", "one-to-one")
	t.Setenv("ONTOMERGE_WORKERS", "4")
	t.Setenv("ONTOMERGE_TIMEOUT", "30s")
	t.Setenv("ONTOMERGE_FORMAT", "json")
	t.Setenv("ONTOMERGE_VERBOSE", "true")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.Threshold != 0.85 {
		t.Errorf("Threshold = %v, want 0.85", config.Threshold)
	}
	if config.Admission != "score" {
		t.Errorf("Admission = %q, want score", config.Admission)
	}
	if config.Cardinality != "one-to-one" {
		t.Errorf("Cardinality = %q, want one-to-one", config.Cardinality)
	}
	if config.Workers != 4 {
		t.Errorf("Workers = %d, want 4", config.Workers)
	}
	if config.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", config.Timeout)
	}
	if config.Format != "json" {
		t.Errorf("Format = %q, want json", config.Format)
	}
	if !config.Verbose {
		t.Error("ONTOMERGE_VERBOSE not loaded")
	}
}

// TestConfig_File verifies an explicit config file.
func TestConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ontomerge.yaml")
	content := `threshold: 0.7
admission: either
exclude_iris:
  - "http://example.org/tmp#*"
metrics_file: /tmp/ontomerge.prom
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	config, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() failed: %v", err)
	}

	if config.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", config.ConfigFile, path)
	}
	if config.Threshold != 0.7 {
		t.Errorf("Threshold = %v, want 0.7", config.Threshold)
	}
	if config.Admission != "either" {
		t.Errorf("Admission = %q, want either", config.Admission)
	}
	if len(config.Exclude) != 1 || config.Exclude[0] != "http://example.org/tmp#*" {
		t.Errorf("Exclude = %v", config.Exclude)
	}
	if config.MetricsFile != "/tmp/ontomerge.prom" {
		t.Errorf("MetricsFile = %q", config.MetricsFile)
	}
}

// TestConfig_EnvironmentOverridesFile verifies precedence.
func TestConfig_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ontomerge.yaml")
	if err := os.WriteFile(path, []byte("threshold: 0.7\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ONTOMERGE_THRESHOLD", "0.9")

	config, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() failed: %v", err)
	}
	if config.Threshold != 0.9 {
		t.Errorf("Threshold = %v, want 0.9", config.Threshold)
	}
}

// TestConfig_MissingFile verifies an explicit file must exist.
func TestConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	var cfgErr *errors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("loadConfig() error = %v, want ConfigError", err)
	}
}

// TestConfig_Validate verifies invalid settings are rejected.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		envVar    string
		envValue  string
		component string
	}{
		{"threshold above one", "ONTOMERGE_THRESHOLD", "1.5", "threshold"},
		{"negative threshold", "ONTOMERGE_THRESHOLD", "-0.1", "threshold"},
		{"unknown admission", "ONTOMERGE_ADMISSION", "maybe", "admission"},
		{"unknown cardinality", "ONTOMERGE_CARDINALITY", "two-to-two", "cardinality"},
		{"too many workers", "ONTOMERGE_WORKERS", "100000", "workers"},
		{"negative timeout", "ONTOMERGE_TIMEOUT", "-1s", "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.envValue)

			_, err := LoadConfig()
			var cfgErr *errors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("LoadConfig() error = %v, want ConfigError", err)
			}
			if cfgErr.Component != tt.component {
				t.Errorf("Component = %q, want %q", cfgErr.Component, tt.component)
			}
		})
	}
}

// TestConfig_LoggingOptions verifies logging configuration.
func TestConfig_LoggingOptions(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_OUTPUT", "stdout")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", config.LogLevel)
	}
	if config.LogFormat != "json" {
		t.Errorf("LogFormat = %s, want json", config.LogFormat)
	}
	if config.LogOutput != "stdout" {
		t.Errorf("LogOutput = %s, want stdout", config.LogOutput)
	}
}

// TestConfig_UpdateFromFlags verifies flags win over loaded values.
func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{Format: "yaml", LogLevel: "warn"}

	config.UpdateFromFlags(true, false, true, "json", "")
	if !config.Verbose || !config.NoColor {
		t.Error("boolean flags not applied")
	}
	if config.Format != "json" {
		t.Errorf("Format = %q, want json", config.Format)
	}
	if config.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, an empty flag must keep it", config.LogLevel)
	}
}
