package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/ontomerge/pkg/candidates"
	"github.com/agentstation/ontomerge/pkg/constants"
	"github.com/agentstation/ontomerge/pkg/errors"
	"github.com/agentstation/ontomerge/pkg/matchgraph"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Merge configuration
	Threshold   float64
	Admission   string
	Cardinality string
	Workers     int
	Exclude     []string
	Builtins    bool
	Timeout     time.Duration
	MetricsFile string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (ONTOMERGE_ prefix)
// 3. .env files
// 4. Config file (~/.ontomerge.yaml or ./.ontomerge.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	return loadConfig("")
}

// loadConfig reads configuration, using configFile instead of the standard
// search locations when it is set.
func loadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile == "" {
		configFile = os.Getenv(constants.EnvPrefix + "_CONFIG")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		// Search for config in standard locations
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.ConfigFileName)
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine unless one was asked for explicitly
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, errors.NewConfigError("config file", err.Error(), err)
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color") || os.Getenv("NO_COLOR") != "",
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Threshold:   v.GetFloat64("threshold"),
		Admission:   v.GetString("admission"),
		Cardinality: v.GetString("cardinality"),
		Workers:     v.GetInt("workers"),
		Exclude:     v.GetStringSlice("exclude_iris"),
		Builtins:    v.GetBool("builtins"),
		Timeout:     v.GetDuration("timeout"),
		MetricsFile: v.GetString("metrics_file"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", v.GetString("log_format")),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", v.GetString("log_output")),
	}
	if config.LogLevel == "" {
		config.LogLevel = os.Getenv("LOG_LEVEL")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("threshold", constants.DefaultThreshold)
	v.SetDefault("admission", constants.DefaultAdmission)
	v.SetDefault("cardinality", constants.DefaultCardinality)
	v.SetDefault("timeout", constants.CommandTimeout)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// Validate checks merge settings before any command runs.
func (c *Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return errors.NewConfigError("threshold",
			fmt.Sprintf("must be between 0 and 1, got %v", c.Threshold), nil)
	}
	if _, err := matchgraph.ParseAdmission(c.Admission); err != nil {
		return errors.NewConfigError("admission", err.Error(), err)
	}
	if _, err := candidates.ParseCardinality(c.Cardinality); err != nil {
		return errors.NewConfigError("cardinality", err.Error(), err)
	}
	if c.Workers < 0 || c.Workers > constants.MaxWorkers {
		return errors.NewConfigError("workers",
			fmt.Sprintf("must be between 0 and %d, got %d", constants.MaxWorkers, c.Workers), nil)
	}
	if c.Timeout < 0 {
		return errors.NewConfigError("timeout", "cannot be negative", nil)
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
