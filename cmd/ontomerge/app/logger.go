package app

import (
	"fmt"
	"os"
	"slices"

	"github.com/rs/zerolog"

	"github.com/agentstation/ontomerge/internal/cmd/emoji"
	"github.com/agentstation/ontomerge/pkg/logging"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// NewLogger builds the run logger from config. The level is chosen by
// determineLogLevel; debug and trace add caller information.
func NewLogger(config *Config) zerolog.Logger {
	level := determineLogLevel(config)
	return logging.NewLoggerFromConfig(&logging.Config{
		Level:     level,
		Format:    config.LogFormat,
		Output:    config.LogOutput,
		NoColor:   config.NoColor,
		AddCaller: level == "debug" || level == "trace",
	})
}

// determineLogLevel applies, in order: an explicit log level (flag,
// ONTOMERGE_LOG_LEVEL or LOG_LEVEL), --quiet, --verbose, then info.
// Quiet beats verbose when both are set.
func determineLogLevel(config *Config) string {
	switch {
	case config.LogLevel != "":
		level := validateLogLevel(config.LogLevel)
		if level != config.LogLevel {
			warn("invalid log level %q, using %q", config.LogLevel, level)
		}
		return level
	case config.Verbose && config.Quiet:
		warn("both --verbose and --quiet specified, using --quiet")
		return "warn"
	case config.Quiet:
		return "warn"
	case config.Verbose:
		return "debug"
	default:
		return "info"
	}
}

// validateLogLevel returns level when it is a known lowercase level and
// info otherwise.
func validateLogLevel(level string) string {
	if slices.Contains(logLevels, level) {
		return level
	}
	return "info"
}

func warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", emoji.Warning, fmt.Sprintf(format, args...))
}
