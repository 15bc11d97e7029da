// Package logging configures the zerolog loggers used by a merge run.
//
// Libraries never build their own logger: they take one from the context
// with FromContext, which falls back to the process default. The CLI
// installs a configured logger once and tags the context with the run id,
// so every line of one run carries the same run_id field.
//
//	ctx := logging.WithRun(ctx, runID)
//	logging.FromContext(ctx).Info().Int("classes", n).Msg("Clustering complete")
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agentstation/ontomerge/pkg/constants"
)

// Config describes a logger.
type Config struct {
	// Level is trace, debug, info, warn (or warning), error or disabled.
	Level string
	// Format is json, console or auto. Auto picks console on a terminal.
	Format string
	// Output is stderr, stdout, discard or a file path opened for append.
	Output string
	// TimeFormat is a Go time layout for console output; empty means 3:04PM.
	TimeFormat string
	NoColor    bool
	// AddCaller adds file:line. Debug and trace levels always add it.
	AddCaller bool
	// Fields are attached to every event.
	Fields map[string]any
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() *Config {
	return &Config{
		Level:   "info",
		Format:  "auto",
		Output:  "stderr",
		NoColor: os.Getenv("NO_COLOR") != "",
		Fields:  map[string]any{},
	}
}

// envConfig reads LOG_LEVEL, LOG_FORMAT and LOG_OUTPUT. DEBUG=1 is honored
// when LOG_LEVEL is unset.
func envConfig() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Level = v
	} else if os.Getenv("DEBUG") != "" {
		cfg.Level = "debug"
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("LOG_OUTPUT"); v != "" {
		cfg.Output = v
	}
	return cfg
}

var defaultLogger = NewLoggerFromConfig(envConfig())

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger, including zerolog's global
// log.Logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// Configure installs a logger built from cfg as the default.
func Configure(cfg *Config) {
	SetDefault(NewLoggerFromConfig(cfg))
}

// NewLoggerFromConfig builds a logger. It also sets zerolog's global level so
// that loggers derived elsewhere agree with it.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	zctx := zerolog.New(writer(cfg)).Level(level).With().Timestamp()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		zctx = zctx.Caller()
	}
	for key, value := range cfg.Fields {
		zctx = addField(zctx, key, value)
	}
	return zctx.Logger()
}

// Debug starts a debug event on the default logger.
func Debug() *zerolog.Event { return defaultLogger.Debug() }

// Info starts an info event on the default logger.
func Info() *zerolog.Event { return defaultLogger.Info() }

// Warn starts a warn event on the default logger.
func Warn() *zerolog.Event { return defaultLogger.Warn() }

// Err starts an error event carrying err on the default logger.
func Err(err error) *zerolog.Event { return defaultLogger.Err(err) }

func writer(cfg *Config) io.Writer {
	out := destination(cfg.Output)

	format := strings.ToLower(cfg.Format)
	if format == "" || format == "auto" {
		format = "json"
		if f, ok := out.(*os.File); ok && isTerminal(f) {
			format = "console"
		}
	}
	if format != "console" && format != "pretty" {
		return out
	}

	layout := cfg.TimeFormat
	if layout == "" {
		layout = time.Kitchen
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: layout, NoColor: cfg.NoColor}
}

// destination falls back to stderr when a log file cannot be opened.
func destination(output string) io.Writer {
	switch strings.ToLower(output) {
	case "", "stderr":
		return os.Stderr
	case "stdout":
		return os.Stdout
	case "discard", "none":
		return io.Discard
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return os.Stderr
	}
	return f
}

func parseLevel(level string) zerolog.Level {
	switch level = strings.ToLower(level); level {
	case "":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "none", "off":
		return zerolog.Disabled
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}

func addField(zctx zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return zctx.Str(key, v)
	case int:
		return zctx.Int(key, v)
	case float64:
		return zctx.Float64(key, v)
	case bool:
		return zctx.Bool(key, v)
	case []string:
		return zctx.Strs(key, v)
	case time.Duration:
		return zctx.Dur(key, v)
	case error:
		return zctx.AnErr(key, v)
	default:
		return zctx.Interface(key, v)
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
