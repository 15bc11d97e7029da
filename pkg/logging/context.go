package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey int

const (
	loggerKey contextKey = iota
	runIDKey
)

// WithLogger stores logger in ctx. A nil logger stores the default.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
			return logger
		}
	}
	return Default()
}

// Ctx is shorthand for FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// WithRun records the run id in ctx and adds it to the logger as run_id.
func WithRun(ctx context.Context, runID string) context.Context {
	ctx = context.WithValue(ctx, runIDKey, runID)
	return WithField(ctx, "run_id", runID)
}

// RunID returns the run id recorded by WithRun.
func RunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// WithFields returns a context whose logger carries fields.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	zctx := FromContext(ctx).With()
	for key, value := range fields {
		zctx = addField(zctx, key, value)
	}
	logger := zctx.Logger()
	return WithLogger(ctx, &logger)
}

// WithField returns a context whose logger carries key.
func WithField(ctx context.Context, key string, value any) context.Context {
	logger := addField(FromContext(ctx).With(), key, value).Logger()
	return WithLogger(ctx, &logger)
}

// WithSource tags the logger with a source schema tag.
func WithSource(ctx context.Context, tag string) context.Context {
	return WithField(ctx, "source", tag)
}

// WithClass tags the logger with an equivalence class.
func WithClass(ctx context.Context, class string) context.Context {
	return WithField(ctx, "class", class)
}

// WithPass tags the logger with a merge sweep name.
func WithPass(ctx context.Context, pass string) context.Context {
	return WithField(ctx, "pass", pass)
}
