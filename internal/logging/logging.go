// Package logging provides the resolver's structured logging facade: a
// thin, explicitly-passed, cloneable logger in the spirit of the original
// implementation's generic Logger trait, built on log/slog and exposed
// through the github.com/go-logr/logr interface so callers outside this
// module can supply their own logr-compatible sink.
package logging

import (
	"context"
	"io"
	"log/slog"

	"github.com/go-logr/logr"
	slogctx "github.com/veqryn/slog-context"
)

// Logger is the resolver's logging handle. It is safe to copy and to use
// from multiple goroutines concurrently: independent workers each hold
// their own Logger value scoped by WithValues.
type Logger struct {
	logr.Logger
}

// New builds a Logger writing to w in the given format ("json" or "text")
// at the given level.
func New(w io.Writer, level slog.Level, format string) Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	handler = slogctx.NewHandler(handler, nil)
	return Logger{Logger: logr.FromSlogHandler(handler)}
}

// Discard returns a Logger that drops everything, for use in tests and in
// callers that have not configured logging.
func Discard() Logger {
	return Logger{Logger: logr.Discard()}
}

// WithSource returns a Logger whose every subsequent message carries the
// given source location as structured fields, matching the provenance
// requirement of diag.Location.
func (l Logger) WithSource(source string, line, column int) Logger {
	return Logger{Logger: l.Logger.WithValues("source", source, "line", line, "column", column)}
}

// contextKey avoids collisions with other packages' context keys.
type contextKey struct{}

// Into attaches l to ctx so deeply-nested resolution code can recover it
// without threading an extra parameter through every function signature.
func Into(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// From recovers the Logger attached to ctx via Into, or Discard() if none
// was attached.
func From(ctx context.Context) Logger {
	if l, ok := ctx.Value(contextKey{}).(Logger); ok {
		return l
	}
	return Discard()
}
