// Package logger sets up the zerolog logger of the command line tool.
//
// The logger travels in the context: packages retrieve it with zerolog.Ctx, and get a
// disabled logger when none was attached.
package logger

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New returns a human readable logger writing to w. Debug messages, which include every
// HTTP request, are only emitted when verbose is set.
func New(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// WithContext attaches log to ctx.
func WithContext(ctx context.Context, log zerolog.Logger) context.Context {
	return log.WithContext(ctx)
}

// WithFields returns a child of the context logger with the given fields, attached to
// a child context.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	log := zerolog.Ctx(ctx).With().Fields(fields).Logger()
	return log.WithContext(ctx)
}
