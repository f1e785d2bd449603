// Package cli implements the topdag command-line interface.
//
// This package provides commands for compressing XML documents into Top
// DAG archives, decompressing them back, generating random trees,
// running evaluation batches, exploring archives interactively, and
// serving the compressor over HTTP. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
//   - compress: XML document → Top DAG archive
//   - decompress: archive → XML document
//   - random: generate a random labeled tree, optionally compress it
//   - eval: batch-compress seeded random trees and aggregate statistics
//   - explore: interactive navigation over an archive, without unpacking
//   - serve: HTTP API exposing the compressor
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// are passed through context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion
// with elapsed duration. Sequential use by a single goroutine only.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// elapsedMillis returns the elapsed time in milliseconds.
func (p *progress) elapsedMillis() float64 {
	return float64(time.Since(p.start)) / float64(time.Millisecond)
}

// reset restarts the clock and returns the elapsed milliseconds so far.
func (p *progress) reset() float64 {
	ms := p.elapsedMillis()
	p.start = time.Now()
	return ms
}

// done logs msg along with the elapsed time since the last reset.
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, falling back to
// log.Default so commands always have a valid logger.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
