// Package logging provides structured logging for the block manager.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ShouryaAnand/sawtooth-core/types"
)

// Logger is a structured logger for the block manager.
// It wraps slog.Logger with convenience methods for common logging patterns.
type Logger struct {
	*slog.Logger
}

// New creates a new Logger with the given handler.
func New(handler slog.Handler) *Logger {
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a new Logger with text output format.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: false,
	}
	return New(slog.NewTextHandler(w, opts))
}

// NewJSONLogger creates a new Logger with JSON output format.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: false,
	}
	return New(slog.NewJSONHandler(w, opts))
}

// NewDevelopmentLogger creates a logger suitable for development.
// Uses text format with debug level output to stderr.
func NewDevelopmentLogger() *Logger {
	return NewTextLogger(os.Stderr, slog.LevelDebug)
}

// NewProductionLogger creates a logger suitable for production.
// Uses JSON format with info level output to stdout.
func NewProductionLogger() *Logger {
	return NewJSONLogger(os.Stdout, slog.LevelInfo)
}

// NewNopLogger creates a logger that discards all output.
func NewNopLogger() *Logger {
	return New(nopHandler{})
}

// With returns a new Logger with the given attributes added to every log entry.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// WithComponent returns a new Logger with a component attribute.
func (l *Logger) WithComponent(name string) *Logger {
	return l.With(Component(name))
}

// WithStore returns a new Logger with a store attribute.
func (l *Logger) WithStore(name string) *Logger {
	return l.With(Store(name))
}

// Common attribute constructors for block-manager-specific fields.

// Component creates a component attribute for identifying the source module.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// BlockID creates a block id attribute.
func BlockID(id types.BlockID) slog.Attr {
	return slog.String("block_id", id.Short())
}

// BlockNum creates a block number attribute.
func BlockNum(num uint64) slog.Attr {
	return slog.Uint64("block_num", num)
}

// Store creates a store name attribute.
func Store(name string) slog.Attr {
	return slog.String("store", name)
}

// Count creates a generic count attribute.
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}

// Err creates an error attribute.
func Err(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// nopHandler discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }
