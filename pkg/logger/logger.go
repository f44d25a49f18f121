package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger defines structured logging interface
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

type ctxKey struct{}

// SlogLogger implements Logger using Go's standard log/slog
type SlogLogger struct {
	logger *slog.Logger
}

// New creates a JSON logger writing to stdout with the specified level
func New(level string) Logger {
	return NewWithWriter(os.Stdout, level, "json")
}

// NewForEnvironment picks a text handler for development and JSON everywhere else
func NewForEnvironment(level, environment string) Logger {
	format := "json"
	if environment == "development" {
		format = "text"
	}
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter creates a logger with an explicit destination and format ("json" or "text")
func NewWithWriter(w io.Writer, level, format string) Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return &SlogLogger{logger: slog.New(handler)}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Info logs an informational message
func (l *SlogLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Error logs an error message
func (l *SlogLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// Warn logs a warning message
func (l *SlogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Debug logs a debug message
func (l *SlogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// With returns a new logger with the specified attributes
func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{logger: l.logger.With(args...)}
}

// WithContext returns the request-scoped logger stored in ctx, or l itself
func (l *SlogLogger) WithContext(ctx context.Context) Logger {
	if scoped, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return scoped
	}
	return l
}

// IntoContext stores a request-scoped logger
func IntoContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// Default returns a default logger instance
func Default() Logger {
	return New("info")
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() Logger {
	return NewWithWriter(io.Discard, "error", "json")
}
