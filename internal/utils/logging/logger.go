package logging

import (
	"context"
	"log/slog"
)

// Fields represents structured context for a log entry.
// Keys should be short, lowerCamelCase; values must be JSON-serializable.
type Fields map[string]any

// Logger is a tiny leveled logger for internal library use.
// Callers pass a message and optional structured context (key/value pairs).
// Implementations should prefer structured output (JSON-friendly) and avoid
// interpolating user data into the message string.
type Logger interface {
	Debug(msg string, ctx Fields)
	Info(msg string, ctx Fields)
	Warn(msg string, ctx Fields)
	Error(msg string, ctx Fields)
}

// NopLogger discards all logs.
type NopLogger struct{}

// Debug discards the log entry.
func (NopLogger) Debug(string, Fields) {}

// Info discards the log entry.
func (NopLogger) Info(string, Fields) {}

// Warn discards the log entry.
func (NopLogger) Warn(string, Fields) {}

// Error discards the log entry.
func (NopLogger) Error(string, Fields) {}

// OrNop returns l, or a NopLogger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}

// SlogLogger adapts a *slog.Logger to Logger.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlog wraps l; a nil l uses slog.Default().
func NewSlog(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{l: l}
}

// Debug emits a debug-level entry.
func (s *SlogLogger) Debug(msg string, ctx Fields) { s.log(slog.LevelDebug, msg, ctx) }

// Info emits an info-level entry.
func (s *SlogLogger) Info(msg string, ctx Fields) { s.log(slog.LevelInfo, msg, ctx) }

// Warn emits a warn-level entry.
func (s *SlogLogger) Warn(msg string, ctx Fields) { s.log(slog.LevelWarn, msg, ctx) }

// Error emits an error-level entry.
func (s *SlogLogger) Error(msg string, ctx Fields) { s.log(slog.LevelError, msg, ctx) }

func (s *SlogLogger) log(level slog.Level, msg string, ctx Fields) {
	attrs := make([]slog.Attr, 0, len(ctx))
	for k, v := range ctx {
		attrs = append(attrs, slog.Any(k, v))
	}
	s.l.LogAttrs(context.Background(), level, msg, attrs...)
}

// ParseLevel maps a config string to a slog level; unknown values fall back to info.
func ParseLevel(s string) slog.Level {
	switch s {
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

var _ Logger = (*SlogLogger)(nil)
