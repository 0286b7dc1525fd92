package services

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Logger defines common logging interface for all services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// SlogLogger adapts a *slog.Logger to the Logger interface and tags every
// record with the owning service.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps base, adding a "service" attribute.
func NewSlogLogger(base *slog.Logger, service string) *SlogLogger {
	if base == nil {
		base = slog.Default()
	}
	return &SlogLogger{logger: base.With("service", service)}
}

func (l *SlogLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *SlogLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keysAndValues...)
}

func (l *SlogLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *SlogLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keysAndValues...)
}

// Enabled reports whether debug output would be written; callers use it to
// skip building expensive key/value lists.
func (l *SlogLogger) Enabled(level slog.Level) bool {
	return l.logger.Enabled(context.Background(), level)
}

// NoOpLogger is a logger that does nothing (for testing)
type NoOpLogger struct{}

func (n *NoOpLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *NoOpLogger) Error(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Warn(msg string, keysAndValues ...interface{})  {}

// NewLogger is the environment-based factory. GO_ENV=test silences output.
func NewLogger(base *slog.Logger, service string) Logger {
	if strings.EqualFold(os.Getenv("GO_ENV"), "test") {
		return &NoOpLogger{}
	}
	return NewSlogLogger(base, service)
}

// MaskEmail keeps enough of an address to correlate log lines without
// writing the full value.
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return "****"
	}
	keep := at
	if keep > 3 {
		keep = 3
	}
	return email[:keep] + "****" + email[at:]
}
