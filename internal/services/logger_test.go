package services

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlogLoggerTagsService(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger := NewSlogLogger(base, "conversation")
	logger.Info("saved", "conversation_id", "abc")

	out := buf.String()
	assert.Contains(t, out, "service=conversation")
	assert.Contains(t, out, "conversation_id=abc")
	assert.Contains(t, out, "msg=saved")
}

func TestSlogLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	logger := NewSlogLogger(base, "auth")
	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
	assert.False(t, logger.Enabled(slog.LevelDebug))
}

func TestNewLoggerSilencedInTests(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	_, ok := NewLogger(nil, "x").(*NoOpLogger)
	assert.True(t, ok)
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "ana****@example.com", MaskEmail("ana.souza@example.com"))
	assert.Equal(t, "jo****@x.io", MaskEmail("jo@x.io"))
	assert.Equal(t, "****", MaskEmail("not-an-email"))
}
