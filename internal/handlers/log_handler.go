// File: internal/handlers/log_handler.go
package handlers

import (
	"log/slog"
	"net/http"
	"strings"
)

// ClientLogPayload defines the structure for logs reported by clients.
type ClientLogPayload struct {
	Level   string `json:"level"`             // "debug", "info", "warn" or "error"
	Message string `json:"message"`           // The main log message
	Context any    `json:"context,omitempty"` // Optional extra data
}

func (p ClientLogPayload) slogLevel() slog.Level {
	switch strings.ToLower(p.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogClientEvent records an event reported by a client.
func LogClientEvent(w http.ResponseWriter, r *http.Request) {
	var payload ClientLogPayload
	if err := decodeJSON(r, &payload); err != nil || payload.Message == "" {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	slog.Log(r.Context(), payload.slogLevel(), "CLIENT_LOG",
		slog.String("message", payload.Message),
		slog.Any("context", payload.Context),
	)
	w.WriteHeader(http.StatusNoContent)
}
