// File: internal/middleware/constants.go
package middleware

// Context keys for middleware communication
type contextKey string

const (
	UserKey  contextKey = "user"
	TokenKey contextKey = "access_token"
)
