// File: internal/client/errors.go
package client

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeAuth       ErrorType = "AUTH"
	ErrTypeRateLimit  ErrorType = "RATE_LIMIT"
	ErrTypeServer     ErrorType = "SERVER"
	ErrTypeDecode     ErrorType = "DECODE"
)

// ErrNotAuthenticated is returned before any request is made when a call
// needs a session and none is available.
var ErrNotAuthenticated = errors.New("not authenticated")

// APIError is a failed call to the backend. Message carries the server's
// error text when it sent one, so it can be shown to the user as is.
type APIError struct {
	Type      ErrorType
	Operation string
	Status    int
	Message   string
	Cause     error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether repeating the same request could succeed.
func (e *APIError) Retryable() bool {
	switch e.Type {
	case ErrTypeNetwork, ErrTypeRateLimit:
		return true
	case ErrTypeServer:
		return e.Status == http.StatusBadGateway ||
			e.Status == http.StatusServiceUnavailable ||
			e.Status == http.StatusGatewayTimeout
	}
	return false
}

func errorTypeForStatus(status int) ErrorType {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrTypeRateLimit
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrTypeAuth
	case status >= 500:
		return ErrTypeServer
	default:
		return ErrTypeValidation
	}
}
