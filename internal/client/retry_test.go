package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryStopsOnNonRetryable(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), &RetryConfig{MaxAttempts: 3, Delay: time.Millisecond}, func(ctx context.Context) error {
		attempts++
		return &APIError{Type: ErrTypeValidation, Message: "bad"}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), &RetryConfig{MaxAttempts: 3, Delay: time.Millisecond}, func(ctx context.Context) error {
		attempts++
		return &APIError{Type: ErrTypeNetwork, Message: "down"}
	})
	assert.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	err := RetryWithBackoff(ctx, &RetryConfig{MaxAttempts: 5, Delay: time.Hour}, func(ctx context.Context) error {
		cancel()
		return &APIError{Type: ErrTypeNetwork, Message: "down"}
	})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Invalid login credentials", errorMessage([]byte(`{"error":"Invalid login credentials"}`), "400"))
	assert.Equal(t, "Email not confirmed", errorMessage([]byte(`{"msg":"Email not confirmed"}`), "400"))
	assert.Equal(t, "502 Bad Gateway", errorMessage([]byte(""), "502 Bad Gateway"))
}
