// File: internal/services/conversation/errors.go
package conversation

import (
	"errors"
	"fmt"

	repo "github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/conversation"
)

type ErrorType string

const (
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeStorage    ErrorType = "STORAGE"
)

// NotFoundMessage is shown for both missing and foreign conversations.
const NotFoundMessage = "Conversation not found or unauthorized access"

type ConversationError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
}

func (e *ConversationError) Error() string {
	if e.Type == ErrTypeNotFound {
		return e.Message
	}
	if e.Cause != nil {
		return fmt.Sprintf("Conversation %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Conversation %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ConversationError) Unwrap() error {
	return e.Cause
}

func NewValidationError(operation, msg string) *ConversationError {
	return &ConversationError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewNotFoundError(operation string) *ConversationError {
	return &ConversationError{
		Type:      ErrTypeNotFound,
		Operation: operation,
		Message:   NotFoundMessage,
		Cause:     repo.ErrConversationNotFound,
	}
}

func NewStorageError(operation, msg string, cause error) *ConversationError {
	return &ConversationError{Type: ErrTypeStorage, Operation: operation, Message: msg, Cause: cause}
}

// IsNotFound reports whether err means the conversation is missing or foreign.
func IsNotFound(err error) bool {
	var ce *ConversationError
	if errors.As(err, &ce) {
		return ce.Type == ErrTypeNotFound
	}
	return errors.Is(err, repo.ErrConversationNotFound)
}
