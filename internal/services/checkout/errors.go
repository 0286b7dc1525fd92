// File: internal/services/checkout/errors.go
package checkout

import "fmt"

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeProvider   ErrorType = "PROVIDER"
)

const (
	MsgMissingSecretKey = "STRIPE_SECRET_KEY não está configurada"
	MsgPlanNotFound     = "Plano não encontrado"
	MsgMissingPlanID    = "plan_id é obrigatório"
	MsgNoCheckoutURL    = "URL de checkout não retornada"
)

// CheckoutError keeps Type and Operation for logs; Error() is the text shown
// to the caller.
type CheckoutError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
}

func (e *CheckoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CheckoutError) Unwrap() error {
	return e.Cause
}

func NewConfigError(msg string) *CheckoutError {
	return &CheckoutError{Type: ErrTypeConfig, Operation: "config", Message: msg}
}

func NewValidationError(operation, msg string) *CheckoutError {
	return &CheckoutError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewProviderError(operation, msg string, cause error) *CheckoutError {
	return &CheckoutError{Type: ErrTypeProvider, Operation: operation, Message: msg, Cause: cause}
}
