// File: internal/services/checkout/interface.go
package checkout

import "context"

// SessionParams describes a subscription checkout for one plan.
type SessionParams struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// Provider is the payment processor.
type Provider interface {
	FindOrCreateCustomer(ctx context.Context, email, userID string) (string, error)
	CreateSubscriptionSession(ctx context.Context, params SessionParams) (string, error)
}
