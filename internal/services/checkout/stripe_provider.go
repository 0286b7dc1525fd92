// File: internal/services/checkout/stripe_provider.go
package checkout

import (
	"context"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type StripeProvider struct {
	api *client.API
}

func NewStripeProvider(config *Config) (*StripeProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	api := &client.API{}
	api.Init(config.SecretKey, nil)
	return &StripeProvider{api: api}, nil
}

// FindOrCreateCustomer reuses the first customer with this email.
func (p *StripeProvider) FindOrCreateCustomer(ctx context.Context, email, userID string) (string, error) {
	list := &stripe.CustomerListParams{Email: stripe.String(email)}
	list.Limit = stripe.Int64(1)
	list.Context = ctx

	iter := p.api.Customers.List(list)
	if iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", NewProviderError("customer_lookup", "failed to list customers", err)
	}

	params := &stripe.CustomerParams{Email: stripe.String(email)}
	params.Context = ctx
	params.AddMetadata("user_id", userID)

	customer, err := p.api.Customers.New(params)
	if err != nil {
		return "", NewProviderError("customer_create", "failed to create customer", err)
	}
	return customer.ID, nil
}

func (p *StripeProvider) CreateSubscriptionSession(ctx context.Context, sp SessionParams) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(sp.CustomerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(sp.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(sp.SuccessURL),
		CancelURL:  stripe.String(sp.CancelURL),
	}
	params.Context = ctx
	for k, v := range sp.Metadata {
		params.AddMetadata(k, v)
	}

	session, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", NewProviderError("session_create", "failed to create checkout session", err)
	}
	return session.URL, nil
}

var _ Provider = (*StripeProvider)(nil)
