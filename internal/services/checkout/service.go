// File: internal/services/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"strings"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/plan"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services"
)

type Service struct {
	provider      Provider
	plans         plan.PlanRepository
	defaultOrigin string
	logger        services.Logger
}

// NewService accepts a nil provider; every checkout then fails with the
// missing key message.
func NewService(provider Provider, plans plan.PlanRepository, defaultOrigin string, logger services.Logger) *Service {
	if defaultOrigin == "" {
		defaultOrigin = fallbackOrigin
	}
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &Service{
		provider:      provider,
		plans:         plans,
		defaultOrigin: strings.TrimRight(defaultOrigin, "/"),
		logger:        logger,
	}
}

// CreateCheckout returns the hosted checkout URL for planID. origin comes
// from the request's Origin header and may be empty.
func (s *Service) CreateCheckout(ctx context.Context, user *domain.User, planID, origin string) (string, error) {
	const op = "CreateCheckout"
	if s.provider == nil {
		return "", NewConfigError(MsgMissingSecretKey)
	}
	if user == nil || user.ID == "" {
		return "", NewValidationError(op, "Usuário não autenticado")
	}
	planID = strings.TrimSpace(planID)
	if planID == "" {
		return "", NewValidationError(op, MsgMissingPlanID)
	}

	customerID, err := s.provider.FindOrCreateCustomer(ctx, user.Email, user.ID)
	if err != nil {
		s.logger.Error("customer lookup failed", "user_id", user.ID, "error", err)
		return "", err
	}

	p, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		if !errors.Is(err, plan.ErrPlanNotFound) {
			s.logger.Error("plan lookup failed", "plan_id", planID, "error", err)
		}
		return "", &CheckoutError{Type: ErrTypeNotFound, Operation: op, Message: MsgPlanNotFound}
	}

	base := s.defaultOrigin
	if o := strings.TrimRight(strings.TrimSpace(origin), "/"); o != "" {
		base = o
	}

	url, err := s.provider.CreateSubscriptionSession(ctx, SessionParams{
		CustomerID: customerID,
		PriceID:    p.PriceID,
		SuccessURL: base + "/chat?checkout_success=true",
		CancelURL:  base + "/pricing?checkout_cancelled=true",
		Metadata: map[string]string{
			"user_id": user.ID,
			"plan_id": p.ID,
		},
	})
	if err != nil {
		s.logger.Error("checkout session creation failed", "user_id", user.ID, "plan_id", p.ID, "error", err)
		return "", err
	}
	if url == "" {
		return "", NewProviderError(op, MsgNoCheckoutURL, nil)
	}

	s.logger.Info("checkout session created", "user_id", user.ID, "plan_id", p.ID)
	return url, nil
}
