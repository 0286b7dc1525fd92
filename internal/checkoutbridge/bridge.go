// Package checkoutbridge starts a hosted payment checkout for the signed-in
// user.
package checkoutbridge

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/ui"
)

var (
	ErrLoginRequired = errors.New("Por favor, faça login para assinar um plano.")
	ErrMissingPlan   = errors.New("Selecione um plano")
	ErrNoCheckoutURL = errors.New("URL de checkout não retornada")
)

// CheckoutAPI creates checkout sessions on the server.
type CheckoutAPI interface {
	CreateCheckout(ctx context.Context, token, planID string) (string, error)
}

type SessionSource interface {
	CurrentSession() *domain.Session
}

type Bridge struct {
	api       CheckoutAPI
	sessions  SessionSource
	notifier  ui.Notifier
	navigator ui.Navigator
	logger    services.Logger

	mu      sync.Mutex
	loading bool
}

func New(api CheckoutAPI, sessions SessionSource, notifier ui.Notifier, navigator ui.Navigator, logger services.Logger) *Bridge {
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &Bridge{api: api, sessions: sessions, notifier: notifier, navigator: navigator, logger: logger}
}

func (b *Bridge) IsLoading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

func (b *Bridge) setLoading(v bool) {
	b.mu.Lock()
	b.loading = v
	b.mu.Unlock()
}

// StartCheckout redirects to the hosted checkout for planID. Every failure
// is shown to the user and leaves the current view in place.
func (b *Bridge) StartCheckout(ctx context.Context, planID string) error {
	session := b.sessions.CurrentSession()
	if session == nil || session.AccessToken == "" {
		b.notifier.Notify(ui.Notification{
			Title:       "Login necessário",
			Description: ErrLoginRequired.Error(),
			Variant:     ui.VariantDestructive,
		})
		return ErrLoginRequired
	}
	planID = strings.TrimSpace(planID)
	if planID == "" {
		b.fail(ErrMissingPlan)
		return ErrMissingPlan
	}

	b.setLoading(true)
	defer b.setLoading(false)

	url, err := b.api.CreateCheckout(ctx, session.AccessToken, planID)
	if err == nil && url == "" {
		err = ErrNoCheckoutURL
	}
	if err != nil {
		b.logger.Error("failed to create checkout session", "plan_id", planID, "error", err)
		b.fail(err)
		return err
	}

	b.logger.Info("redirecting to checkout", "plan_id", planID)
	b.navigator.Redirect(url)
	return nil
}

func (b *Bridge) fail(err error) {
	description := "Não foi possível iniciar o processo de pagamento"
	if err.Error() != "" {
		description = err.Error()
	}
	b.notifier.Notify(ui.Notification{
		Title:       "Erro ao iniciar checkout",
		Description: description,
		Variant:     ui.VariantDestructive,
	})
}
