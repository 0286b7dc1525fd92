// File: internal/services/user_services/authenticator.go
package user_services

import (
	"context"
	"fmt"

	supa "github.com/supabase-community/supabase-go"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services"
)

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// SupabaseAuthenticator validates tokens issued by a Supabase project.
type SupabaseAuthenticator struct {
	client *supa.Client
	logger Logger
}

func NewSupabaseAuthenticator(url, anonKey string, logger Logger) (*SupabaseAuthenticator, error) {
	if url == "" || anonKey == "" {
		return nil, fmt.Errorf("supabase URL and anon key are required")
	}
	client, err := supa.NewClient(url, anonKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &SupabaseAuthenticator{client: client, logger: logger}, nil
}

func (a *SupabaseAuthenticator) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	resp, err := a.client.Auth.WithToken(token).GetUser()
	if err != nil {
		a.logger.Debug("supabase token rejected", "error", err)
		return nil, ErrInvalidToken
	}
	u := &domain.User{ID: resp.ID.String(), Email: resp.Email}
	if name, ok := resp.UserMetadata["full_name"].(string); ok {
		u.FullName = name
	}
	return u, nil
}

var _ Authenticator = (*SupabaseAuthenticator)(nil)
