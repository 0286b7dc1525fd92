// File: internal/services/user_services/user_service.go
package user_services

import (
	"context"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/auth"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
)

// UserServiceInterface defines the session operations the auth endpoints need.
type UserServiceInterface interface {
	SignUp(ctx context.Context, email, password, fullName string) (*domain.Session, error)
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context, token string) error
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	AuthorizeURL(provider, redirectTo string) (string, error)
}

var _ UserServiceInterface = (*AuthService)(nil)
