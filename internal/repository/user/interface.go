// File: internal/repository/user/interface.go
package user

import (
	"context"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}
