// File: internal/repository/user/gorm_user_repository.go
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type gormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := validateUserInput(user); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	user.Email = NormalizeEmail(user.Email)

	var existing int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", user.Email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("error checking existing user: %w", err)
	}
	if existing > 0 {
		return nil, ErrUserAlreadyExists
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		slog.Error("[UserRepository] database error during user creation", "error", err)
		return nil, errors.New("database error creating user")
	}

	slog.Info("[UserRepository] user created", "user_id", user.ID)
	return user, nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, errors.New("invalid user ID")
	}

	var user domain.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	return handleFindError(err, &user)
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, errors.New("invalid email")
	}

	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return handleFindError(err, &user)
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func handleFindError(err error, user *domain.User) (*domain.User, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		slog.Error("[UserRepository] database error during find operation", "error", err)
		return nil, errors.New("database error")
	}
	return user, nil
}

func validateUserInput(user *domain.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(user.Email)); err != nil {
		return errors.New("invalid email address")
	}
	if user.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}

var _ UserRepository = (*gormUserRepository)(nil)
