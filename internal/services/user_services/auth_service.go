// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/auth"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/user"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services"
)

const tokenType = "bearer"

type AuthService struct {
	userRepo           user.UserRepository
	revocations        Revocations
	jwtSecretKey       []byte
	tokenTTL           time.Duration
	googleAuthorizeURL string
	logger             Logger
	now                func() time.Time
}

func NewAuthService(userRepo user.UserRepository, revocations Revocations, jwtSecretKey string, tokenTTL time.Duration, googleAuthorizeURL string, logger Logger) *AuthService {
	if revocations == nil {
		revocations = NewMemoryRevocations()
	}
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AuthService{
		userRepo:           userRepo,
		revocations:        revocations,
		jwtSecretKey:       []byte(jwtSecretKey),
		tokenTTL:           tokenTTL,
		googleAuthorizeURL: googleAuthorizeURL,
		logger:             logger,
		now:                time.Now,
	}
}

// SignUp registers a new account and returns a session for it.
func (s *AuthService) SignUp(ctx context.Context, email, password, fullName string) (*domain.Session, error) {
	email = user.NormalizeEmail(email)
	if email == "" || password == "" {
		s.logger.Warn("sign up attempt with empty credentials", "has_email", email != "", "has_password", password != "")
		return nil, errors.New("email and password are required")
	}

	u := &domain.User{Email: email, FullName: strings.TrimSpace(fullName)}
	if err := u.HashPassword(password); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	created, err := s.userRepo.Create(ctx, u)
	if errors.Is(err, user.ErrUserAlreadyExists) {
		s.logger.Warn("sign up failed - email already registered", "email", services.MaskEmail(email))
		return nil, ErrEmailTaken
	}
	if err != nil {
		s.logger.Error("user creation failed", "email", services.MaskEmail(email), "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered successfully", "email", services.MaskEmail(email), "user_id", created.ID)
	return s.issueSession(created)
}

// SignIn checks the password and returns a fresh session.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	email = user.NormalizeEmail(email)
	if email == "" || password == "" {
		s.logger.Warn("login attempt with empty credentials", "has_email", email != "", "has_password", password != "")
		return nil, errors.New("email and password are required")
	}

	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Warn("login failed - user not found", "email", services.MaskEmail(email))
		return nil, ErrInvalidCredentials
	}
	if err := u.ValidatePassword(password); err != nil {
		s.logger.Warn("login failed - invalid password", "email", services.MaskEmail(email), "user_id", u.ID)
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("login successful", "email", services.MaskEmail(email), "user_id", u.ID)
	return s.issueSession(u)
}

// SignOut revokes the token until it would have expired anyway.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	claims, err := auth.ValidateToken(token, s.jwtSecretKey)
	if err != nil {
		// An already invalid token is as good as signed out.
		s.logger.Debug("sign out with invalid token", "error", err)
		return nil
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		s.logger.Error("failed to revoke token", "user_id", claims.UserID(), "error", err)
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.logger.Info("user signed out", "user_id", claims.UserID())
	return nil
}

// ValidateToken verifies signature, expiry and revocation.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims, err := auth.ValidateToken(token, s.jwtSecretKey)
	if err != nil {
		s.logger.Debug("JWT token validation failed", "error", err)
		return nil, ErrInvalidToken
	}
	if claims.ID != "" {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			// A revocation store outage must not lock everybody out.
			s.logger.Warn("revocation lookup failed", "error", err)
		} else if revoked {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

// Authenticate resolves a bearer token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	u, err := s.userRepo.FindByID(ctx, claims.UserID())
	if err != nil {
		s.logger.Warn("token subject not found", "user_id", claims.UserID())
		return nil, ErrInvalidToken
	}
	return u, nil
}

// AuthorizeURL builds the provider consent URL the client navigates to.
func (s *AuthService) AuthorizeURL(provider, redirectTo string) (string, error) {
	if provider != "google" {
		return "", ErrUnsupportedProvider
	}
	if s.googleAuthorizeURL == "" {
		return "", fmt.Errorf("provider %s is not configured", provider)
	}
	u, err := url.Parse(s.googleAuthorizeURL)
	if err != nil {
		return "", fmt.Errorf("invalid authorize URL: %w", err)
	}
	q := u.Query()
	q.Set("provider", provider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *AuthService) issueSession(u *domain.User) (*domain.Session, error) {
	token, claims, err := auth.GenerateJWT(u.ID, u.Email, s.jwtSecretKey, s.tokenTTL)
	if err != nil {
		s.logger.Error("JWT token generation failed", "user_id", u.ID, "error", err)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &domain.Session{
		AccessToken: token,
		TokenType:   tokenType,
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		ExpiresAt:   claims.ExpiresAt.Unix(),
		User:        domain.SessionUserFrom(u),
	}, nil
}

var _ Authenticator = (*AuthService)(nil)
