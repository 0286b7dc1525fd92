// File: internal/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services/user_services"
)

// AuthMessages are the error texts written when bearer authentication fails.
type AuthMessages struct {
	MissingHeader string
	Failed        string // formatted with the cause
}

var (
	FunctionAuthMessages = AuthMessages{
		MissingHeader: "Missing Authorization header",
		Failed:        "Authentication error: %v",
	}
	CheckoutAuthMessages = AuthMessages{
		MissingHeader: "Header de autorização ausente",
		Failed:        "Erro de autenticação: %v",
	}
)

// NewBearerAuthMiddleware resolves the bearer token to a user and stores it
// in the request context. Failures answer failStatus with {"error": ...}.
func NewBearerAuthMiddleware(authenticator user_services.Authenticator, failStatus int, msgs AuthMessages) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeAuthError(w, failStatus, msgs.MissingHeader)
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

			user, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				slog.Debug("[AuthMiddleware] invalid token", "path", r.URL.Path, "error", err)
				writeAuthError(w, failStatus, fmt.Sprintf(msgs.Failed, err))
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			ctx = context.WithValue(ctx, TokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(UserKey).(*domain.User)
	return u, ok && u != nil
}

// TokenFromContext returns the raw bearer token.
func TokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(TokenKey).(string)
	return t
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
