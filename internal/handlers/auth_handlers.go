// File: internal/handlers/auth_handlers.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/middleware"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services/user_services"
)

// AuthHandler serves the /auth/v1 session endpoints.
type AuthHandler struct {
	auth user_services.UserServiceInterface
}

func NewAuthHandler(auth user_services.UserServiceInterface) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Data     struct {
		FullName string `json:"full_name"`
	} `json:"data"`
}

func (c *credentials) validate() string {
	c.Email = strings.TrimSpace(c.Email)
	switch {
	case c.Email == "":
		return "Email é obrigatório"
	case c.Password == "":
		return "Senha é obrigatória"
	}
	return ""
}

// SignUp handles POST /auth/v1/signup.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	session, err := h.auth.SignUp(r.Context(), req.Email, req.Password, req.Data.FullName)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, user_services.ErrEmailTaken) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Token handles POST /auth/v1/token (password grant).
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if gt := r.URL.Query().Get("grant_type"); gt != "" && gt != "password" {
		writeError(w, "unsupported grant_type", http.StatusBadRequest)
		return
	}

	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	session, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Logout handles POST /auth/v1/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(r.Context(), middleware.TokenFromContext(r.Context())); err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// User handles GET /auth/v1/user.
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, "User not authenticated", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, domain.SessionUserFrom(user))
}

// Authorize handles GET /auth/v1/authorize and returns the provider URL.
func (h *AuthHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	url, err := h.auth.AuthorizeURL(q.Get("provider"), q.Get("redirect_to"))
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
