// File: internal/client/auth.go
package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
)

type credentials struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

func validateCredentials(operation, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return &APIError{Type: ErrTypeValidation, Operation: operation, Message: "Email e senha são obrigatórios"}
	}
	return nil
}

// SignUp registers a new account and returns its first session.
func (c *Client) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	if err := validateCredentials("signup", email, password); err != nil {
		return nil, err
	}
	var session domain.Session
	err := c.do(ctx, request{
		operation: "signup",
		method:    http.MethodPost,
		url:       c.authURL + "/signup",
		body:      credentials{Email: strings.TrimSpace(email), Password: password},
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SignIn exchanges a password for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	if err := validateCredentials("signin", email, password); err != nil {
		return nil, err
	}
	var session domain.Session
	err := c.do(ctx, request{
		operation: "signin",
		method:    http.MethodPost,
		url:       c.authURL + "/token?grant_type=password",
		body:      credentials{Email: strings.TrimSpace(email), Password: password},
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SignOut revokes token on the server.
func (c *Client) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return ErrNotAuthenticated
	}
	return c.do(ctx, request{
		operation: "logout",
		method:    http.MethodPost,
		url:       c.authURL + "/logout",
		token:     token,
	}, nil)
}

// GetUser returns the profile behind token, failing when the token is no
// longer valid.
func (c *Client) GetUser(ctx context.Context, token string) (*domain.SessionUser, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	var user domain.SessionUser
	err := c.do(ctx, request{
		operation:  "user",
		method:     http.MethodGet,
		url:        c.authURL + "/user",
		token:      token,
		idempotent: true,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AuthorizeURL returns where to send the user for an OAuth provider login.
func (c *Client) AuthorizeURL(ctx context.Context, provider, redirectTo string) (string, error) {
	q := url.Values{}
	q.Set("provider", provider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	var out struct {
		URL string `json:"url"`
	}
	err := c.do(ctx, request{
		operation:  "authorize",
		method:     http.MethodGet,
		url:        c.authURL + "/authorize?" + q.Encode(),
		idempotent: true,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.URL, nil
}
