// File: internal/client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services"
)

type Config struct {
	APIURL  string // base for /functions/v1
	AuthURL string // base for /auth/v1; defaults to APIURL
	APIKey  string // sent as the apikey header when set
	Timeout time.Duration
	Retry   *RetryConfig
}

func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("REVIVAR_API_URL is required")
	}
	if _, err := url.Parse(c.APIURL); err != nil {
		return fmt.Errorf("invalid REVIVAR_API_URL: %w", err)
	}
	return nil
}

// Client talks to the function and auth endpoints over HTTP.
type Client struct {
	functionsURL string
	authURL      string
	apiKey       string
	http         *http.Client
	retry        *RetryConfig
	logger       services.Logger
}

func New(cfg Config, logger services.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = cfg.APIURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry == nil {
		cfg.Retry = DefaultRetryConfig()
	}
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &Client{
		functionsURL: strings.TrimRight(cfg.APIURL, "/") + "/functions/v1",
		authURL:      strings.TrimRight(cfg.AuthURL, "/") + "/auth/v1",
		apiKey:       cfg.APIKey,
		http:         &http.Client{Timeout: cfg.Timeout},
		retry:        cfg.Retry,
		logger:       logger,
	}, nil
}

// ConversationRef identifies the conversation being saved. An empty ID asks
// the server to create one.
type ConversationRef struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
}

type SaveConversationRequest struct {
	Conversation ConversationRef  `json:"conversation"`
	Messages     []domain.Message `json:"messages"`
}

type ConversationMessages struct {
	Conversation *domain.Conversation `json:"conversation"`
	Messages     []domain.Message     `json:"messages"`
}

type request struct {
	operation string
	method    string
	url       string
	token     string
	body      any
	// idempotent requests are retried on transient failures
	idempotent bool
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	send := func(ctx context.Context) error {
		return c.send(ctx, req, out)
	}
	if !req.idempotent {
		return send(ctx)
	}
	return RetryWithBackoff(ctx, c.retry, send)
}

func (c *Client) send(ctx context.Context, req request, out any) error {
	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return &APIError{Type: ErrTypeValidation, Operation: req.operation, Message: "invalid payload", Cause: err}
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, body)
	if err != nil {
		return &APIError{Type: ErrTypeNetwork, Operation: req.operation, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("apikey", c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("request failed", "operation", req.operation, "error", err)
		return &APIError{Type: ErrTypeNetwork, Operation: req.operation, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("request completed",
		"operation", req.operation,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	return c.handleResponse(req.operation, resp, out)
}

func (c *Client) handleResponse(operation string, resp *http.Response, out any) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Type: ErrTypeNetwork, Operation: operation, Status: resp.StatusCode, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Type:      errorTypeForStatus(resp.StatusCode),
			Operation: operation,
			Status:    resp.StatusCode,
			Message:   errorMessage(raw, resp.Status),
		}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Type: ErrTypeDecode, Operation: operation, Status: resp.StatusCode, Message: "invalid response", Cause: err}
	}
	return nil
}

// errorMessage extracts the human readable text from an error body. The
// functions answer {"error"}; hosted auth servers use msg or error_description.
func errorMessage(raw []byte, fallback string) string {
	var body struct {
		Error            string `json:"error"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, s := range []string{body.ErrorDescription, body.Msg, body.Error, body.Message} {
			if s != "" {
				return s
			}
		}
	}
	if s := strings.TrimSpace(string(raw)); s != "" && len(s) < 200 {
		return s
	}
	return fallback
}

func (c *Client) functionURL(name string) string {
	return c.functionsURL + "/" + name
}

// ListConversations returns the caller's conversations, most recent first.
func (c *Client) ListConversations(ctx context.Context, token string) ([]domain.Conversation, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	var out struct {
		Conversations []domain.Conversation `json:"conversations"`
	}
	err := c.do(ctx, request{
		operation:  "get-conversations",
		method:     http.MethodPost,
		url:        c.functionURL("get-conversations"),
		token:      token,
		idempotent: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Conversations, nil
}

// SaveConversation upserts a conversation and its transcript and returns the
// conversation id. It is never retried: a retried create would add a second
// conversation.
func (c *Client) SaveConversation(ctx context.Context, token string, req SaveConversationRequest) (string, error) {
	if token == "" {
		return "", ErrNotAuthenticated
	}
	if req.Messages == nil {
		req.Messages = []domain.Message{}
	}
	var out struct {
		Success        bool   `json:"success"`
		ConversationID string `json:"conversation_id"`
	}
	err := c.do(ctx, request{
		operation: "save-conversation",
		method:    http.MethodPost,
		url:       c.functionURL("save-conversation"),
		token:     token,
		body:      req,
	}, &out)
	if err != nil {
		return "", err
	}
	if !out.Success || out.ConversationID == "" {
		return "", &APIError{Type: ErrTypeDecode, Operation: "save-conversation", Message: "conversation id missing from response"}
	}
	return out.ConversationID, nil
}

// GetConversationMessages loads a conversation the caller owns.
func (c *Client) GetConversationMessages(ctx context.Context, token, conversationID string) (*ConversationMessages, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	var out ConversationMessages
	err := c.do(ctx, request{
		operation:  "get-conversation-messages",
		method:     http.MethodPost,
		url:        c.functionURL("get-conversation-messages"),
		token:      token,
		body:       map[string]string{"conversation_id": conversationID},
		idempotent: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCheckout asks the server for a hosted checkout URL. An empty URL in
// a successful response is returned as is; the caller decides what it means.
func (c *Client) CreateCheckout(ctx context.Context, token, planID string) (string, error) {
	if token == "" {
		return "", ErrNotAuthenticated
	}
	var out struct {
		URL string `json:"url"`
	}
	err := c.do(ctx, request{
		operation: "create-checkout",
		method:    http.MethodPost,
		url:       c.functionURL("create-checkout"),
		token:     token,
		body:      map[string]string{"plan_id": planID},
	}, &out)
	if err != nil {
		return "", err
	}
	return out.URL, nil
}

// LogEvent reports a client side event to the server log.
func (c *Client) LogEvent(ctx context.Context, level, message string, details any) error {
	return c.do(ctx, request{
		operation: "client-log",
		method:    http.MethodPost,
		url:       c.functionURL("client-log"),
		body: map[string]any{
			"level":   level,
			"message": message,
			"context": details,
		},
	}, nil)
}
