package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/handlers"
	convrepo "github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/conversation"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/message"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/user"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services/conversation"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services/user_services"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/testutil"
)

type stubCheckout struct {
	url    string
	origin string
	planID string
}

func (s *stubCheckout) CreateCheckout(ctx context.Context, u *domain.User, planID, origin string) (string, error) {
	s.planID, s.origin = planID, origin
	if planID != "premium" {
		return "", assert.AnError
	}
	return s.url, nil
}

type testServer struct {
	handler  http.Handler
	auth     *user_services.AuthService
	checkout *stubCheckout
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	authSvc := user_services.NewAuthService(user.NewGormUserRepository(db), nil, "test-secret", time.Hour,
		"https://auth.example.com/authorize", nil)
	convSvc := conversation.NewService(convrepo.NewGormConversationRepository(db), message.NewMessageRepository(db), nil)
	co := &stubCheckout{url: "https://checkout.example.com/s/1"}

	return &testServer{
		handler: handlers.NewRouter(handlers.RouterDeps{
			Functions:     handlers.NewFunctionsHandler(convSvc, co, nil),
			Auth:          handlers.NewAuthHandler(authSvc),
			Authenticator: authSvc,
		}),
		auth:     authSvc,
		checkout: co,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) signUp(t *testing.T, email string) string {
	t.Helper()
	session, err := s.auth.SignUp(context.Background(), email, "segredo123", "")
	require.NoError(t, err)
	return session.AccessToken
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	msg, _ := body["error"].(string)
	return msg
}

func TestPreflightOnEveryFunction(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{
		"/functions/v1/create-checkout",
		"/functions/v1/get-conversation-messages",
		"/functions/v1/save-conversation",
	} {
		rec := s.do(t, http.MethodOptions, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "ok", rec.Body.String(), path)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), path)
	}
}

func TestUnmatchedRoutesCarryCORSHeaders(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/functions/v1/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", errorOf(t, rec))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = s.do(t, http.MethodPut, "/functions/v1/save-conversation", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed", errorOf(t, rec))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "ana@example.com")
	now := time.Now().UTC().Truncate(time.Millisecond)

	msgs := []domain.Message{
		domain.NewUserMessage("Restaurar foto antiga", now),
		domain.NewAIMessage(`Aqui está o resultado para "Restaurar foto antiga"`, domain.ModelGemini, nil, now.Add(2*time.Second)),
	}
	rec := s.do(t, http.MethodPost, "/functions/v1/save-conversation", token, map[string]any{
		"conversation": map[string]any{"title": "Restaurar foto antiga"},
		"messages":     msgs,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var saved struct {
		Success        bool   `json:"success"`
		ConversationID string `json:"conversation_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.True(t, saved.Success)
	require.NotEmpty(t, saved.ConversationID)

	rec = s.do(t, http.MethodPost, "/functions/v1/get-conversation-messages", token,
		map[string]string{"conversation_id": saved.ConversationID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var loaded struct {
		Conversation domain.Conversation `json:"conversation"`
		Messages     []map[string]any    `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loaded))
	assert.Equal(t, saved.ConversationID, loaded.Conversation.ID)
	require.Len(t, loaded.Messages, 2)
	assert.Equal(t, "user", loaded.Messages[0]["role"])
	assert.Equal(t, "ai", loaded.Messages[1]["role"])
	assert.Equal(t, "gemini", loaded.Messages[1]["modelType"])
	assert.Contains(t, loaded.Messages[1], "timestamp")

	// GET with the query parameter works too.
	rec = s.do(t, http.MethodGet, "/functions/v1/get-conversation-messages?conversation_id="+saved.ConversationID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/functions/v1/get-conversations", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Conversations []domain.Conversation `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Conversations, 1)
	assert.Equal(t, "Restaurar foto antiga", listed.Conversations[0].Title)
}

func TestFailuresAnswer500WithError(t *testing.T) {
	s := newTestServer(t)
	ana := s.signUp(t, "ana@example.com")
	bia := s.signUp(t, "bia@example.com")

	rec := s.do(t, http.MethodPost, "/functions/v1/save-conversation", "", map[string]any{})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Missing Authorization header", errorOf(t, rec))

	rec = s.do(t, http.MethodPost, "/functions/v1/get-conversation-messages", ana, map[string]any{})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Missing conversation_id", errorOf(t, rec))

	rec = s.do(t, http.MethodPost, "/functions/v1/save-conversation", ana, map[string]any{
		"conversation": map[string]any{"title": "minha"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))

	rec = s.do(t, http.MethodPost, "/functions/v1/get-conversation-messages", bia,
		map[string]any{"conversation_id": saved["conversation_id"]})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, conversation.NotFoundMessage, errorOf(t, rec))

	rec = s.do(t, http.MethodPost, "/functions/v1/create-checkout", "", map[string]string{"plan_id": "premium"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Header de autorização ausente", errorOf(t, rec))
}

func TestCreateCheckout(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "ana@example.com")

	req := httptest.NewRequest(http.MethodPost, "/functions/v1/create-checkout", bytes.NewBufferString(`{"plan_id":"premium"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "https://checkout.example.com/s/1", body["url"])
	assert.Equal(t, "https://app.example.com", s.checkout.origin)

	rec = s.do(t, http.MethodPost, "/functions/v1/create-checkout", token, map[string]string{"plan_id": "gold"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, errorOf(t, rec))
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/auth/v1/signup", "", map[string]string{"email": "ana@example.com", "password": "segredo123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session domain.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.NotEmpty(t, session.AccessToken)

	rec = s.do(t, http.MethodPost, "/auth/v1/token?grant_type=password", "", map[string]string{"email": "ana@example.com", "password": "errada"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, user_services.ErrInvalidCredentials.Error(), errorOf(t, rec))

	rec = s.do(t, http.MethodPost, "/auth/v1/token?grant_type=password", "", map[string]string{"email": "ana@example.com", "password": "segredo123"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))

	rec = s.do(t, http.MethodGet, "/auth/v1/user", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var u domain.SessionUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	assert.Equal(t, "ana@example.com", u.Email)

	rec = s.do(t, http.MethodPost, "/auth/v1/logout", session.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/auth/v1/user", session.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/auth/v1/authorize?provider=google&redirect_to=https://app/chat", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var authz map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &authz))
	assert.Contains(t, authz["url"], "provider=google")
}

func TestHealthAndClientLog(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = s.do(t, http.MethodPost, "/functions/v1/client-log", "", map[string]string{"level": "error", "message": "save failed"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPost, "/functions/v1/client-log", "", map[string]string{"level": "info"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
