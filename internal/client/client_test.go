package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/client"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/handlers"
	convrepo "github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/conversation"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/message"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/user"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services/conversation"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services/user_services"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/testutil"
)

type stubCheckout struct{ url string }

func (s *stubCheckout) CreateCheckout(ctx context.Context, u *domain.User, planID, origin string) (string, error) {
	return s.url, nil
}

// newBackend serves the real router over an in-memory database.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	db := testutil.NewDB(t)
	authSvc := user_services.NewAuthService(user.NewGormUserRepository(db), nil, "test-secret", time.Hour,
		"https://accounts.example.com/o/oauth2/auth", nil)
	convSvc := conversation.NewService(convrepo.NewGormConversationRepository(db), message.NewMessageRepository(db), nil)

	srv := httptest.NewServer(handlers.NewRouter(handlers.RouterDeps{
		Functions:     handlers.NewFunctionsHandler(convSvc, &stubCheckout{url: "https://checkout.example.com/s/1"}, nil),
		Auth:          handlers.NewAuthHandler(authSvc),
		Authenticator: authSvc,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, url string) *client.Client {
	t.Helper()
	c, err := client.New(client.Config{
		APIURL: url,
		Retry:  &client.RetryConfig{MaxAttempts: 3, Delay: time.Millisecond},
	}, nil)
	require.NoError(t, err)
	return c
}

func TestConversationRoundTrip(t *testing.T) {
	srv := newBackend(t)
	c := newClient(t, srv.URL)
	ctx := context.Background()

	session, err := c.SignUp(ctx, "ana@example.com", "segredo123")
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessToken)

	now := time.Now().UTC().Truncate(time.Millisecond)
	transcript := []domain.Message{
		domain.NewUserMessage("Gerar com GPT-4", now),
		domain.NewAIMessage(`Aqui está o resultado para "Gerar com GPT-4"`, domain.ModelGPT, nil, now),
		domain.NewUserMessage("Restaurar foto antiga", now.Add(time.Second)),
	}

	id, err := c.SaveConversation(ctx, session.AccessToken, client.SaveConversationRequest{
		Conversation: client.ConversationRef{Title: domain.TitleFromMessages(transcript)},
		Messages:     transcript,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// Resending the same transcript must not duplicate rows.
	again, err := c.SaveConversation(ctx, session.AccessToken, client.SaveConversationRequest{
		Conversation: client.ConversationRef{ID: id, Title: "Gerar com GPT-4"},
		Messages:     transcript,
	})
	require.NoError(t, err)
	assert.Equal(t, id, again)

	loaded, err := c.GetConversationMessages(ctx, session.AccessToken, id)
	require.NoError(t, err)
	require.Len(t, loaded.Messages, len(transcript))
	for i, m := range loaded.Messages {
		assert.Equal(t, transcript[i].ID, m.ID)
		assert.Equal(t, transcript[i].Role, m.Role)
		assert.Equal(t, transcript[i].Content, m.Content)
		assert.Equal(t, transcript[i].ModelType, m.ModelType)
	}

	list, err := c.ListConversations(ctx, session.AccessToken)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
}

func TestForeignConversationIsNotFound(t *testing.T) {
	srv := newBackend(t)
	c := newClient(t, srv.URL)
	ctx := context.Background()

	owner, err := c.SignUp(ctx, "owner@example.com", "segredo123")
	require.NoError(t, err)
	other, err := c.SignUp(ctx, "other@example.com", "segredo123")
	require.NoError(t, err)

	id, err := c.SaveConversation(ctx, owner.AccessToken, client.SaveConversationRequest{
		Conversation: client.ConversationRef{Title: "Privada"},
		Messages:     []domain.Message{domain.NewUserMessage("oi", time.Now())},
	})
	require.NoError(t, err)

	_, err = c.GetConversationMessages(ctx, other.AccessToken, id)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Conversation not found or unauthorized access", apiErr.Message)
}

func TestSignInFailureCarriesServerMessage(t *testing.T) {
	srv := newBackend(t)
	c := newClient(t, srv.URL)

	_, err := c.SignIn(context.Background(), "nobody@example.com", "errada123")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid login credentials", apiErr.Message)
}

func TestEmptyCredentialsNeverReachTheNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()
	c := newClient(t, srv.URL)

	_, err := c.SignIn(context.Background(), " ", "x")
	assert.Error(t, err)
	_, err = c.ListConversations(context.Background(), "")
	assert.ErrorIs(t, err, client.ErrNotAuthenticated)
	assert.Zero(t, calls.Load())
}

func TestCheckoutAndAuthorize(t *testing.T) {
	srv := newBackend(t)
	c := newClient(t, srv.URL)
	ctx := context.Background()

	session, err := c.SignUp(ctx, "pay@example.com", "segredo123")
	require.NoError(t, err)

	url, err := c.CreateCheckout(ctx, session.AccessToken, "premium")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example.com/s/1", url)

	authURL, err := c.AuthorizeURL(ctx, "google", "http://localhost/chat")
	require.NoError(t, err)
	assert.Contains(t, authURL, "accounts.example.com")
}

func TestIdempotentCallsRetryTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"conversations": []any{}})
	}))
	defer srv.Close()
	c := newClient(t, srv.URL)

	list, err := c.ListConversations(context.Background(), "tok")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSaveIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	c := newClient(t, srv.URL)

	_, err := c.SaveConversation(context.Background(), "tok", client.SaveConversationRequest{})
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRemoteSessionStore(t *testing.T) {
	srv := newBackend(t)
	c := newClient(t, srv.URL)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	store := client.NewRemoteSessionStore(c, path)
	var seen []*domain.Session
	unsubscribe := store.OnAuthStateChange(func(s *domain.Session) { seen = append(seen, s) })
	defer unsubscribe()

	current, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	session, err := store.SignUp(ctx, "store@example.com", "segredo123")
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, session.AccessToken, seen[0].AccessToken)

	// A fresh store picks the persisted session up.
	restored, err := client.NewRemoteSessionStore(c, path).GetSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, "store@example.com", restored.User.Email)

	require.NoError(t, store.SignOut(ctx))
	require.Len(t, seen, 2)
	assert.Nil(t, seen[1])

	// The revoked token is rejected and the file is gone.
	_, err = c.GetUser(ctx, session.AccessToken)
	assert.Error(t, err)
	gone, err := client.NewRemoteSessionStore(c, path).GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
