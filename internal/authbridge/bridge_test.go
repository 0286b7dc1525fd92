package authbridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/client"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/events"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/ui"
)

// fakeStore is a SessionStore whose answers are set by the test.
type fakeStore struct {
	session    *domain.Session
	err        error
	oauthURL   string
	listener   func(*domain.Session)
	unsubbed   bool
	signInHits int
}

func (f *fakeStore) GetSession(ctx context.Context) (*domain.Session, error) {
	return f.session, nil
}

func (f *fakeStore) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	f.signInHits++
	if f.err != nil {
		return nil, f.err
	}
	s := &domain.Session{AccessToken: "tok-" + email, User: domain.SessionUser{ID: "u-" + email, Email: email}}
	f.session = s
	f.emit(s)
	return s, nil
}

func (f *fakeStore) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	return f.SignInWithPassword(ctx, email, password)
}

func (f *fakeStore) SignOut(ctx context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.session = nil
	f.emit(nil)
	return nil
}

func (f *fakeStore) OAuthURL(ctx context.Context, provider, redirectTo string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.oauthURL + "?redirect_to=" + redirectTo, nil
}

func (f *fakeStore) OnAuthStateChange(fn func(*domain.Session)) func() {
	f.listener = fn
	return func() { f.unsubbed = true }
}

func (f *fakeStore) emit(s *domain.Session) {
	if f.listener != nil {
		f.listener(s)
	}
}

func collect(b *Bridge) *[]events.SessionChanged {
	var got []events.SessionChanged
	b.Subscribe(func(e events.SessionChanged) { got = append(got, e) })
	return &got
}

func TestInitialSessionIsApplied(t *testing.T) {
	store := &fakeStore{session: &domain.Session{AccessToken: "t1", User: domain.SessionUser{ID: "u1"}}}
	rec := &ui.Recorder{}

	b := New(context.Background(), store, rec, rec)
	defer b.Close()

	assert.True(t, b.IsLoggedIn())
	assert.False(t, b.IsLoading())
	assert.Equal(t, "t1", b.CurrentSession().AccessToken)
	assert.Empty(t, rec.Paths(), "the initial query never navigates")
}

func TestSignInPublishesOnceAndRoutes(t *testing.T) {
	store := &fakeStore{}
	rec := &ui.Recorder{}
	b := New(context.Background(), store, rec, rec)
	defer b.Close()
	got := collect(b)

	require.NoError(t, b.SignIn(context.Background(), "ana@example.com", "x"))

	// The store's change stream and the direct result carry the same
	// session; subscribers hear about it once.
	require.Len(t, *got, 1)
	assert.True(t, (*got)[0].IsLoggedIn)
	assert.Equal(t, "ana@example.com", (*got)[0].User.Email)
	assert.Equal(t, []string{ChatPath}, rec.Paths())
	assert.Equal(t, "Login realizado com sucesso", rec.Last().Title)
	assert.False(t, b.IsLoading())
}

func TestSignOutRoutesToLanding(t *testing.T) {
	store := &fakeStore{session: &domain.Session{AccessToken: "t1", User: domain.SessionUser{ID: "u1"}}}
	rec := &ui.Recorder{}
	b := New(context.Background(), store, rec, rec)
	defer b.Close()
	got := collect(b)

	require.NoError(t, b.SignOut(context.Background()))

	require.Len(t, *got, 1)
	assert.False(t, (*got)[0].IsLoggedIn)
	assert.Nil(t, (*got)[0].User)
	assert.Nil(t, b.CurrentSession())
	assert.Equal(t, []string{LandingPath}, rec.Paths())
	assert.Equal(t, "Logout realizado", rec.Last().Title)
}

func TestFailureKeepsSessionAndResetsLoading(t *testing.T) {
	initial := &domain.Session{AccessToken: "t1", User: domain.SessionUser{ID: "u1"}}
	store := &fakeStore{session: initial}
	rec := &ui.Recorder{}
	b := New(context.Background(), store, rec, rec)
	defer b.Close()
	got := collect(b)

	store.err = errors.New("Invalid login credentials")
	err := b.SignIn(context.Background(), "ana@example.com", "errada")
	require.Error(t, err)

	assert.Empty(t, *got)
	assert.Same(t, initial, b.CurrentSession())
	assert.False(t, b.IsLoading())
	last := rec.Last()
	assert.Equal(t, "Erro ao fazer login", last.Title)
	assert.Equal(t, "Invalid login credentials", last.Description)
	assert.Equal(t, ui.VariantDestructive, last.Variant)
}

func TestTokenRefreshPublishesWithoutRouting(t *testing.T) {
	store := &fakeStore{session: &domain.Session{AccessToken: "t1", User: domain.SessionUser{ID: "u1"}}}
	rec := &ui.Recorder{}
	b := New(context.Background(), store, rec, rec)
	defer b.Close()
	got := collect(b)

	store.emit(&domain.Session{AccessToken: "t2", User: domain.SessionUser{ID: "u1"}})

	require.Len(t, *got, 1)
	assert.True(t, (*got)[0].IsLoggedIn)
	assert.Empty(t, rec.Paths())
}

func TestWithoutRouting(t *testing.T) {
	store := &fakeStore{}
	rec := &ui.Recorder{}
	b := New(context.Background(), store, rec, rec, WithoutRouting())
	defer b.Close()

	require.NoError(t, b.SignIn(context.Background(), "ana@example.com", "x"))
	assert.Empty(t, rec.Paths())
}

func TestSignInWithGoogleRedirects(t *testing.T) {
	store := &fakeStore{oauthURL: "https://auth.example.com/authorize"}
	rec := &ui.Recorder{}
	b := New(context.Background(), store, rec, rec, WithOAuthRedirect("http://localhost/chat"))
	defer b.Close()

	require.NoError(t, b.SignInWithGoogle(context.Background()))
	assert.Equal(t, []string{"https://auth.example.com/authorize?redirect_to=http://localhost/chat"}, rec.Redirects())
	assert.False(t, b.IsLoading())
}

func TestCloseReleasesStoreSubscription(t *testing.T) {
	store := &fakeStore{}
	b := New(context.Background(), store, &ui.Recorder{}, nil)
	b.Close()
	b.Close()
	assert.True(t, store.unsubbed)
}

func TestDemoStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviverImagem_user.json")
	store := NewDemoSessionStore(path)
	rec := &ui.Recorder{}
	b := New(context.Background(), store, rec, rec)
	defer b.Close()
	assert.False(t, b.IsLoggedIn())

	require.NoError(t, b.SignIn(context.Background(), "demo@example.com", "qualquer"))
	assert.True(t, b.IsLoggedIn())
	assert.Equal(t, "demo@example.com", b.CurrentSession().User.Email)

	// A second store on the same file sees the persisted profile.
	reloaded := NewDemoSessionStore(path)
	p := reloaded.Profile()
	assert.True(t, p.IsLoggedIn)
	assert.Equal(t, DemoGenerations, p.ImageGenerationsLeft)

	err := b.SignInWithGoogle(context.Background())
	assert.ErrorIs(t, err, ErrDemoOAuthUnavailable)

	require.NoError(t, b.SignOut(context.Background()))
	assert.False(t, NewDemoSessionStore(path).Profile().IsLoggedIn)
}

// authServer answers password sign-in and fails logout with logoutStatus.
func authServer(t *testing.T, logoutStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(domain.Session{
			AccessToken: "tok-ana",
			TokenType:   "bearer",
			User:        domain.SessionUser{ID: "u-ana", Email: "ana@example.com"},
		})
	})
	mux.HandleFunc("/auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(logoutStatus)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func remoteBridge(t *testing.T, srv *httptest.Server) (*Bridge, *ui.Recorder) {
	t.Helper()
	api, err := client.New(client.Config{
		APIURL:  srv.URL,
		Timeout: time.Second,
		Retry:   &client.RetryConfig{MaxAttempts: 1, Delay: time.Millisecond},
	}, nil)
	require.NoError(t, err)
	store := client.NewRemoteSessionStore(api, filepath.Join(t.TempDir(), "session.json"))
	rec := &ui.Recorder{}
	b := New(context.Background(), store, rec, rec)
	t.Cleanup(b.Close)
	require.NoError(t, b.SignIn(context.Background(), "ana@example.com", "segredo"))
	return b, rec
}

func TestFailedLogoutKeepsSession(t *testing.T) {
	b, rec := remoteBridge(t, authServer(t, http.StatusInternalServerError))
	got := collect(b)

	err := b.SignOut(context.Background())
	require.Error(t, err)

	assert.True(t, b.IsLoggedIn())
	assert.Equal(t, "tok-ana", b.CurrentSession().AccessToken)
	assert.Empty(t, *got, "no logged-out event")
	assert.Equal(t, []string{ChatPath}, rec.Paths(), "stays on the chat")
	assert.Equal(t, "Erro ao fazer logout", rec.Last().Title)
	assert.Equal(t, "boom", rec.Last().Description)
	assert.False(t, b.IsLoading())
}

func TestLogoutWithRejectedTokenClearsSession(t *testing.T) {
	b, rec := remoteBridge(t, authServer(t, http.StatusUnauthorized))
	got := collect(b)

	require.Error(t, b.SignOut(context.Background()))

	assert.False(t, b.IsLoggedIn())
	require.Len(t, *got, 1)
	assert.False(t, (*got)[0].IsLoggedIn)
	assert.Equal(t, []string{ChatPath, LandingPath}, rec.Paths())
}
