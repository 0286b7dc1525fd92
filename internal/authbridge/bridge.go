// Package authbridge keeps the client's view of the current session and
// announces every change on a typed event channel.
package authbridge

import (
	"context"
	"sync"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/events"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/ui"
)

const (
	ChatPath    = "/chat"
	LandingPath = "/"
)

// SessionStore is the identity provider the bridge reads from. A nil session
// means logged out.
type SessionStore interface {
	GetSession(ctx context.Context) (*domain.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error)
	SignUp(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context) error
	OAuthURL(ctx context.Context, provider, redirectTo string) (string, error)
	// OnAuthStateChange registers fn and returns a function that removes it.
	OnAuthStateChange(fn func(*domain.Session)) func()
}

type Option func(*Bridge)

// WithoutRouting stops the bridge from navigating on login and logout.
func WithoutRouting() Option {
	return func(b *Bridge) { b.routing = false }
}

// WithOAuthRedirect sets where the OAuth provider sends the user back to.
func WithOAuthRedirect(url string) Option {
	return func(b *Bridge) { b.oauthRedirect = url }
}

func WithLogger(logger services.Logger) Option {
	return func(b *Bridge) { b.logger = logger }
}

type Bridge struct {
	store         SessionStore
	notifier      ui.Notifier
	navigator     ui.Navigator
	bus           *events.Bus[events.SessionChanged]
	logger        services.Logger
	routing       bool
	oauthRedirect string

	mu          sync.Mutex
	session     *domain.Session
	loggedIn    bool
	loading     bool
	initialized bool

	unsubscribeStore func()
	closeOnce        sync.Once
}

// New subscribes to the store's change stream and then asks the store for
// the current session once. Both paths go through applySession.
func New(ctx context.Context, store SessionStore, notifier ui.Notifier, navigator ui.Navigator, opts ...Option) *Bridge {
	b := &Bridge{
		store:     store,
		notifier:  notifier,
		navigator: navigator,
		bus:       events.NewBus[events.SessionChanged](),
		logger:    &services.NoOpLogger{},
		routing:   true,
		loading:   true,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.unsubscribeStore = store.OnAuthStateChange(func(s *domain.Session) {
		b.applySession(s, true)
	})

	session, err := store.GetSession(ctx)
	if err != nil {
		b.logger.Warn("initial session query failed", "error", err)
	}
	b.applySession(session, false)
	return b
}

// applySession is the single place the cached session changes. Subscribers
// hear about it only when the token or the logged-in flag differs from the
// last published state.
func (b *Bridge) applySession(s *domain.Session, route bool) {
	loggedIn := s != nil && s.User.ID != ""

	b.mu.Lock()
	changed := !b.initialized || b.loggedIn != loggedIn || token(b.session) != token(s)
	transition := b.initialized && b.loggedIn != loggedIn
	b.session = s
	b.loggedIn = loggedIn
	b.loading = false
	b.initialized = true
	b.mu.Unlock()

	if !changed {
		return
	}

	evt := events.SessionChanged{IsLoggedIn: loggedIn}
	if loggedIn {
		user := s.User
		evt.User = &user
	}
	b.logger.Debug("session changed", "logged_in", loggedIn)
	b.bus.Publish(evt)

	if route && transition && b.routing && b.navigator != nil {
		if loggedIn {
			b.navigator.Navigate(ChatPath)
		} else {
			b.navigator.Navigate(LandingPath)
		}
	}
}

func token(s *domain.Session) string {
	if s == nil {
		return ""
	}
	return s.AccessToken
}

// CurrentSession returns the cached session or nil. Callers must not modify it.
func (b *Bridge) CurrentSession() *domain.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session
}

func (b *Bridge) IsLoggedIn() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loggedIn
}

func (b *Bridge) IsLoading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

// Subscribe registers fn for session changes.
func (b *Bridge) Subscribe(fn func(events.SessionChanged)) func() {
	return b.bus.Subscribe(fn)
}

func (b *Bridge) setLoading(v bool) {
	b.mu.Lock()
	b.loading = v
	b.mu.Unlock()
}

func (b *Bridge) SignIn(ctx context.Context, email, password string) error {
	b.setLoading(true)
	defer b.setLoading(false)

	session, err := b.store.SignInWithPassword(ctx, email, password)
	if err != nil {
		b.fail("Erro ao fazer login", "Ocorreu um erro ao tentar fazer login", err)
		return err
	}
	b.applySession(session, true)
	b.notifier.Notify(ui.Notification{
		Title:       "Login realizado com sucesso",
		Description: "Bem-vindo(a) de volta!",
	})
	return nil
}

func (b *Bridge) SignUp(ctx context.Context, email, password string) error {
	b.setLoading(true)
	defer b.setLoading(false)

	session, err := b.store.SignUp(ctx, email, password)
	if err != nil {
		b.fail("Erro ao criar conta", "Ocorreu um erro ao tentar criar sua conta", err)
		return err
	}
	if session != nil {
		b.applySession(session, true)
	}
	b.notifier.Notify(ui.Notification{
		Title:       "Conta criada com sucesso",
		Description: "Verifique seu email para confirmar seu cadastro",
	})
	return nil
}

// SignInWithGoogle sends the user to the provider's consent page. The
// session arrives later through the store's change stream.
func (b *Bridge) SignInWithGoogle(ctx context.Context) error {
	b.setLoading(true)
	defer b.setLoading(false)

	url, err := b.store.OAuthURL(ctx, "google", b.oauthRedirect)
	if err != nil {
		b.fail("Erro ao fazer login com Google", "Ocorreu um erro ao tentar fazer login com Google", err)
		return err
	}
	if b.navigator != nil {
		b.navigator.Redirect(url)
	}
	return nil
}

func (b *Bridge) SignOut(ctx context.Context) error {
	b.setLoading(true)
	defer b.setLoading(false)

	if err := b.store.SignOut(ctx); err != nil {
		b.fail("Erro ao fazer logout", "Ocorreu um erro ao tentar sair", err)
		return err
	}
	b.applySession(nil, true)
	b.notifier.Notify(ui.Notification{
		Title:       "Logout realizado",
		Description: "Você foi desconectado com sucesso",
	})
	return nil
}

func (b *Bridge) fail(title, fallback string, err error) {
	description := fallback
	if err != nil && err.Error() != "" {
		description = err.Error()
	}
	b.logger.Warn(title, "error", err)
	b.notifier.Notify(ui.Notification{Title: title, Description: description, Variant: ui.VariantDestructive})
}

// Close releases the store subscription.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		if b.unsubscribeStore != nil {
			b.unsubscribeStore()
		}
	})
}
