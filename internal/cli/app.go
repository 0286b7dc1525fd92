package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/authbridge"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/chat"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/checkoutbridge"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/client"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/clock"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/config"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/synchronizer"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/ui"
)

const (
	SessionModeRemote = "remote"
	SessionModeDemo   = "demo"
)

// App wires the client components together for one terminal session.
type App struct {
	out    io.Writer
	logger services.Logger

	api      *client.Client
	demo     *authbridge.DemoSessionStore
	auth     *authbridge.Bridge
	sync     *synchronizer.Synchronizer // nil in demo mode
	chat     *chat.Machine
	checkout *checkoutbridge.Bridge // nil in demo mode

	unsubscribe func()

	mu    sync.Mutex
	shown int
}

type appOptions struct {
	clock clock.Clock
}

type AppOption func(*appOptions)

// WithClock replaces the wall clock used for reply delays and autosave.
func WithClock(c clock.Clock) AppOption {
	return func(o *appOptions) { o.clock = c }
}

// lockedWriter serializes writes from timer callbacks and the prompt loop.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func NewApp(ctx context.Context, cfg *config.ClientConfig, out io.Writer, base *slog.Logger, opts ...AppOption) (*App, error) {
	o := appOptions{clock: clock.Real{}}
	for _, opt := range opts {
		opt(&o)
	}

	w := &lockedWriter{w: out}
	a := &App{out: w, logger: services.NewSlogLogger(base, "cli")}

	api, err := client.New(client.Config{
		APIURL:  cfg.APIURL,
		AuthURL: cfg.AuthURL,
		APIKey:  cfg.APIKey,
	}, services.NewSlogLogger(base, "client"))
	if err != nil {
		return nil, err
	}
	a.api = api

	term := ui.NewTerminal(w)
	var notifier ui.Notifier = term
	var store authbridge.SessionStore

	switch cfg.SessionMode {
	case SessionModeDemo:
		a.demo = authbridge.NewDemoSessionStore(cfg.DemoFile)
		store = a.demo
	case SessionModeRemote, "":
		store = client.NewRemoteSessionStore(api, cfg.SessionFile)
		notifier = ui.Reporting(term, a.report)
	default:
		return nil, fmt.Errorf("unknown REVIVAR_SESSION_MODE %q", cfg.SessionMode)
	}
	a.logger.Info("session store selected", "mode", cfg.SessionMode)

	a.auth = authbridge.New(ctx, store, notifier, term,
		authbridge.WithOAuthRedirect(cfg.AppURL+authbridge.ChatPath),
		authbridge.WithLogger(services.NewSlogLogger(base, "authbridge")),
	)

	var observer chat.TranscriptObserver
	if a.demo == nil {
		a.sync = synchronizer.New(api, a.auth, notifier, synchronizer.Config{
			AutosaveWait: cfg.AutosaveWait,
			Clock:        o.clock,
			Logger:       services.NewSlogLogger(base, "synchronizer"),
		})
		a.unsubscribe = a.auth.Subscribe(a.sync.HandleSessionChanged)
		a.checkout = checkoutbridge.New(api, a.auth, notifier, term, services.NewSlogLogger(base, "checkout"))
		observer = a.sync

		// The bridge applied the stored session before anyone subscribed.
		if a.auth.IsLoggedIn() {
			_ = a.sync.FetchConversations(ctx)
		}
	}

	a.chat = chat.NewMachine(chat.Config{
		Clock:    o.clock,
		Auth:     a.auth,
		Observer: observer,
		OnPrompt: a.showPrompt,
		OnChange: a.render,
		Logger:   services.NewSlogLogger(base, "chat"),
	})
	return a, nil
}

// report sends destructive notifications to the server log.
func (a *App) report(n ui.Notification) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := a.api.LogEvent(ctx, "warn", n.Title, map[string]string{"description": n.Description})
		if err != nil {
			a.logger.Debug("failed to report notification", "error", err)
		}
	}()
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) render(s chat.Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(s.Messages) < a.shown {
		a.shown = 0
	}
	for _, m := range s.Messages[a.shown:] {
		if m.Role == domain.RoleAI {
			a.printMessage(m)
		}
	}
	a.shown = len(s.Messages)
}

func (a *App) printMessage(m domain.Message) {
	if m.Role == domain.RoleUser {
		a.printf("Você: %s\n", m.Content)
		return
	}
	a.printf("IA (%s): %s\n", m.ModelType, m.Content)
	for _, img := range m.Images {
		a.printf("  imagem: %s\n", img)
	}
}

func (a *App) showPrompt(p chat.Prompt) {
	switch p {
	case chat.PromptUpgrade:
		a.printf("Desbloqueie o GPT-4: entre na sua conta e assine um plano com /assinar <plano>.\n")
	case chat.PromptLogin:
		a.printf("Limite de imagens gratuitas atingido. Entre com /login <email> <senha> para continuar.\n")
	}
}

// Close saves a transcript still waiting for autosave and stops every timer.
func (a *App) Close(ctx context.Context) {
	if a.sync != nil {
		if err := a.sync.Flush(ctx); err != nil && !errors.Is(err, client.ErrNotAuthenticated) {
			a.logger.Warn("final save failed", "error", err)
		}
	}
	a.chat.Close()
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.sync != nil {
		a.sync.Close()
	}
	a.auth.Close()
}
