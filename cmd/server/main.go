// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/config"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/handlers"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/ratelimit"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository"
	convrepo "github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/conversation"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/message"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/plan"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/supabase"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/user"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services/checkout"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services/conversation"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services/user_services"
)

func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}

func main() {
	cfg := config.Load()

	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLog()
	slog.SetDefault(logger)

	ctx := context.Background()

	db, err := repository.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		fatal("DB Error", "error", err)
	}
	if err := repository.Migrate(db); err != nil {
		fatal("DB Migration Error", "error", err)
	}

	// --- Repositories ---
	userRepo := user.NewGormUserRepository(db)
	planRepo := plan.NewGormPlanRepository(db)

	var conversations convrepo.ConversationRepository = convrepo.NewGormConversationRepository(db)
	var messages message.MessageRepository = message.NewMessageRepository(db)
	if cfg.StoreDriver == "supabase" {
		store, err := supabase.New(supabase.Config{URL: cfg.SupabaseURL, APIKey: cfg.SupabaseServiceRoleKey})
		if err != nil {
			fatal("Failed to initialize Supabase store", "error", err)
		}
		conversations, messages = store, store
	}
	slog.Info("conversation store selected", "driver", cfg.StoreDriver, "db_driver", cfg.DBDriver)

	if n, err := plan.SeedFromFile(ctx, planRepo, cfg.PlansFile); err != nil {
		slog.Warn("plan catalog not loaded", "file", cfg.PlansFile, "error", err)
	} else {
		slog.Info("plan catalog loaded", "file", cfg.PlansFile, "plans", n)
	}

	// --- Services ---
	var revocations user_services.Revocations = user_services.NewMemoryRevocations()
	if cfg.RedisURL != "" {
		rr, err := user_services.NewRedisRevocations(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable; token revocation is local to this instance", "error", err)
		} else {
			defer rr.Close()
			revocations = rr
		}
	}

	authService := user_services.NewAuthService(userRepo, revocations, cfg.JWTSecretKey, cfg.TokenTTL,
		cfg.GoogleAuthorizeURL, services.NewSlogLogger(logger, "auth"))

	var authenticator user_services.Authenticator = authService
	var authHandler *handlers.AuthHandler
	switch cfg.AuthDriver {
	case "supabase":
		sa, err := user_services.NewSupabaseAuthenticator(cfg.SupabaseURL, cfg.SupabaseAnonKey, services.NewSlogLogger(logger, "auth"))
		if err != nil {
			fatal("Failed to initialize Supabase authenticator", "error", err)
		}
		authenticator = sa
		slog.Info("sessions are issued by Supabase; /auth/v1 is not served here")
	default:
		authHandler = handlers.NewAuthHandler(authService)
	}

	conversationService := conversation.NewService(conversations, messages, services.NewSlogLogger(logger, "conversation"))

	var provider checkout.Provider
	checkoutCfg := checkout.DefaultConfig()
	checkoutCfg.SecretKey = cfg.StripeSecretKey
	if cfg.CheckoutDefaultOrigin != "" {
		checkoutCfg.DefaultOrigin = cfg.CheckoutDefaultOrigin
	}
	if sp, err := checkout.NewStripeProvider(checkoutCfg); err != nil {
		slog.Warn("checkout disabled", "error", err)
	} else {
		provider = sp
	}
	checkoutService := checkout.NewService(provider, planRepo, checkoutCfg.DefaultOrigin, services.NewSlogLogger(logger, "checkout"))

	// --- Router Setup ---
	signInLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultAuthConfig())
	defer signInLimiter.Close()
	signUpLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.SignUpConfig())
	defer signUpLimiter.Close()

	router := handlers.NewRouter(handlers.RouterDeps{
		Functions:     handlers.NewFunctionsHandler(conversationService, checkoutService, services.NewSlogLogger(logger, "functions")),
		Auth:          authHandler,
		Authenticator: authenticator,
		SignInLimiter: signInLimiter,
		SignUpLimiter: signUpLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("server starting", "addr", srv.Addr, "env", cfg.Environment, "auth_driver", cfg.AuthDriver)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("Server startup failed", "error", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down server gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
		return
	}
	slog.Info("server stopped gracefully")
}
