// File: internal/handlers/router.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/middleware"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/ratelimit"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services/user_services"
)

// RouterDeps collects what NewRouter wires together. Auth may be nil when
// sessions are issued by an external provider.
type RouterDeps struct {
	Functions     *FunctionsHandler
	Auth          *AuthHandler
	Authenticator user_services.Authenticator
	SignInLimiter *ratelimit.MemoryRateLimiter
	SignUpLimiter *ratelimit.MemoryRateLimiter
}

func NewRouter(d RouterDeps) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.CORS)
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	// Preflight requests are answered by the CORS middleware, but mux only
	// runs middleware for matched routes. A MatcherFunc rather than Methods
	// keeps other verbs on unknown paths a 404 instead of a 405.
	r.MatcherFunc(func(req *http.Request, _ *mux.RouteMatch) bool {
		return req.Method == http.MethodOptions
	}).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	// --- Functions ---
	fn := r.PathPrefix("/functions/v1").Subrouter()
	fn.HandleFunc("/client-log", LogClientEvent).Methods(http.MethodPost)

	protected := fn.NewRoute().Subrouter()
	protected.Use(middleware.NewBearerAuthMiddleware(d.Authenticator, http.StatusInternalServerError, middleware.FunctionAuthMessages))
	protected.HandleFunc("/save-conversation", d.Functions.SaveConversation).Methods(http.MethodPost)
	protected.HandleFunc("/get-conversation-messages", d.Functions.GetConversationMessages).Methods(http.MethodPost, http.MethodGet)
	protected.HandleFunc("/get-conversations", d.Functions.GetConversations).Methods(http.MethodPost, http.MethodGet)

	checkoutRoutes := fn.NewRoute().Subrouter()
	checkoutRoutes.Use(middleware.NewBearerAuthMiddleware(d.Authenticator, http.StatusInternalServerError, middleware.CheckoutAuthMessages))
	checkoutRoutes.HandleFunc("/create-checkout", d.Functions.CreateCheckout).Methods(http.MethodPost)

	// --- Auth ---
	if d.Auth != nil {
		authRoutes := r.PathPrefix("/auth/v1").Subrouter()

		signup := authRoutes.NewRoute().Subrouter()
		if d.SignUpLimiter != nil {
			signup.Use(middleware.RateLimitMiddleware(d.SignUpLimiter, "signup"))
		}
		signup.HandleFunc("/signup", d.Auth.SignUp).Methods(http.MethodPost)

		token := authRoutes.NewRoute().Subrouter()
		if d.SignInLimiter != nil {
			token.Use(middleware.RateLimitMiddleware(d.SignInLimiter, "signin"))
		}
		token.HandleFunc("/token", d.Auth.Token).Methods(http.MethodPost)

		authRoutes.HandleFunc("/authorize", d.Auth.Authorize).Methods(http.MethodGet)

		session := authRoutes.NewRoute().Subrouter()
		session.Use(middleware.NewBearerAuthMiddleware(d.Authenticator, http.StatusUnauthorized, middleware.FunctionAuthMessages))
		session.HandleFunc("/logout", d.Auth.Logout).Methods(http.MethodPost)
		session.HandleFunc("/user", d.Auth.User).Methods(http.MethodGet)
	}

	// Neither handler goes through r.Use middleware.
	r.NotFoundHandler = middleware.CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Not found", http.StatusNotFound)
	}))
	r.MethodNotAllowedHandler = middleware.CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}))
	return r
}
