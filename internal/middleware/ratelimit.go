// File: internal/middleware/ratelimit.go
package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/ratelimit"
)

// RateLimitMiddleware rejects callers that exceeded the limiter's budget.
// Successful (2xx) responses reset the caller's counter.
func RateLimitMiddleware(limiter *ratelimit.MemoryRateLimiter, name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := ratelimit.GetClientIP(r)
			identifier := name + ":" + clientIP

			allowed, info := limiter.Allow(identifier)
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.MaxAttempts()))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))

			if !allowed {
				slog.Warn("[RateLimit] blocked request", "endpoint", name, "ip", clientIP, "banned", info.Banned)

				if info.RetryAfter > 0 {
					w.Header().Set("Retry-After", fmt.Sprintf("%.0f", info.RetryAfter.Seconds()))
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)

				errorMsg := "Muitas tentativas. Tente novamente mais tarde."
				if info.Banned {
					errorMsg = fmt.Sprintf("Muitas tentativas falharam. Tente novamente em %d minutos.",
						int(info.RetryAfter.Minutes()))
				}
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"error":      errorMsg,
					"retryAfter": int(info.RetryAfter.Seconds()),
					"banned":     info.Banned,
				})
				return
			}

			wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapper, r)

			if wrapper.statusCode >= 200 && wrapper.statusCode < 300 {
				limiter.RecordSuccess(identifier)
			}
		})
	}
}
