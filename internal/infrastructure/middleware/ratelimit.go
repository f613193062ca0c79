package middleware

import (
	"encoding/json"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/logger"
)

// RateLimitMiddleware rejects requests with 429 once the shared limiter is
// exhausted. One limiter guards an upstream resource for every caller.
func RateLimitMiddleware(limiter *rate.Limiter, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				requestID := GetRequestID(r.Context())

				log.Warn("Rate limit exceeded", map[string]interface{}{
					"request_id":  requestID,
					"method":      r.Method,
					"path":        r.URL.Path,
					"remote_addr": r.RemoteAddr,
				})

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"error":       "Too many requests",
					"status":      http.StatusTooManyRequests,
					"description": "Refresh requests are rate limited. Please try again later.",
					"request_id":  requestID,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
