package middleware

import (
	"net"
	"net/http"
	"strconv"

	"portal-api/internal/config"
	"portal-api/internal/ratelimit"
	"portal-api/internal/services"

	"github.com/gorilla/mux"
)

// RateLimit performs admission control for one category. The selector never
// errors, so a limiter outage degrades to the in-process fallback instead of
// blocking traffic.
func RateLimit(selector *ratelimit.Selector, category config.RateLimitCategory) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := selector.CheckLimit(r.Context(), category, clientIdentifier(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				http.Error(w, "Rate limit exceeded. Please retry after the reset time.", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIdentifier keys the window on the authenticated user when present,
// otherwise on the caller's IP.
func clientIdentifier(r *http.Request) string {
	if user, ok := services.UserFromContext(r.Context()); ok {
		return user.ID.String()
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
