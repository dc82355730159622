package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/set-night/tasksplit/internal/ratelimit"
)

// RateLimit enforces rule per authenticated user on route. It must run after
// Authenticate. If the limiter fails the request is let through.
func RateLimit(limiter ratelimit.Limiter, route string, rule ratelimit.Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r.Context())
			if user == nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			d, err := limiter.Allow(r.Context(), user.ID.String(), route, rule)
			if err != nil {
				slog.Error("rate limit check failed", "error", err, "user_id", user.ID, "route", route)
				next.ServeHTTP(w, r)
				return
			}

			if !d.Allowed {
				secs := d.RetryAfterSeconds()
				slog.Debug("rate limited", "user_id", user.ID, "route", route, "retry_after", secs)
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				writeError(w, http.StatusTooManyRequests, fmt.Sprintf("Too many requests. Try again in %ds.", secs))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
