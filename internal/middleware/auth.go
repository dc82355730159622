package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/set-night/tasksplit/internal/domain"
)

type ctxKey string

const UserKey ctxKey = "user"

// UserResolver maps a bearer token to its user.
type UserResolver interface {
	ResolveUser(ctx context.Context, token string) (*domain.User, error)
}

// GetUser extracts user from context.
func GetUser(ctx context.Context) *domain.User {
	u, ok := ctx.Value(UserKey).(*domain.User)
	if !ok {
		return nil
	}
	return u
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// Authenticate loads the user for the Authorization: Bearer token into the
// request context. Requests without a valid token get 401.
func Authenticate(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			token = strings.TrimSpace(token)
			if !ok || token == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			user, err := resolver.ResolveUser(r.Context(), token)
			if err != nil {
				if !errors.Is(err, domain.ErrUnauthorized) {
					slog.Error("failed to resolve user", "error", err, "request_id", GetRequestID(r.Context()))
				}
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			markUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
