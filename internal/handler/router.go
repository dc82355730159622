package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/set-night/tasksplit/internal/middleware"
)

const (
	RouteBreakdown = "breakdown"
	RouteSessions  = "sessions"
)

// NewRouter creates the chi router with all routes and middleware.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := New(deps)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recover(logger))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(deps.Users))

		r.With(middleware.RateLimit(deps.Limiter, RouteSessions, deps.SessionRule)).
			Post("/sessions", h.CreateSession)
		r.Get("/sessions", h.ListSessions)
		r.Get("/sessions/{id}", h.GetSession)

		r.With(middleware.RateLimit(deps.Limiter, RouteBreakdown, deps.BreakdownRule)).
			Post("/breakdown", h.Breakdown)

		r.Patch("/steps", h.ToggleStep)
	})

	return r
}
