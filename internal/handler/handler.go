package handler

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/set-night/tasksplit/internal/domain"
	"github.com/set-night/tasksplit/internal/middleware"
	"github.com/set-night/tasksplit/internal/ratelimit"
	"github.com/set-night/tasksplit/internal/service"
)

type SessionService interface {
	Create(ctx context.Context, userID uuid.UUID, prompt string) (*domain.Session, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.SessionSummary, error)
	Get(ctx context.Context, userID, sessionID uuid.UUID) (*domain.SessionWithRounds, error)
	SetStepCompleted(ctx context.Context, userID, stepID uuid.UUID, completed bool) error
}

type BreakdownService interface {
	Generate(ctx context.Context, userID, sessionID uuid.UUID, prompt string) (*service.BreakdownResult, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds all dependencies needed by the HTTP handlers.
type Handler struct {
	sessions   SessionService
	breakdowns BreakdownService
	db         Pinger
}

// Deps contains all dependencies required to construct the router.
type Deps struct {
	Sessions      SessionService
	Breakdowns    BreakdownService
	Users         middleware.UserResolver
	DB            Pinger
	Limiter       ratelimit.Limiter
	BreakdownRule ratelimit.Rule
	SessionRule   ratelimit.Rule
	Logger        *slog.Logger
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		sessions:   deps.Sessions,
		breakdowns: deps.Breakdowns,
		db:         deps.DB,
	}
}
