package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/set-night/tasksplit/internal/config"
	"github.com/set-night/tasksplit/internal/domain"
)

type SessionStore interface {
	CreateSession(ctx context.Context, userID uuid.UUID, prompt string) (*domain.Session, error)
	ListSessions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.SessionSummary, error)
	GetSessionDetail(ctx context.Context, userID, sessionID uuid.UUID) (*domain.SessionWithRounds, error)
	SetStepCompleted(ctx context.Context, userID, stepID uuid.UUID, completed bool) error
}

type SessionService struct {
	store SessionStore
}

func NewSessionService(store SessionStore) *SessionService {
	return &SessionService{store: store}
}

// Create stores a new untitled session for prompt.
func (s *SessionService) Create(ctx context.Context, userID uuid.UUID, prompt string) (*domain.Session, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: prompt is blank", domain.ErrInvalidInput)
	}
	sess, err := s.store.CreateSession(ctx, userID, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return sess, nil
}

// List returns the user's sessions newest first. Limit is clamped to
// [1, MaxSessionsPerPage] and defaults to SessionsPerPage.
func (s *SessionService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.SessionSummary, error) {
	if limit <= 0 {
		limit = config.SessionsPerPage
	}
	if limit > config.MaxSessionsPerPage {
		limit = config.MaxSessionsPerPage
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListSessions(ctx, userID, limit, offset)
}

func (s *SessionService) Get(ctx context.Context, userID, sessionID uuid.UUID) (*domain.SessionWithRounds, error) {
	return s.store.GetSessionDetail(ctx, userID, sessionID)
}

// SetStepCompleted is idempotent; setting the same value twice succeeds.
func (s *SessionService) SetStepCompleted(ctx context.Context, userID, stepID uuid.UUID, completed bool) error {
	return s.store.SetStepCompleted(ctx, userID, stepID, completed)
}
