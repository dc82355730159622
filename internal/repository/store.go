package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/tasksplit/internal/domain"
	"github.com/set-night/tasksplit/internal/repository/sqlc"
)

// Store maps sqlc rows to domain types and translates missing rows into
// domain errors.
type Store struct {
	db      *pgxpool.Pool
	queries *sqlc.Queries
}

func NewStore(db *pgxpool.Pool, queries *sqlc.Queries) *Store {
	return &Store{db: db, queries: queries}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Sessions

func (s *Store) CreateSession(ctx context.Context, userID uuid.UUID, prompt string) (*domain.Session, error) {
	row, err := s.queries.CreateSession(ctx, sqlc.CreateSessionParams{
		UserID: userID,
		Prompt: prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return rowToSession(row), nil
}

// GetSession returns the session only when it belongs to userID.
func (s *Store) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error) {
	row, err := s.queries.GetSessionForUser(ctx, sqlc.GetSessionForUserParams{
		ID:     sessionID,
		UserID: userID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return rowToSession(row), nil
}

func (s *Store) ListSessions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.SessionSummary, error) {
	rows, err := s.queries.ListSessionsByUser(ctx, sqlc.ListSessionsByUserParams{
		UserID: userID,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out := make([]domain.SessionSummary, len(rows))
	for i, r := range rows {
		out[i] = domain.SessionSummary{
			ID:         r.ID,
			Title:      r.Title,
			Prompt:     r.Prompt,
			CreatedAt:  pgTimestamptzToTime(r.CreatedAt),
			RoundCount: int(r.RoundCount),
		}
	}
	return out, nil
}

// GetSessionDetail loads a session with its rounds and steps in display order.
func (s *Store) GetSessionDetail(ctx context.Context, userID, sessionID uuid.UUID) (*domain.SessionWithRounds, error) {
	sess, err := s.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	rounds, err := s.queries.ListRoundsBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	steps, err := s.queries.ListStepsBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}

	byRound := make(map[uuid.UUID][]domain.Step, len(rounds))
	for _, st := range steps {
		byRound[st.RoundID] = append(byRound[st.RoundID], rowToStep(st))
	}

	detail := &domain.SessionWithRounds{
		Session: *sess,
		Rounds:  make([]domain.RoundWithSteps, len(rounds)),
	}
	for i, r := range rounds {
		detail.Rounds[i] = domain.RoundWithSteps{
			Round: rowToRound(r),
			Steps: byRound[r.ID],
		}
		if detail.Rounds[i].Steps == nil {
			detail.Rounds[i].Steps = []domain.Step{}
		}
	}
	return detail, nil
}

// HasBreakdown reports whether a generation or any round already exists for
// the session.
func (s *Store) HasBreakdown(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	exists, err := s.queries.GenerationExists(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("check generation: %w", err)
	}
	return exists, nil
}

// Breakdown writes

func (s *Store) ClaimGeneration(ctx context.Context, gen domain.Generation) (bool, error) {
	_, err := s.queries.ClaimGeneration(ctx, sqlc.ClaimGenerationParams{
		SessionID:        gen.SessionID,
		Provider:         gen.Provider,
		Model:            gen.Model,
		PromptTokens:     int32(gen.PromptTokens),
		CompletionTokens: int32(gen.CompletionTokens),
		Cost:             gen.Cost,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("claim generation: %w", err)
	}
	return true, nil
}

// ReleaseGeneration drops the generation record so the session can be
// generated again.
func (s *Store) ReleaseGeneration(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.queries.DeleteGeneration(ctx, sessionID); err != nil {
		return fmt.Errorf("delete generation: %w", err)
	}
	return nil
}

func (s *Store) SetSessionTitle(ctx context.Context, sessionID uuid.UUID, title string) error {
	if err := s.queries.UpdateSessionTitle(ctx, sqlc.UpdateSessionTitleParams{
		ID:    sessionID,
		Title: title,
	}); err != nil {
		return fmt.Errorf("update session title: %w", err)
	}
	return nil
}

func (s *Store) InsertRound(ctx context.Context, sessionID uuid.UUID, name string, orderIndex int) (uuid.UUID, error) {
	row, err := s.queries.InsertRound(ctx, sqlc.InsertRoundParams{
		SessionID:  sessionID,
		Name:       name,
		OrderIndex: int32(orderIndex),
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert round: %w", err)
	}
	return row.ID, nil
}

// InsertSteps bulk-inserts the step titles for a round, indexed from zero.
func (s *Store) InsertSteps(ctx context.Context, roundID uuid.UUID, titles []string) (int64, error) {
	params := make([]sqlc.InsertStepsParams, len(titles))
	for i, t := range titles {
		params[i] = sqlc.InsertStepsParams{
			RoundID:    roundID,
			Title:      t,
			OrderIndex: int32(i),
		}
	}
	n, err := s.queries.InsertSteps(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("insert steps: %w", err)
	}
	return n, nil
}

// InTx runs fn with a writer bound to a single transaction. The transaction
// commits only if fn returns nil.
func (s *Store) InTx(ctx context.Context, fn func(w domain.BreakdownWriter) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Store{db: s.db, queries: s.queries.WithTx(tx)}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Steps

// SetStepCompleted updates a step owned by userID. Steps that do not exist
// and steps owned by someone else are both reported as ErrStepNotFound.
func (s *Store) SetStepCompleted(ctx context.Context, userID, stepID uuid.UUID, completed bool) error {
	_, err := s.queries.SetStepCompletedForUser(ctx, sqlc.SetStepCompletedForUserParams{
		IsCompleted: completed,
		ID:          stepID,
		UserID:      userID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrStepNotFound
		}
		return fmt.Errorf("update step: %w", err)
	}
	return nil
}

// Users and tokens

func (s *Store) UpsertUser(ctx context.Context, email string) (*domain.User, error) {
	row, err := s.queries.UpsertUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return rowToUser(row), nil
}

func (s *Store) CreateAPIToken(ctx context.Context, userID uuid.UUID, tokenHash, label string) error {
	if err := s.queries.CreateAPIToken(ctx, sqlc.CreateAPITokenParams{
		TokenHash: tokenHash,
		UserID:    userID,
		Label:     label,
	}); err != nil {
		return fmt.Errorf("create api token: %w", err)
	}
	return nil
}

func (s *Store) UserByTokenHash(ctx context.Context, tokenHash string) (*domain.User, error) {
	row, err := s.queries.GetUserByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by token: %w", err)
	}
	return rowToUser(row), nil
}

func (s *Store) TouchToken(ctx context.Context, tokenHash string) error {
	return s.queries.TouchAPIToken(ctx, tokenHash)
}
