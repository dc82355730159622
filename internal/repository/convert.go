package repository

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/set-night/tasksplit/internal/domain"
	"github.com/set-night/tasksplit/internal/repository/sqlc"
)

// pgTimestamptzToTime converts pgtype.Timestamptz to time.Time.
func pgTimestamptzToTime(ts pgtype.Timestamptz) time.Time {
	if ts.Valid {
		return ts.Time
	}
	return time.Time{}
}

func rowToSession(r sqlc.Session) *domain.Session {
	return &domain.Session{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Prompt:    r.Prompt,
		CreatedAt: pgTimestamptzToTime(r.CreatedAt),
	}
}

func rowToUser(r sqlc.User) *domain.User {
	return &domain.User{
		ID:        r.ID,
		Email:     r.Email,
		CreatedAt: pgTimestamptzToTime(r.CreatedAt),
	}
}

func rowToRound(r sqlc.Round) domain.Round {
	return domain.Round{
		ID:         r.ID,
		SessionID:  r.SessionID,
		Name:       r.Name,
		OrderIndex: int(r.OrderIndex),
	}
}

func rowToStep(r sqlc.Step) domain.Step {
	return domain.Step{
		ID:          r.ID,
		RoundID:     r.RoundID,
		Title:       r.Title,
		OrderIndex:  int(r.OrderIndex),
		IsCompleted: r.IsCompleted,
	}
}
