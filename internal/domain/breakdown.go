package domain

import (
	"context"

	"github.com/google/uuid"
)

// Breakdown is the structured plan produced by the model for a session.
type Breakdown struct {
	Title  string           `json:"title"`
	Rounds []BreakdownRound `json:"rounds"`
}

type BreakdownRound struct {
	Name  string   `json:"name"`
	Steps []string `json:"steps"`
}

// StepCount returns the number of steps across all rounds.
func (b *Breakdown) StepCount() int {
	n := 0
	for _, r := range b.Rounds {
		n += len(r.Steps)
	}
	return n
}

// WriteReport describes what was persisted for a breakdown.
type WriteReport struct {
	RoundsWritten int
	StepsWritten  int
	// SkippedRounds holds the indices of rounds whose row could not be inserted.
	SkippedRounds []int
	// EmptyRounds holds the indices of rounds whose steps could not be inserted.
	EmptyRounds []int
}

// Partial reports whether any round or step batch was dropped.
func (r *WriteReport) Partial() bool {
	return len(r.SkippedRounds) > 0 || len(r.EmptyRounds) > 0
}

// BreakdownWriter persists the pieces of a breakdown. Implementations may be
// bound to a transaction or to autocommit connections.
type BreakdownWriter interface {
	// ClaimGeneration records the generation for a session. It returns false
	// when the session already has one.
	ClaimGeneration(ctx context.Context, gen Generation) (bool, error)
	ReleaseGeneration(ctx context.Context, sessionID uuid.UUID) error
	SetSessionTitle(ctx context.Context, sessionID uuid.UUID, title string) error
	InsertRound(ctx context.Context, sessionID uuid.UUID, name string, orderIndex int) (uuid.UUID, error)
	InsertSteps(ctx context.Context, roundID uuid.UUID, titles []string) (int64, error)
}
