package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is one planning request and the breakdown generated for it.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Prompt    string
	CreatedAt time.Time
}

// Round is a named phase within a session, ordered by OrderIndex.
type Round struct {
	ID         uuid.UUID
	SessionID  uuid.UUID
	Name       string
	OrderIndex int
}

// Step is a single actionable item within a round.
type Step struct {
	ID          uuid.UUID
	RoundID     uuid.UUID
	Title       string
	OrderIndex  int
	IsCompleted bool
}

type SessionSummary struct {
	ID         uuid.UUID
	Title      string
	Prompt     string
	CreatedAt  time.Time
	RoundCount int
}

type RoundWithSteps struct {
	Round
	Steps []Step
}

type SessionWithRounds struct {
	Session
	Rounds []RoundWithSteps
}

// Progress returns completed and total step counts across all rounds.
func (s *SessionWithRounds) Progress() (done, total int) {
	for _, r := range s.Rounds {
		for _, st := range r.Steps {
			total++
			if st.IsCompleted {
				done++
			}
		}
	}
	return done, total
}
