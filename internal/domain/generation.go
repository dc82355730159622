package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Generation records the single model call that produced a session's breakdown.
type Generation struct {
	SessionID        uuid.UUID
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Cost             decimal.Decimal
}

type AIModel struct {
	ID              string
	Name            string
	PromptPrice     float64 // per 1M tokens
	CompletionPrice float64 // per 1M tokens
	ContextLength   int
}

func (m *AIModel) IsFree() bool {
	return m.PromptPrice == 0 && m.CompletionPrice == 0
}
