package service

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/set-night/tasksplit/internal/domain"
	"github.com/shopspring/decimal"
)

// Completion is one model response plus its accounting.
type Completion struct {
	Content          string
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Cost             decimal.Decimal
}

// Completer asks a model for a JSON object.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (*Completion, error)
}

const BreakdownSystemPrompt = `You turn a goal into a short, practical action plan.

Reply with a single JSON object and nothing else:
{"title": string, "rounds": [{"name": string, "steps": [string, ...]}, ...]}

Rules:
- "title" summarizes the goal in at most 60 characters.
- Use 2 to 4 rounds, ordered as they should be done.
- Each round has a short descriptive name without a number or "Round" prefix.
- Each round has 3 to 8 steps. A step is one concrete action starting with a verb.
- Plain text only. No markdown, no code fences, no commentary.`

// upstreamError classifies a failed model call. Deadline and network timeouts
// map to ErrUpstreamTimeout, everything else to ErrUpstream.
func upstreamError(ctx context.Context, op string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrUpstream, err)
}
