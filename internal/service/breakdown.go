package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/set-night/tasksplit/internal/config"
	"github.com/set-night/tasksplit/internal/domain"
)

// BreakdownStore is the persistence BreakdownService needs.
type BreakdownStore interface {
	domain.BreakdownWriter
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error)
	HasBreakdown(ctx context.Context, sessionID uuid.UUID) (bool, error)
	InTx(ctx context.Context, fn func(w domain.BreakdownWriter) error) error
}

// Notifier receives operational failures worth a human look.
type Notifier interface {
	LogError(err error, context string)
}

type BreakdownOptions struct {
	Policy    string
	WriteMode string
	// Timeout bounds the model call.
	Timeout time.Duration
	// SaveTimeout bounds the writes that follow a successful model call.
	SaveTimeout time.Duration
}

type BreakdownResult struct {
	Breakdown *domain.Breakdown
	Report    domain.WriteReport
}

type BreakdownService struct {
	store    BreakdownStore
	llm      Completer
	notifier Notifier
	opts     BreakdownOptions
	inflight singleflight.Group
}

func NewBreakdownService(store BreakdownStore, llm Completer, notifier Notifier, opts BreakdownOptions) *BreakdownService {
	if opts.Policy == "" {
		opts.Policy = config.PolicyCoerce
	}
	if opts.WriteMode == "" {
		opts.WriteMode = config.WriteAtomic
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.RequestTimeout
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = config.SaveTimeout
	}
	return &BreakdownService{store: store, llm: llm, notifier: notifier, opts: opts}
}

// Generate produces and stores the breakdown for a session owned by userID.
// Concurrent calls for the same session share one generation.
func (s *BreakdownService) Generate(ctx context.Context, userID, sessionID uuid.UUID, prompt string) (*BreakdownResult, error) {
	if _, err := s.store.GetSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	exists, err := s.store.HasBreakdown(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if exists {
		return nil, domain.ErrBreakdownExists
	}

	v, err, shared := s.inflight.Do(sessionID.String(), func() (interface{}, error) {
		return s.generate(ctx, sessionID, prompt)
	})
	if shared {
		slog.Debug("breakdown generation shared", "session_id", sessionID)
	}
	if err != nil {
		return nil, err
	}
	return v.(*BreakdownResult), nil
}

func (s *BreakdownService) generate(ctx context.Context, sessionID uuid.UUID, prompt string) (*BreakdownResult, error) {
	// A dropped client connection must not abort a half-written breakdown.
	detached := context.WithoutCancel(ctx)

	start := time.Now()
	llmCtx, cancelLLM := context.WithTimeout(detached, s.opts.Timeout)
	completion, err := s.llm.CompleteJSON(llmCtx, BreakdownSystemPrompt, prompt)
	cancelLLM()
	if err != nil {
		slog.Error("breakdown completion failed", "session_id", sessionID, "error", err)
		s.notify(err, "breakdown completion, session "+sessionID.String())
		return nil, err
	}

	breakdown, err := ParseBreakdown(completion.Content, s.opts.Policy)
	if err != nil {
		slog.Error("breakdown parse failed",
			"session_id", sessionID,
			"policy", s.opts.Policy,
			"error", err,
			"content", truncate(completion.Content, maxLoggedBody),
		)
		s.notify(err, "breakdown parse, session "+sessionID.String())
		return nil, err
	}

	gen := domain.Generation{
		SessionID:        sessionID,
		Provider:         completion.Provider,
		Model:            completion.Model,
		PromptTokens:     completion.PromptTokens,
		CompletionTokens: completion.CompletionTokens,
		Cost:             completion.Cost,
	}

	ctx, cancel := context.WithTimeout(detached, s.opts.SaveTimeout)
	defer cancel()

	var report domain.WriteReport
	if s.opts.WriteMode == config.WriteBestEffort {
		report, err = writeBreakdown(ctx, s.store, gen, breakdown, true)
	} else {
		err = s.store.InTx(ctx, func(w domain.BreakdownWriter) error {
			var werr error
			report, werr = writeBreakdown(ctx, w, gen, breakdown, false)
			return werr
		})
	}
	if err != nil {
		if errors.Is(err, domain.ErrBreakdownExists) {
			return nil, err
		}
		if !errors.Is(err, domain.ErrPersistence) {
			err = fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		slog.Error("breakdown save failed", "session_id", sessionID, "mode", s.opts.WriteMode, "error", err)
		s.notify(err, "breakdown save, session "+sessionID.String())
		return nil, err
	}

	if report.Partial() {
		slog.Warn("breakdown saved partially",
			"session_id", sessionID,
			"skipped_rounds", report.SkippedRounds,
			"empty_rounds", report.EmptyRounds,
		)
		s.notify(fmt.Errorf("skipped rounds %v, rounds without steps %v", report.SkippedRounds, report.EmptyRounds),
			"partial breakdown, session "+sessionID.String())
	}

	slog.Info("breakdown generated",
		"session_id", sessionID,
		"provider", gen.Provider,
		"model", gen.Model,
		"rounds", report.RoundsWritten,
		"steps", report.StepsWritten,
		"parsed_steps", breakdown.StepCount(),
		"prompt_tokens", gen.PromptTokens,
		"completion_tokens", gen.CompletionTokens,
		"cost", gen.Cost.String(),
		"duration", time.Since(start),
	)

	return &BreakdownResult{Breakdown: breakdown, Report: report}, nil
}

// writeBreakdown claims the generation, sets the title and inserts rounds and
// steps in order. With skipFailures a failed round or step batch is recorded
// in the report instead of aborting the write. Without a transaction to roll
// back, a write that leaves no round behind releases the claim so the session
// can be generated again.
func writeBreakdown(ctx context.Context, w domain.BreakdownWriter, gen domain.Generation, b *domain.Breakdown, skipFailures bool) (domain.WriteReport, error) {
	var report domain.WriteReport

	claimed, err := w.ClaimGeneration(ctx, gen)
	if err != nil {
		return report, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if !claimed {
		return report, domain.ErrBreakdownExists
	}

	if err := w.SetSessionTitle(ctx, gen.SessionID, b.Title); err != nil {
		err = fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		if skipFailures {
			releaseClaim(ctx, w, gen.SessionID)
		}
		return report, err
	}

	for i, r := range b.Rounds {
		roundID, err := w.InsertRound(ctx, gen.SessionID, r.Name, i)
		if err != nil {
			if !skipFailures {
				return report, fmt.Errorf("%w: round %d: %v", domain.ErrPersistence, i, err)
			}
			slog.Error("failed to insert round", "session_id", gen.SessionID, "order_index", i, "error", err)
			report.SkippedRounds = append(report.SkippedRounds, i)
			continue
		}
		report.RoundsWritten++

		n, err := w.InsertSteps(ctx, roundID, r.Steps)
		if err != nil {
			if !skipFailures {
				return report, fmt.Errorf("%w: steps of round %d: %v", domain.ErrPersistence, i, err)
			}
			slog.Error("failed to insert steps", "session_id", gen.SessionID, "round_id", roundID, "error", err)
			report.EmptyRounds = append(report.EmptyRounds, i)
			continue
		}
		report.StepsWritten += int(n)
	}

	if report.RoundsWritten == 0 {
		releaseClaim(ctx, w, gen.SessionID)
		return report, fmt.Errorf("%w: no round of %d could be saved", domain.ErrPersistence, len(b.Rounds))
	}

	return report, nil
}

func releaseClaim(ctx context.Context, w domain.BreakdownWriter, sessionID uuid.UUID) {
	if err := w.ReleaseGeneration(ctx, sessionID); err != nil {
		slog.Error("failed to release generation", "session_id", sessionID, "error", err)
	}
}

func (s *BreakdownService) notify(err error, context string) {
	if s.notifier == nil {
		return
	}
	s.notifier.LogError(err, context)
}
