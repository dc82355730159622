package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/set-night/tasksplit/internal/repository/sqlc"
)

// Store is the subset of queries the Postgres limiter needs.
type Store interface {
	HitRateLimit(ctx context.Context, arg sqlc.HitRateLimitParams) (sqlc.HitRateLimitRow, error)
	DeleteExpiredRateLimits(ctx context.Context) (int64, error)
}

// PostgresLimiter shares counters across instances through the rate_limits
// table. Each Allow is a single upsert, so concurrent callers never lose
// increments.
type PostgresLimiter struct {
	store Store
}

func NewPostgresLimiter(store Store) *PostgresLimiter {
	return &PostgresLimiter{store: store}
}

func (p *PostgresLimiter) Allow(ctx context.Context, subject, route string, rule Rule) (Decision, error) {
	row, err := p.store.HitRateLimit(ctx, sqlc.HitRateLimitParams{
		Key:           key(subject, route),
		WindowSeconds: rule.Window.Seconds(),
	})
	if err != nil {
		return Decision{}, fmt.Errorf("hit rate limit: %w", err)
	}

	// The upsert counts the current request, so the limit is exceeded only
	// once count goes past Max.
	if int(row.Count) > rule.Max {
		return Decision{
			Allowed:    false,
			RetryAfter: time.Duration(row.RetryAfterSeconds * float64(time.Second)),
		}, nil
	}
	return Decision{Allowed: true}, nil
}

func (p *PostgresLimiter) Sweep(ctx context.Context) (int, error) {
	n, err := p.store.DeleteExpiredRateLimits(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete expired rate limits: %w", err)
	}
	return int(n), nil
}
