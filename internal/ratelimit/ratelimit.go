// Package ratelimit implements fixed-window request limits keyed by
// subject and route.
package ratelimit

import (
	"context"
	"log/slog"
	"math"
	"time"
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, never below one.
func (d Decision) RetryAfterSeconds() int {
	secs := int(math.Ceil(d.RetryAfter.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// Rule is a limit of Max requests per Window.
type Rule struct {
	Max    int
	Window time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, subject, route string, rule Rule) (Decision, error)
}

// Sweeper drops expired windows.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

func key(subject, route string) string {
	return subject + ":" + route
}

// RunSweeper calls s.Sweep every interval until ctx is done.
func RunSweeper(ctx context.Context, s Sweeper, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				logger.Warn("rate limit sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("rate limit entries swept", "count", n)
			}
		}
	}
}
