// Package ratelimit applies a fixed-window limit to report submissions.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

const keyPrefix = "civic:ratelimit"

// ErrLimited is returned once a client exhausts its window.
var ErrLimited = errors.New("rate limit exceeded")

// Counter increments a windowed counter and returns the new value.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Limiter allows at most limit calls per client per window.
// A nil counter disables limiting; counter failures let the call through.
type Limiter struct {
	counter Counter
	limit   int64
	window  time.Duration
	clock   clockwork.Clock
	logger  *slog.Logger
}

// New creates a Limiter. counter may be nil.
func New(counter Counter, limit int, window time.Duration, clock clockwork.Clock, logger *slog.Logger) *Limiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		counter: counter,
		limit:   int64(limit),
		window:  window,
		clock:   clock,
		logger:  logger,
	}
}

// Enabled reports whether the limiter has a backing counter.
func (l *Limiter) Enabled() bool {
	return l != nil && l.counter != nil && l.limit > 0
}

// Allow records one call for client and returns ErrLimited when over the limit.
func (l *Limiter) Allow(ctx context.Context, client string) error {
	if !l.Enabled() {
		return nil
	}

	window := l.clock.Now().UnixNano() / int64(l.window)
	key := fmt.Sprintf("%s:%s:%d", keyPrefix, client, window)

	n, err := l.counter.Incr(ctx, key, l.window)
	if err != nil {
		l.logger.Warn("rate limit counter unavailable, allowing request", "client", client, "error", err)
		return nil
	}
	if n > l.limit {
		return ErrLimited
	}
	return nil
}
