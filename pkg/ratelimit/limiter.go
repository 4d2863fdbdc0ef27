package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
	"tgmedia/pkg/config"
)

// Limiter paces outgoing requests
type Limiter interface {
	// Allow reports whether a request may proceed right now
	Allow() bool
	// Wait blocks until a request may proceed or ctx is done
	Wait(ctx context.Context) error
	// Reset restores the full burst
	Reset()
}

// TokenBucket implements Limiter with a token bucket
type TokenBucket struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewTokenBucket creates a limiter allowing perSecond requests on average
// with bursts of up to burst requests
func NewTokenBucket(perSecond float64, burst int) *TokenBucket {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &TokenBucket{
		limiter: rate.NewLimiter(limit, burst),
		limit:   limit,
		burst:   burst,
	}
}

// FromConfig creates a TokenBucket from the rate limit settings
func FromConfig(cfg config.RateLimitConfig) *TokenBucket {
	return NewTokenBucket(cfg.RequestsPerSecond, cfg.Burst)
}

// Allow checks if a request can proceed
func (tb *TokenBucket) Allow() bool {
	return tb.current().Allow()
}

// Wait blocks until a token is available
func (tb *TokenBucket) Wait(ctx context.Context) error {
	return tb.current().Wait(ctx)
}

// Reset refills the bucket
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.limiter = rate.NewLimiter(tb.limit, tb.burst)
}

func (tb *TokenBucket) current() *rate.Limiter {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.limiter
}

// Unlimited is a Limiter that never blocks
type Unlimited struct{}

func (Unlimited) Allow() bool                    { return true }
func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }
func (Unlimited) Reset()                         {}
