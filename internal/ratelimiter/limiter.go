package ratelimiter

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// KeyedLimiters holds one token bucket per key, created on first use.
// Each bucket enforces a steady-state rate with burst equal to the rate, so
// no capacity is "saved up" beyond one second's worth.
//
// Keys are expected to come from a small closed set (toast variants, zones).
type KeyedLimiters[K comparable] struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[K]*rate.Limiter
}

// New creates limiters granting ratePerSec tokens per second per key.
// A non-positive rate disables limiting.
func New[K comparable](ratePerSec int) *KeyedLimiters[K] {
	limit, burst := rate.Limit(ratePerSec), ratePerSec
	if ratePerSec <= 0 {
		limit, burst = rate.Inf, 0
	}
	return &KeyedLimiters[K]{
		limit:    limit,
		burst:    burst,
		limiters: make(map[K]*rate.Limiter),
	}
}

func (kl *KeyedLimiters[K]) get(k K) *rate.Limiter {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	l, ok := kl.limiters[k]
	if !ok {
		l = rate.NewLimiter(kl.limit, kl.burst)
		kl.limiters[k] = l
	}
	return l
}

// Allow reports whether a token is available for k right now, consuming it.
// Used by HTTP handlers that reject instead of queueing.
func (kl *KeyedLimiters[K]) Allow(k K) bool {
	return kl.get(k).Allow()
}

// Wait blocks until k's limiter grants a token.
// Returns a non-nil error only if ctx is cancelled while waiting.
func (kl *KeyedLimiters[K]) Wait(ctx context.Context, k K) error {
	return kl.get(k).Wait(ctx)
}
