package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/ricirt/aqi-bulletin/internal/domain"
	"github.com/ricirt/aqi-bulletin/internal/ratelimiter"
)

func TestKeyedLimiters_AllowBurstPerKey(t *testing.T) {
	l := ratelimiter.New[domain.Variant](2)

	if !l.Allow(domain.VariantDefault) || !l.Allow(domain.VariantDefault) {
		t.Fatal("expected the first two tokens to be granted")
	}
	if l.Allow(domain.VariantDefault) {
		t.Fatal("expected the third immediate token to be denied")
	}
	if !l.Allow(domain.VariantDestructive) {
		t.Fatal("expected a separate bucket per key")
	}
}

func TestKeyedLimiters_DisabledWhenRateIsZero(t *testing.T) {
	l := ratelimiter.New[string](0)
	for i := 0; i < 100; i++ {
		if !l.Allow("zone") {
			t.Fatalf("expected unlimited tokens, denied at %d", i)
		}
	}
}

func TestKeyedLimiters_WaitHonoursContext(t *testing.T) {
	l := ratelimiter.New[string](1)
	ctx := context.Background()

	if err := l.Wait(ctx, "bamako"); err != nil {
		t.Fatalf("unexpected error on first token: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "bamako"); err == nil {
		t.Fatal("expected an error when the deadline is shorter than the refill")
	}
}
