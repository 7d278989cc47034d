package ratelimiter

import (
	"context"
	"testing"
	"time"
)

// Rates in these tests are small so that bucket exhaustion and refill
// are observable without long sleeps.

func TestBurstThenThrottle(t *testing.T) {
	limiter := New(10, 10)

	// A full bucket serves the whole burst immediately.
	for i := 0; i < 10; i++ {
		if !limiter.Allow() {
			t.Fatalf("request %d within burst was throttled", i)
		}
	}
	if limiter.Allow() {
		t.Fatal("request beyond burst was not throttled")
	}

	// At 10 req/s one token comes back after 100ms.
	time.Sleep(110 * time.Millisecond)
	if !limiter.Allow() {
		t.Fatal("request after refill was throttled")
	}
}

func TestWaitBlocksForToken(t *testing.T) {
	limiter := New(10, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("second wait failed: %v", err)
	}
	elapsed := time.Since(start)

	// The empty bucket forces roughly a 100ms wait; wide margins absorb
	// scheduler jitter.
	if elapsed < 50*time.Millisecond || elapsed > 200*time.Millisecond {
		t.Fatalf("waited %v, expected roughly 100ms", elapsed)
	}
}

func TestWaitHonorsContextDeadline(t *testing.T) {
	limiter := New(1, 1)
	if !limiter.Allow() {
		t.Fatal("burst token unavailable")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx); err == nil {
		t.Fatal("Wait returned nil with an expired deadline and empty bucket")
	}
}

func TestBatchConsumption(t *testing.T) {
	limiter := New(10, 10)

	if !limiter.AllowN(7) {
		t.Fatal("batch of 7 rejected with 10 tokens available")
	}
	if !limiter.AllowN(3) {
		t.Fatal("batch of 3 rejected with 3 tokens available")
	}
	if limiter.AllowN(1) {
		t.Fatal("request allowed from an empty bucket")
	}
}

func TestSetLimitRefillsAtNewRate(t *testing.T) {
	limiter := New(10, 10)

	for i := 0; i < 10; i++ {
		limiter.Allow()
	}
	if limiter.Allow() {
		t.Fatal("bucket not empty after draining burst")
	}

	// Raising the limit also widens the burst, so accumulated tokens at
	// the new rate are actually usable.
	limiter.SetLimit(100)
	time.Sleep(200 * time.Millisecond)

	allowed := 0
	for i := 0; i < 50; i++ {
		if !limiter.Allow() {
			break
		}
		allowed++
	}
	if allowed < 15 || allowed > 25 {
		t.Fatalf("got %d requests after 200ms at 100 req/s, expected ~20", allowed)
	}
}

func TestSetBurstCapsAccumulation(t *testing.T) {
	limiter := New(1000, 10)

	for i := 0; i < 10; i++ {
		limiter.Allow()
	}

	limiter.SetBurst(50)
	// 100ms at 1000 req/s refills far more than 50 tokens; the bucket
	// caps at the new burst.
	time.Sleep(100 * time.Millisecond)

	allowed := 0
	for i := 0; i < 60; i++ {
		if !limiter.Allow() {
			break
		}
		allowed++
	}
	if allowed < 45 || allowed > 55 {
		t.Fatalf("got %d requests, expected ~50 (the burst cap)", allowed)
	}
}

func TestTokensReportsBucketLevel(t *testing.T) {
	limiter := New(10, 10)

	if got := limiter.Tokens(); got < 9 || got > 10 {
		t.Fatalf("fresh bucket reports %f tokens, expected ~10", got)
	}

	for i := 0; i < 5; i++ {
		limiter.Allow()
	}
	if got := limiter.Tokens(); got < 4 || got > 6 {
		t.Fatalf("half-drained bucket reports %f tokens, expected ~5", got)
	}
}

func TestZeroRateDisablesThrottling(t *testing.T) {
	// Zero requests per second means an unthrottled backend; every
	// request passes.
	limiter := New(0, 0)

	for i := 0; i < 1000; i++ {
		if !limiter.Allow() {
			t.Fatalf("unthrottled limiter rejected request %d", i)
		}
	}
}

func BenchmarkAllow(b *testing.B) {
	limiter := New(1_000_000, 1_000_000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.Allow()
	}
}
