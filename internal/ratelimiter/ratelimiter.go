// Package ratelimiter provides token bucket rate limiting for backend
// operations.
//
// The blob storage layer uses it to throttle requests against archival
// (cold tier) backends, which typically enforce strict request quotas.
package ratelimiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter wraps golang.org/x/time/rate with a simpler, uint-based
// surface.
//
// The token bucket algorithm works as follows:
//  1. Tokens are added to the bucket at a constant rate (requests per second)
//  2. Each request consumes one token from the bucket
//  3. If the bucket is empty, the request is either rejected or waits for a token
//  4. Burst capacity allows temporary spikes above the sustained rate
//
// Thread safety:
// All methods are safe for concurrent use.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a new RateLimiter with the specified rate and burst capacity.
//
// Parameters:
//   - requestsPerSecond: Maximum sustained rate (tokens added per second)
//   - burst: Maximum burst size (bucket capacity in tokens)
//
// The burst parameter controls how many requests can be served immediately
// when the bucket is full. It should typically be >= requestsPerSecond.
//
// Special cases:
//   - requestsPerSecond = 0: No rate limiting (unlimited)
//   - burst = 0: No burst allowed (only sustained rate)
func New(requestsPerSecond, burst uint) *RateLimiter {
	if requestsPerSecond == 0 {
		// Unlimited rate: use a very high limit
		// rate.Inf would be ideal but has edge cases, so use a large value
		requestsPerSecond = 1_000_000_000 // 1 billion req/s (effectively unlimited)
		burst = requestsPerSecond
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), int(burst)),
	}
}

// Allow checks if a request is allowed under the current rate limit.
//
// This is the fast path: it returns immediately without waiting.
// Use it when requests over the limit should be rejected.
//
// Returns:
//   - true if the request is allowed (token consumed)
//   - false if the request should be rejected (no tokens available)
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// Wait blocks until a token is available or the context is cancelled.
//
// This is the slow path: it throttles requests instead of rejecting them,
// which is the right behavior for background archival traffic.
//
// Returns:
//   - nil if a token was acquired
//   - context error if the context was cancelled before a token was available
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// AllowN checks if N requests are allowed under the current rate limit.
//
// Useful for batch operations that consume multiple tokens at once.
//
// Returns:
//   - true if N tokens were available and consumed
//   - false if fewer than N tokens were available (no tokens consumed)
func (r *RateLimiter) AllowN(n uint) bool {
	return r.limiter.AllowN(time.Now(), int(n))
}

// SetLimit updates the rate limit to a new value.
//
// Allows dynamic rate limit adjustments without creating a new limiter.
func (r *RateLimiter) SetLimit(requestsPerSecond uint) {
	if requestsPerSecond == 0 {
		requestsPerSecond = 1_000_000_000 // Effectively unlimited
	}

	oldRate := uint(r.limiter.Limit())
	oldBurst := uint(r.limiter.Burst())
	r.limiter.SetLimit(rate.Limit(requestsPerSecond))

	// Update burst if:
	// 1. It was at the default ratio (2x old rate), OR
	// 2. It was equal to or below the old rate (indicating a custom small burst)
	// This ensures the bucket can hold tokens accumulated at the new rate.
	if oldBurst == oldRate*2 || oldBurst <= oldRate {
		r.limiter.SetBurst(int(requestsPerSecond * 2))
	}
}

// SetBurst updates the burst size to a new value.
func (r *RateLimiter) SetBurst(burst uint) {
	r.limiter.SetBurst(int(burst))
}

// Tokens returns the current number of available tokens.
//
// Primarily useful for monitoring and debugging. The value may change
// immediately after this call due to concurrent access or replenishment.
func (r *RateLimiter) Tokens() float64 {
	return r.limiter.Tokens()
}
