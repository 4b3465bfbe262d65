package middleware

import (
	"fmt"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// RATE LIMITER MIDDLEWARE
// Per-user token bucket to protect the bot from spam. Legitimate users who
// double-tap a command should never notice it; sustained flooding should.
// ══════════════════════════════════════════════════════════════════════════════

// RateLimitConfig holds configuration for the per-user rate limiter.
type RateLimitConfig struct {
	// RequestsPerMinute is the maximum number of requests per user per minute.
	RequestsPerMinute int

	// BurstSize is the maximum burst size (tokens in bucket at start).
	BurstSize int

	// CleanupInterval is how often to drop idle buckets.
	CleanupInterval time.Duration

	// IdleTimeout is how long a bucket may be unused before cleanup.
	IdleTimeout time.Duration
}

// DefaultRateLimitConfig returns sensible defaults for rate limiting.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 20,
		BurstSize:         5,
		CleanupInterval:   5 * time.Minute,
		IdleTimeout:       15 * time.Minute,
	}
}

// RateLimitResult represents the result of a rate limit check.
type RateLimitResult struct {
	// Allowed indicates if the request is allowed.
	Allowed bool

	// RetryAfter is how long the user should wait before retrying.
	RetryAfter time.Duration

	// ResponseMessage is the message to send if rate limited.
	ResponseMessage string
}

// RateLimiter implements per-user rate limiting using the token bucket
// algorithm.
type RateLimiter struct {
	config  RateLimitConfig
	mu      sync.Mutex
	buckets map[int64]*userBucket
	stopCh  chan struct{}
}

// userBucket is the rate limit state for one user.
type userBucket struct {
	tokens     float64
	lastRefill time.Time
	lastSeen   time.Time
}

// NewRateLimiter creates a new rate limiter and starts its cleanup loop.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = DefaultRateLimitConfig().RequestsPerMinute
	}
	if config.BurstSize <= 0 {
		config.BurstSize = DefaultRateLimitConfig().BurstSize
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultRateLimitConfig().CleanupInterval
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultRateLimitConfig().IdleTimeout
	}

	rl := &RateLimiter{
		config:  config,
		buckets: make(map[int64]*userBucket),
		stopCh:  make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Check consumes one token for the user and reports whether the request is
// allowed.
func (rl *RateLimiter) Check(telegramID int64) RateLimitResult {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	refillRate := float64(rl.config.RequestsPerMinute) / 60.0

	b, ok := rl.buckets[telegramID]
	if !ok {
		b = &userBucket{
			tokens:     float64(rl.config.BurstSize),
			lastRefill: now,
		}
		rl.buckets[telegramID] = b
	}

	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * refillRate
	if b.tokens > float64(rl.config.BurstSize) {
		b.tokens = float64(rl.config.BurstSize)
	}
	b.lastRefill = now
	b.lastSeen = now

	if b.tokens < 1.0 {
		retryAfter := time.Duration((1.0 - b.tokens) / refillRate * float64(time.Second))
		return RateLimitResult{
			Allowed:    false,
			RetryAfter: retryAfter,
			ResponseMessage: fmt.Sprintf(
				"⏳ Too many requests! Please wait %d seconds and try again.",
				int(retryAfter.Seconds())+1,
			),
		}
	}

	b.tokens--
	return RateLimitResult{Allowed: true}
}

// Stop terminates the cleanup loop.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// cleanupLoop periodically drops buckets of users who went quiet.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-rl.config.IdleTimeout)
			rl.mu.Lock()
			for id, b := range rl.buckets {
				if b.lastSeen.Before(cutoff) {
					delete(rl.buckets, id)
				}
			}
			rl.mu.Unlock()
		}
	}
}
