package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/elskow/food-review/internal/config"
)

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)
	l := NewRateLimiter(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 2, TTL: time.Minute})
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"), "burst exhausted")

	// Buckets are per IP.
	assert.True(t, l.allow("10.0.0.2"))

	now = now.Add(time.Second)
	assert.True(t, l.allow("10.0.0.1"), "one token refilled")
	assert.False(t, l.allow("10.0.0.1"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)
	l := NewRateLimiter(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1, TTL: time.Minute})
	l.now = func() time.Time { return now }

	l.allow("10.0.0.1")
	l.allow("10.0.0.2")

	now = now.Add(2 * time.Minute)
	l.allow("10.0.0.3")

	assert.Len(t, l.limiters, 1)
	assert.Contains(t, l.limiters, "10.0.0.3")
	assert.NotContains(t, l.lastSeen, "10.0.0.1")
}
