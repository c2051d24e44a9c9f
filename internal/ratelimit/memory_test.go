package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"portal-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(max int, window time.Duration, now *time.Time) *MemoryLimiter {
	limiter := NewMemoryLimiter(config.RateLimitRule{MaxRequests: max, Window: window})
	limiter.now = func() time.Time { return *now }
	return limiter
}

func TestMemoryLimiterAdmitsUpToMax(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := newTestLimiter(10, 60*time.Second, &now)

	for i := 0; i < 10; i++ {
		result := limiter.Admit("1.2.3.4")
		require.True(t, result.Allowed, "request %d should be admitted", i+1)
		assert.Equal(t, 10, result.Limit)
		assert.Equal(t, 10-(i+1), result.Remaining)
		now = now.Add(500 * time.Millisecond)
	}

	// 11th request inside the same window is denied.
	result := limiter.Admit("1.2.3.4")
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
}

func TestMemoryLimiterDeniedResetAt(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := start
	limiter := newTestLimiter(10, 60*time.Second, &now)

	// 10 admissions within 5 seconds.
	for i := 0; i < 10; i++ {
		require.True(t, limiter.Admit("ip").Allowed)
		now = now.Add(500 * time.Millisecond)
	}

	// Denial reports when the oldest request leaves the window: the first
	// admission was at start, so reset is start+60s, roughly 55s out.
	result := limiter.Admit("ip")
	require.False(t, result.Allowed)
	assert.Equal(t, start.Add(60*time.Second), result.ResetAt)
	assert.InDelta(t, 55, result.ResetAt.Sub(now).Seconds(), 1)
}

func TestMemoryLimiterReadmitsAfterWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := newTestLimiter(3, 60*time.Second, &now)

	for i := 0; i < 3; i++ {
		require.True(t, limiter.Admit("user").Allowed)
	}
	require.False(t, limiter.Admit("user").Allowed)

	// Past the window from the oldest admitted call, capacity returns.
	now = now.Add(61 * time.Second)
	result := limiter.Admit("user")
	assert.True(t, result.Allowed)
	assert.Equal(t, 2, result.Remaining)
}

func TestMemoryLimiterIdentifiersIndependent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := newTestLimiter(1, 60*time.Second, &now)

	require.True(t, limiter.Admit("a").Allowed)
	require.False(t, limiter.Admit("a").Allowed)
	assert.True(t, limiter.Admit("b").Allowed)
}

func TestMemoryLimiterEvictsWhenFull(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := newTestLimiter(5, 60*time.Second, &now)
	limiter.maxIdentifiers = 3

	for i := 0; i < 3; i++ {
		limiter.Admit(fmt.Sprintf("id-%d", i))
		now = now.Add(time.Second)
	}
	require.Len(t, limiter.windows, 3)

	// A fourth identifier evicts the stalest one instead of growing the map.
	limiter.Admit("id-3")
	assert.Len(t, limiter.windows, 3)
	assert.NotContains(t, limiter.windows, "id-0")
	assert.Contains(t, limiter.windows, "id-3")
}
