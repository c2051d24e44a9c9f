package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"portal-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	result Result
	err    error
	calls  int
}

func (s *stubBackend) Admit(ctx context.Context, category config.RateLimitCategory, identifier string) (Result, error) {
	s.calls++
	return s.result, s.err
}

func testRateLimitConfig() *config.RateLimitConfig {
	return &config.RateLimitConfig{
		Rules: map[config.RateLimitCategory]config.RateLimitRule{
			config.CategoryUpload:   {MaxRequests: 2, Window: 60 * time.Second},
			config.CategoryDownload: {MaxRequests: 5, Window: 60 * time.Second},
		},
	}
}

func TestSelectorUsesBackendWhenHealthy(t *testing.T) {
	backend := &stubBackend{result: Result{Allowed: true, Limit: 2, Remaining: 1}}
	selector := NewSelector(backend, testRateLimitConfig())

	result := selector.CheckLimit(context.Background(), config.CategoryUpload, "ip")

	assert.True(t, result.Allowed)
	assert.Equal(t, 1, result.Remaining)
	assert.Equal(t, 1, backend.calls)
}

func TestSelectorFallsBackOnBackendError(t *testing.T) {
	backend := &stubBackend{err: errors.New("connection refused")}
	selector := NewSelector(backend, testRateLimitConfig())

	// The connectivity error never reaches the caller: we still get a
	// decision from the in-memory fallback.
	result := selector.CheckLimit(context.Background(), config.CategoryUpload, "ip")
	require.True(t, result.Allowed)
	assert.Equal(t, 2, result.Limit)
}

func TestSelectorFallbackEnforcesLimit(t *testing.T) {
	backend := &stubBackend{err: errors.New("backend down")}
	selector := NewSelector(backend, testRateLimitConfig())

	ctx := context.Background()
	require.True(t, selector.CheckLimit(ctx, config.CategoryUpload, "ip").Allowed)
	require.True(t, selector.CheckLimit(ctx, config.CategoryUpload, "ip").Allowed)
	assert.False(t, selector.CheckLimit(ctx, config.CategoryUpload, "ip").Allowed)
}

func TestSelectorCategoriesDoNotShareState(t *testing.T) {
	backend := &stubBackend{err: errors.New("backend down")}
	selector := NewSelector(backend, testRateLimitConfig())

	ctx := context.Background()

	// Exhaust the upload window.
	selector.CheckLimit(ctx, config.CategoryUpload, "ip")
	selector.CheckLimit(ctx, config.CategoryUpload, "ip")
	require.False(t, selector.CheckLimit(ctx, config.CategoryUpload, "ip").Allowed)

	// Download admission is unaffected.
	assert.True(t, selector.CheckLimit(ctx, config.CategoryDownload, "ip").Allowed)
}

func TestSelectorUnknownCategoryFailsOpen(t *testing.T) {
	backend := &stubBackend{err: errors.New("no rule")}
	selector := NewSelector(backend, testRateLimitConfig())

	result := selector.CheckLimit(context.Background(), config.RateLimitCategory("unknown"), "ip")
	assert.True(t, result.Allowed)
}
