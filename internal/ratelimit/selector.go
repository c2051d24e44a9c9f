package ratelimit

import (
	"context"
	"time"

	"portal-api/internal/config"
	"portal-api/internal/logger"

	"github.com/sirupsen/logrus"
)

// Selector routes admission checks to the shared backend and fails over to
// the per-category in-memory limiter when the backend cannot answer. A
// limiter failure never blocks a request: CheckLimit always returns a
// decision, never an error.
type Selector struct {
	backend  Backend
	fallback map[config.RateLimitCategory]*MemoryLimiter
}

func NewSelector(backend Backend, cfg *config.RateLimitConfig) *Selector {
	fallback := make(map[config.RateLimitCategory]*MemoryLimiter, len(cfg.Rules))
	for category, rule := range cfg.Rules {
		fallback[category] = NewMemoryLimiter(rule)
	}

	return &Selector{
		backend:  backend,
		fallback: fallback,
	}
}

func (s *Selector) CheckLimit(ctx context.Context, category config.RateLimitCategory, identifier string) Result {
	result, err := s.backend.Admit(ctx, category, identifier)
	if err == nil {
		return result
	}

	logger.LogEvent(logrus.WarnLevel, "Rate limit backend unavailable, using in-memory fallback", logrus.Fields{
		"category":   string(category),
		"identifier": identifier,
		"error":      err.Error(),
	})

	limiter, ok := s.fallback[category]
	if !ok {
		// Unknown category: no rule to enforce, admit the request.
		return Result{Allowed: true, ResetAt: time.Now()}
	}

	return limiter.Admit(identifier)
}
