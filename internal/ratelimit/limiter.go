package ratelimit

import (
	"context"
	"time"

	"portal-api/internal/config"
)

// Result is the outcome of an admission check. A denied request is not an
// error; errors mean the backend could not be asked at all.
type Result struct {
	Allowed   bool      `json:"allowed"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// Backend is a sliding-window admission check against a shared store.
type Backend interface {
	Admit(ctx context.Context, category config.RateLimitCategory, identifier string) (Result, error)
}
