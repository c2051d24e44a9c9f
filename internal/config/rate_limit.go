package config

import "time"

// RateLimitCategory selects an independently configured sliding window.
// Categories never share admission state.
type RateLimitCategory string

const (
	CategoryUpload   RateLimitCategory = "upload"
	CategoryDownload RateLimitCategory = "download"
	CategoryAuth     RateLimitCategory = "auth"
	CategoryAPI      RateLimitCategory = "api"
)

type RateLimitRule struct {
	MaxRequests int
	Window      time.Duration
}

type RateLimitConfig struct {
	Rules map[RateLimitCategory]RateLimitRule
}

func NewRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Rules: map[RateLimitCategory]RateLimitRule{
			CategoryUpload:   {MaxRequests: 10, Window: 60 * time.Second},
			CategoryDownload: {MaxRequests: 100, Window: 60 * time.Second},
			CategoryAuth:     {MaxRequests: 5, Window: 60 * time.Second},
			CategoryAPI:      {MaxRequests: 1000, Window: 60 * time.Second},
		},
	}
}
