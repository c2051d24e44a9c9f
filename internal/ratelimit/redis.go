package ratelimit

import (
	"context"
	"fmt"
	"time"

	"portal-api/internal/config"
	apperrors "portal-api/internal/pkg/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// admitScript prunes, counts and records in one atomic round trip so two
// concurrent requests can never both be admitted past the limit.
// KEYS[1] window key, ARGV: now (µs), window (µs), max, member.
// Returns {admitted, count, oldest score}.
var admitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

local count = redis.call('ZCARD', key)
if count < max then
	redis.call('ZADD', key, now, ARGV[4])
	redis.call('PEXPIRE', key, math.ceil(window / 1000))
	return {1, count + 1, 0}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
return {0, count, tonumber(oldest[2])}
`)

// RedisLimiter enforces sliding windows against a shared Redis backend, one
// sorted set of request timestamps per (category, identifier).
type RedisLimiter struct {
	client *redis.Client
	rules  map[config.RateLimitCategory]config.RateLimitRule
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, cfg *config.RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		rules:  cfg.Rules,
		now:    time.Now,
	}
}

func (l *RedisLimiter) Admit(ctx context.Context, category config.RateLimitCategory, identifier string) (Result, error) {
	rule, ok := l.rules[category]
	if !ok {
		return Result{}, fmt.Errorf("no rate limit rule for category %q", category)
	}

	now := l.now()
	key := fmt.Sprintf("ratelimit:%s:%s", category, identifier)
	member := fmt.Sprintf("%d-%s", now.UnixMicro(), uuid.NewString())

	raw, err := admitScript.Run(ctx, l.client, []string{key},
		now.UnixMicro(), rule.Window.Microseconds(), rule.MaxRequests, member).Result()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", apperrors.ErrBackendUnavailable, err)
	}

	vals, ok := raw.([]interface{})
	if !ok || len(vals) != 3 {
		return Result{}, fmt.Errorf("%w: unexpected script reply %v", apperrors.ErrBackendUnavailable, raw)
	}

	admitted, _ := vals[0].(int64)
	count, _ := vals[1].(int64)

	if admitted == 1 {
		return Result{
			Allowed:   true,
			Limit:     rule.MaxRequests,
			Remaining: rule.MaxRequests - int(count),
			ResetAt:   now.Add(rule.Window),
		}, nil
	}

	oldest, _ := vals[2].(int64)
	return Result{
		Allowed:   false,
		Limit:     rule.MaxRequests,
		Remaining: 0,
		ResetAt:   time.UnixMicro(oldest).Add(rule.Window),
	}, nil
}
