package ratelimit

import (
	"sync"
	"time"

	"portal-api/internal/config"
)

// defaultMaxIdentifiers caps the tracked identifiers so an attacker rotating
// identifiers cannot grow the map without bound.
const defaultMaxIdentifiers = 10000

// MemoryLimiter is the degraded-mode fallback used when the shared backend
// is unreachable. State is process-local: under horizontal scale-out each
// instance enforces the limit independently, which under-protects compared
// to the distributed limiter. That trade is accepted; the alternative is
// failing closed on backend outages.
type MemoryLimiter struct {
	rule           config.RateLimitRule
	maxIdentifiers int

	mu      sync.Mutex
	windows map[string][]time.Time
	now     func() time.Time
}

func NewMemoryLimiter(rule config.RateLimitRule) *MemoryLimiter {
	return &MemoryLimiter{
		rule:           rule,
		maxIdentifiers: defaultMaxIdentifiers,
		windows:        make(map[string][]time.Time),
		now:            time.Now,
	}
}

// Admit prunes the identifier's window, then records the request if capacity
// remains. Prune, test and record happen under one lock acquisition.
func (l *MemoryLimiter) Admit(identifier string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.rule.Window)

	window := l.windows[identifier]
	kept := window[:0]
	for _, ts := range window {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.rule.MaxRequests {
		l.windows[identifier] = kept
		return Result{
			Allowed:   false,
			Limit:     l.rule.MaxRequests,
			Remaining: 0,
			ResetAt:   kept[0].Add(l.rule.Window),
		}
	}

	if _, tracked := l.windows[identifier]; !tracked && len(l.windows) >= l.maxIdentifiers {
		l.evictStalest()
	}

	kept = append(kept, now)
	l.windows[identifier] = kept

	return Result{
		Allowed:   true,
		Limit:     l.rule.MaxRequests,
		Remaining: l.rule.MaxRequests - len(kept),
		ResetAt:   now.Add(l.rule.Window),
	}
}

// evictStalest drops the identifier whose most recent request is oldest.
// Caller holds l.mu.
func (l *MemoryLimiter) evictStalest() {
	var victim string
	var victimLast time.Time

	for id, window := range l.windows {
		if len(window) == 0 {
			victim = id
			break
		}
		last := window[len(window)-1]
		if victim == "" || last.Before(victimLast) {
			victim = id
			victimLast = last
		}
	}

	if victim != "" {
		delete(l.windows, victim)
	}
}
