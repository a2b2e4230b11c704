package services

import (
	"sync"

	"golang.org/x/time/rate"
)

// maxLimiterEntries bounds the per-key limiter map; idle full buckets are
// pruned once it is exceeded.
const maxLimiterEntries = 10000

// Limiter decides whether another verification attempt may proceed.
type Limiter interface {
	Allow(key string) bool
}

type unlimited struct{}

func (unlimited) Allow(string) bool { return true }

// KeyedLimiter keeps one token bucket per key.
type KeyedLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

// NewLimiter returns a per-key limiter allowing perMinute attempts with
// the given burst. perMinute <= 0 disables limiting. A burst below one is
// raised to one, otherwise no attempt could ever pass.
func NewLimiter(perMinute, burst int) Limiter {
	if perMinute <= 0 {
		return unlimited{}
	}
	if burst < 1 {
		burst = 1
	}
	return &KeyedLimiter{
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= maxLimiterEntries {
			l.prune()
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	return lim.Allow()
}

// prune drops buckets that have refilled completely. Callers hold mu.
func (l *KeyedLimiter) prune() {
	for k, lim := range l.limiters {
		if lim.Tokens() >= float64(l.burst) {
			delete(l.limiters, k)
		}
	}
}
