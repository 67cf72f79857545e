// Package ratelimit throttles per-caller access to the orchestrator's
// StartJob and Subscribe operations, generalizing the corpus's
// per-host scrape limiter (internal/scrape/util.HostLimiter in the
// engine this core was built from) from "one limiter per scraped host"
// to "one limiter per calling identity".
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// KeyedLimiter lazily allocates one token bucket per key and never
// forgets it, matching the host limiter's lifetime: callers are few
// enough relative to a process's lifetime that eviction isn't worth
// the complexity.
type KeyedLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	perSec   rate.Limit
	burst    int
}

// NewKeyedLimiter builds a limiter allowing perMinute events per
// minute per key, with burst as the bucket size.
func NewKeyedLimiter(perMinute float64, burst int) *KeyedLimiter {
	return &KeyedLimiter{
		limiters: make(map[string]*rate.Limiter),
		perSec:   rate.Limit(perMinute / 60),
		burst:    burst,
	}
}

// Allow reports whether key may proceed right now, consuming a token
// if so. A zero-value key (anonymous caller) shares one bucket.
func (k *KeyedLimiter) Allow(key string) bool {
	return k.limiterFor(key).Allow()
}

// Wait blocks until key's bucket has a token or ctx is done, for
// callers (like the scraper's per-host throttle) that should slow down
// rather than reject outright.
func (k *KeyedLimiter) Wait(ctx context.Context, key string) error {
	return k.limiterFor(key).Wait(ctx)
}

func (k *KeyedLimiter) limiterFor(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.limiters[key]
	if !ok {
		l = rate.NewLimiter(k.perSec, k.burst)
		k.limiters[key] = l
	}
	return l
}
