// Package memory provides single-process versions of the cache interfaces
// for deployments without Redis.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

// idleAfter is how long an unused key is kept before being swept.
const idleAfter = 10 * time.Minute

type entry struct {
	lim      *rate.Limiter
	limit    int
	window   time.Duration
	lastSeen time.Time
}

// RateLimiter implements domain.RateLimiter with one token bucket per key.
// A bucket holds limit tokens and refills evenly over window.
type RateLimiter struct {
	mu        sync.Mutex
	entries   map[string]*entry
	now       func() time.Time
	lastSweep time.Time
}

// NewRateLimiter creates an empty RateLimiter.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Allow takes one token from key's bucket.
func (rl *RateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if window <= 0 || limit <= 0 {
		return false, fmt.Errorf("memory: rate limit %s: invalid limit %d per %s", key, limit, window)
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	e, ok := rl.entries[key]
	if !ok || e.limit != limit || e.window != window {
		e = &entry{
			lim:    rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit),
			limit:  limit,
			window: window,
		}
		rl.entries[key] = e
	}
	e.lastSeen = now
	rl.sweep(now)
	return e.lim.AllowN(now, 1), nil
}

func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < idleAfter {
		return
	}
	rl.lastSweep = now
	for k, e := range rl.entries {
		if now.Sub(e.lastSeen) > idleAfter {
			delete(rl.entries, k)
		}
	}
}

var _ domain.RateLimiter = (*RateLimiter)(nil)
