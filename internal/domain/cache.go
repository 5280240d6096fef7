package domain

import (
	"context"
	"time"
)

// RateLimiter admits at most limit calls per window for each key. The HTTP
// surface keys it by client address.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// LockManager hands out short leases so instances sharing a log directory
// ingest each dump once. Acquire returns ErrLockHeld when another holder
// has the key; unlock releases only the caller's own lease.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// SignalBus carries encoded market and status events between processes.
// Subscribe accepts glob patterns such as "ch:*"; the channel closes when
// ctx ends.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
