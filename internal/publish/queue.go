package publish

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

// DefaultQueueSize is the number of undelivered events a Queue buffers.
const DefaultQueueSize = 64

type queuedEvent struct {
	status string
	snap   *domain.MarketSnapshot
}

// Queue hands events to a slow publisher (chat senders, the Redis bus) on
// its own goroutine, so ingestion only pays for a channel send. Events are
// delivered in order. When the buffer is full the event is dropped and the
// publish call reports it.
type Queue struct {
	name    string
	next    domain.Publisher
	events  chan queuedEvent
	dropped atomic.Int64
	logger  *slog.Logger
}

// NewQueue wraps next. Run must be started for anything to be delivered.
func NewQueue(name string, next domain.Publisher, size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		name:   name,
		next:   next,
		events: make(chan queuedEvent, size),
		logger: logger.With(slog.String("component", "publish_queue"), slog.String("queue", name)),
	}
}

// Run delivers queued events until ctx is cancelled. Delivery failures are
// logged.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			if n := len(q.events); n > 0 {
				q.logger.Info("queue stopped with undelivered events", slog.Int("pending", n))
			}
			return ctx.Err()
		case ev := <-q.events:
			q.deliver(ctx, ev)
		}
	}
}

func (q *Queue) deliver(ctx context.Context, ev queuedEvent) {
	var err error
	if ev.snap != nil {
		err = q.next.PublishSnapshot(ctx, *ev.snap)
	} else {
		err = q.next.PublishStatus(ctx, ev.status)
	}
	if err != nil && ctx.Err() == nil {
		q.logger.WarnContext(ctx, "queued delivery failed", slog.String("error", err.Error()))
	}
}

// Dropped returns how many events were discarded on a full buffer.
func (q *Queue) Dropped() int64 {
	return q.dropped.Load()
}

func (q *Queue) enqueue(ev queuedEvent) error {
	select {
	case q.events <- ev:
		return nil
	default:
		q.dropped.Add(1)
		return fmt.Errorf("publish: %s queue full, event dropped", q.name)
	}
}

// PublishStatus implements domain.Publisher without blocking.
func (q *Queue) PublishStatus(_ context.Context, status string) error {
	return q.enqueue(queuedEvent{status: status})
}

// PublishSnapshot implements domain.Publisher without blocking.
func (q *Queue) PublishSnapshot(_ context.Context, snap domain.MarketSnapshot) error {
	return q.enqueue(queuedEvent{snap: &snap})
}

var _ domain.Publisher = (*Queue)(nil)
