package watcher

import (
	"sync"

	"github.com/fsnotify/fsnotify"
)

// DefaultQueueSize bounds the number of undelivered notifications.
const DefaultQueueSize = 128

// Event is one notification taken off the native watcher: either a file
// system event or a watch error.
type Event struct {
	fsnotify.Event
	Err error
}

// Bridge moves notifications from the native watcher's channels into a
// bounded FIFO queue on a dedicated goroutine. When the queue is full the
// goroutine blocks; nothing is dropped. The queue is closed once the source
// channels close or Stop is called.
type Bridge struct {
	out      chan Event
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewBridge starts forwarding from events and errs. size <= 0 uses
// DefaultQueueSize.
func NewBridge(events <-chan fsnotify.Event, errs <-chan error, size int) *Bridge {
	if size <= 0 {
		size = DefaultQueueSize
	}
	b := &Bridge{
		out:  make(chan Event, size),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go b.forward(events, errs)
	return b
}

// Events is the consumer side of the queue.
func (b *Bridge) Events() <-chan Event {
	return b.out
}

// Stop releases a producer blocked on a full queue and waits for the
// forwarding goroutine to exit.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() { close(b.stop) })
	<-b.done
}

func (b *Bridge) forward(events <-chan fsnotify.Event, errs <-chan error) {
	defer close(b.done)
	defer close(b.out)

	for {
		var ev Event
		select {
		case <-b.stop:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			ev = Event{Event: e}
		case err, ok := <-errs:
			if !ok {
				return
			}
			ev = Event{Err: err}
		}

		select {
		case b.out <- ev:
		case <-b.stop:
			return
		}
	}
}
