package watcher

import (
	"errors"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgePreservesOrderWithoutDropping(t *testing.T) {
	events := make(chan fsnotify.Event)
	errs := make(chan error)
	b := NewBridge(events, errs, 4)
	defer b.Stop()

	const n = 300
	go func() {
		for i := 0; i < n; i++ {
			events <- fsnotify.Event{Name: string(rune('a' + i%26)), Op: fsnotify.Op(i)}
		}
		close(events)
	}()

	got := 0
	for ev := range b.Events() {
		require.NoError(t, ev.Err)
		assert.Equal(t, fsnotify.Op(got), ev.Op)
		got++
	}
	assert.Equal(t, n, got)
}

func TestBridgeForwardsErrors(t *testing.T) {
	events := make(chan fsnotify.Event)
	errs := make(chan error, 1)
	b := NewBridge(events, errs, 0)
	defer b.Stop()

	errs <- errors.New("overflow")
	select {
	case ev := <-b.Events():
		require.Error(t, ev.Err)
		assert.Equal(t, "overflow", ev.Err.Error())
	case <-time.After(time.Second):
		t.Fatal("error not forwarded")
	}
}

func TestBridgeStopReleasesBlockedProducer(t *testing.T) {
	events := make(chan fsnotify.Event, 8)
	for i := 0; i < 8; i++ {
		events <- fsnotify.Event{Name: "x"}
	}
	b := NewBridge(events, make(chan error), 1)

	stopped := make(chan struct{})
	go func() {
		b.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestStateSetDirSignals(t *testing.T) {
	s := NewState("/a")
	assert.Equal(t, "/a", s.Dir())

	s.SetDir("/b")
	s.SetDir("/c")
	assert.Equal(t, "/c", s.Dir())

	select {
	case <-s.Changed():
	default:
		t.Fatal("expected change signal")
	}
	select {
	case <-s.Changed():
		t.Fatal("signals should collapse")
	default:
	}
}
