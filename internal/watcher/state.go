package watcher

import "sync"

// State holds the directory the loop should watch. The HTTP layer writes it,
// the loop reads it once per cycle.
type State struct {
	mu      sync.RWMutex
	dir     string
	changed chan struct{}
}

// NewState returns a State pointing at dir.
func NewState(dir string) *State {
	return &State{
		dir:     dir,
		changed: make(chan struct{}, 1),
	}
}

// Dir returns the current directory.
func (s *State) Dir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir
}

// SetDir replaces the directory and nudges the loop so it re-watches
// without waiting for the next file event.
func (s *State) SetDir(dir string) {
	s.mu.Lock()
	s.dir = dir
	s.mu.Unlock()

	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// Changed fires after SetDir. Multiple SetDir calls between reads collapse
// into one signal.
func (s *State) Changed() <-chan struct{} {
	return s.changed
}
