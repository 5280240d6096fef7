package service

import (
	"context"
	"sync"
	"time"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

// MarketService remembers the most recent pipeline output for the query API.
// It is a domain.Publisher; nothing it holds survives a restart.
type MarketService struct {
	mu        sync.RWMutex
	latest    domain.MarketSnapshot
	hasLatest bool
	latestAt  time.Time
	status    string
	statusAt  time.Time
	processed int64
	now       func() time.Time
}

// NewMarketService creates an empty MarketService.
func NewMarketService() *MarketService {
	return &MarketService{now: time.Now}
}

// PublishStatus records the latest status line.
func (s *MarketService) PublishStatus(_ context.Context, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.statusAt = s.now().UTC()
	return nil
}

// PublishSnapshot records the latest snapshot.
func (s *MarketService) PublishSnapshot(_ context.Context, snap domain.MarketSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = snap
	s.hasLatest = true
	s.latestAt = s.now().UTC()
	s.processed++
	return nil
}

// Latest returns the most recent snapshot and when it arrived. ok is false
// before the first snapshot.
func (s *MarketService) Latest() (snap domain.MarketSnapshot, at time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latestAt, s.hasLatest
}

// Status returns the latest status line, when it arrived, and how many
// snapshots have been seen.
func (s *MarketService) Status() (status string, at time.Time, processed int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.statusAt, s.processed
}

var _ domain.Publisher = (*MarketService)(nil)
