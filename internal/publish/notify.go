package publish

import (
	"context"

	"github.com/alanyoungcy/marketwatch/internal/domain"
	"github.com/alanyoungcy/marketwatch/internal/notify"
	"github.com/alanyoungcy/marketwatch/internal/trade"
)

// ProfileSource yields the active trading profile.
type ProfileSource interface {
	Active() domain.Profile
}

// NotifyPublisher forwards events to chat senders. Snapshots are only sent
// when the round-trip margin clears the active profile's margin threshold.
type NotifyPublisher struct {
	notifier *notify.Notifier
	profiles ProfileSource
}

// NewNotifyPublisher creates a NotifyPublisher.
func NewNotifyPublisher(n *notify.Notifier, profiles ProfileSource) *NotifyPublisher {
	return &NotifyPublisher{notifier: n, profiles: profiles}
}

// PublishStatus implements domain.Publisher.
func (p *NotifyPublisher) PublishStatus(ctx context.Context, status string) error {
	return p.notifier.Notify(ctx, notify.EventStatus, "marketwatch", status)
}

// PublishSnapshot implements domain.Publisher.
func (p *NotifyPublisher) PublishSnapshot(ctx context.Context, snap domain.MarketSnapshot) error {
	if !p.notifier.Allows(notify.EventSnapshot) {
		return nil
	}
	prof := p.profiles.Active()
	res := trade.CalculateSnapshot(snap, prof)
	if !res.MeetsThreshold(prof) {
		return nil
	}
	title, msg := notify.SnapshotMessage(snap, res)
	return p.notifier.Notify(ctx, notify.EventSnapshot, title, msg)
}

var _ domain.Publisher = (*NotifyPublisher)(nil)
