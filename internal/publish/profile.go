package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

// ChannelProfile carries profile-changed envelopes between processes.
const (
	ChannelProfile = "ch:profile"
	EventProfile   = "profile-changed"
)

type profileChange struct {
	ProfileName string `json:"profileName"`
}

// ProfileAnnouncer publishes the name of the newly active profile.
type ProfileAnnouncer struct {
	bus domain.SignalBus
}

// NewProfileAnnouncer creates a ProfileAnnouncer.
func NewProfileAnnouncer(bus domain.SignalBus) *ProfileAnnouncer {
	return &ProfileAnnouncer{bus: bus}
}

// ProfileChanged implements service.ChangeNotifier.
func (a *ProfileAnnouncer) ProfileChanged(ctx context.Context, name string) error {
	data, err := EncodeEnvelope(EventProfile, profileChange{ProfileName: name})
	if err != nil {
		return fmt.Errorf("publish: encode profile change: %w", err)
	}
	return a.bus.Publish(ctx, ChannelProfile, data)
}

// Reloader re-reads the active profile from the shared store.
type Reloader interface {
	Reload(ctx context.Context) error
}

// ProfileFollower reloads the local active profile whenever another
// process announces a change, so ingestion filters with the ranges the API
// selected.
type ProfileFollower struct {
	bus    domain.SignalBus
	target Reloader
	logger *slog.Logger
}

// NewProfileFollower creates a ProfileFollower.
func NewProfileFollower(bus domain.SignalBus, target Reloader, logger *slog.Logger) *ProfileFollower {
	return &ProfileFollower{
		bus:    bus,
		target: target,
		logger: logger.With(slog.String("component", "profile_follower")),
	}
}

// Run reloads on every announcement until ctx is cancelled or the
// subscription closes.
func (f *ProfileFollower) Run(ctx context.Context) error {
	changes, err := f.bus.Subscribe(ctx, ChannelProfile)
	if err != nil {
		return fmt.Errorf("publish: follow profiles: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data, ok := <-changes:
			if !ok {
				return nil
			}
			var env Envelope
			if err := json.Unmarshal(data, &env); err != nil || env.Type != EventProfile {
				f.logger.Debug("ignoring malformed profile message", slog.Int("payload_len", len(data)))
				continue
			}
			var change profileChange
			_ = json.Unmarshal(env.Payload, &change)
			if err := f.target.Reload(ctx); err != nil {
				f.logger.WarnContext(ctx, "profile reload failed",
					slog.String("announced", change.ProfileName),
					slog.String("error", err.Error()),
				)
				continue
			}
			f.logger.InfoContext(ctx, "profile reloaded", slog.String("announced", change.ProfileName))
		}
	}
}
