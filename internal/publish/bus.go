package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

// Bus channels.
const (
	ChannelMarket = "ch:market"
	ChannelStatus = "ch:status"
)

// Envelope is the JSON shape of every bus message.
type Envelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// EncodeEnvelope wraps payload in an Envelope with a fresh id and returns
// the JSON encoding.
func EncodeEnvelope(eventType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		ID:        uuid.NewString(),
		Type:      eventType,
		Payload:   raw,
		Timestamp: time.Now().UTC(),
	})
}

// BusPublisher puts events on a SignalBus so other processes can follow
// the pipeline.
type BusPublisher struct {
	bus domain.SignalBus
}

// NewBusPublisher creates a BusPublisher.
func NewBusPublisher(bus domain.SignalBus) *BusPublisher {
	return &BusPublisher{bus: bus}
}

// PublishStatus implements domain.Publisher.
func (b *BusPublisher) PublishStatus(ctx context.Context, status string) error {
	data, err := EncodeEnvelope(EventStatus, status)
	if err != nil {
		return fmt.Errorf("publish: encode status: %w", err)
	}
	return b.bus.Publish(ctx, ChannelStatus, data)
}

// PublishSnapshot implements domain.Publisher.
func (b *BusPublisher) PublishSnapshot(ctx context.Context, snap domain.MarketSnapshot) error {
	data, err := EncodeEnvelope(EventMarket, snap)
	if err != nil {
		return fmt.Errorf("publish: encode snapshot: %w", err)
	}
	return b.bus.Publish(ctx, ChannelMarket, data)
}

// Relay subscribes to the bus channels and replays their events into a
// local publisher, typically the websocket hub of an instance that does not
// watch a directory itself.
type Relay struct {
	bus    domain.SignalBus
	target domain.Publisher
	logger *slog.Logger
}

// NewRelay creates a Relay.
func NewRelay(bus domain.SignalBus, target domain.Publisher, logger *slog.Logger) *Relay {
	return &Relay{
		bus:    bus,
		target: target,
		logger: logger.With(slog.String("component", "bus_relay")),
	}
}

// Run forwards until ctx is cancelled or both subscriptions close.
func (r *Relay) Run(ctx context.Context) error {
	market, err := r.bus.Subscribe(ctx, ChannelMarket)
	if err != nil {
		return fmt.Errorf("publish: relay: %w", err)
	}
	status, err := r.bus.Subscribe(ctx, ChannelStatus)
	if err != nil {
		return fmt.Errorf("publish: relay: %w", err)
	}
	r.logger.Info("bus relay started")
	defer r.logger.Info("bus relay stopped")

	for market != nil || status != nil {
		var (
			data []byte
			ok   bool
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data, ok = <-market:
			if !ok {
				market = nil
				continue
			}
		case data, ok = <-status:
			if !ok {
				status = nil
				continue
			}
		}
		if err := r.handle(ctx, data); err != nil {
			r.logger.Debug("relay message dropped",
				slog.String("error", err.Error()),
				slog.Int("payload_len", len(data)),
			)
		}
	}
	return nil
}

func (r *Relay) handle(ctx context.Context, data []byte) error {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	switch env.Type {
	case EventStatus:
		var s string
		if err := json.Unmarshal(env.Payload, &s); err != nil {
			return err
		}
		return r.target.PublishStatus(ctx, s)
	case EventMarket:
		var snap domain.MarketSnapshot
		if err := json.Unmarshal(env.Payload, &snap); err != nil {
			return err
		}
		return r.target.PublishSnapshot(ctx, snap)
	default:
		return fmt.Errorf("unknown event type %q", env.Type)
	}
}

var _ domain.Publisher = (*BusPublisher)(nil)
