// Package publish delivers pipeline output to every interested listener.
package publish

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

// Listener event names, shared by the websocket hub and the bus envelopes.
const (
	EventStatus = "status-update"
	EventMarket = "market-data"
)

// Fanout delivers each event to all publishers in order. A failing publisher
// is logged and does not stop delivery to the rest.
type Fanout struct {
	pubs   []domain.Publisher
	logger *slog.Logger
}

// NewFanout skips nil publishers.
func NewFanout(logger *slog.Logger, pubs ...domain.Publisher) *Fanout {
	f := &Fanout{logger: logger.With(slog.String("component", "publisher"))}
	for _, p := range pubs {
		if p != nil {
			f.pubs = append(f.pubs, p)
		}
	}
	return f
}

// Add registers another publisher.
func (f *Fanout) Add(p domain.Publisher) {
	f.pubs = append(f.pubs, p)
}

// PublishStatus implements domain.Publisher. The returned error joins every
// failure; callers usually just log it.
func (f *Fanout) PublishStatus(ctx context.Context, status string) error {
	var errs []error
	for _, p := range f.pubs {
		if err := p.PublishStatus(ctx, status); err != nil {
			f.logger.WarnContext(ctx, "status delivery failed", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishSnapshot implements domain.Publisher.
func (f *Fanout) PublishSnapshot(ctx context.Context, snap domain.MarketSnapshot) error {
	var errs []error
	for _, p := range f.pubs {
		if err := p.PublishSnapshot(ctx, snap); err != nil {
			f.logger.WarnContext(ctx, "snapshot delivery failed",
				slog.String("item", snap.ItemName),
				slog.String("error", err.Error()),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogPublisher writes every event to the log. It is always wired so a
// headless run still shows what was ingested.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With(slog.String("component", "market"))}
}

// PublishStatus implements domain.Publisher.
func (l *LogPublisher) PublishStatus(ctx context.Context, status string) error {
	l.logger.InfoContext(ctx, "status", slog.String("status", status))
	return nil
}

// PublishSnapshot implements domain.Publisher.
func (l *LogPublisher) PublishSnapshot(ctx context.Context, snap domain.MarketSnapshot) error {
	l.logger.InfoContext(ctx, "snapshot",
		slog.String("item", snap.ItemName),
		slog.Int("type_id", snap.TypeID),
		slog.Float64("sell", snap.SellPrice),
		slog.Float64("buy", snap.BuyPrice),
		slog.Int("sell_orders", snap.SellOrderCount),
		slog.Int("buy_orders", snap.BuyOrderCount),
		slog.Float64("sell_ci_low", snap.SellPrice95CI),
		slog.Float64("buy_ci_high", snap.BuyPrice95CI),
	)
	return nil
}

var (
	_ domain.Publisher = (*Fanout)(nil)
	_ domain.Publisher = (*LogPublisher)(nil)
)
