// Package notify pushes market events to chat channels. Notifications are
// dispatched to every registered Sender (Telegram, Discord) and can be
// filtered by event type.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alanyoungcy/marketwatch/internal/domain"
	"github.com/alanyoungcy/marketwatch/internal/trade"
)

// Event types understood by Notify.
const (
	EventSnapshot = "snapshot"
	EventStatus   = "status"
)

// Sender is one notification channel.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a short identifier such as "telegram".
	Name() string
}

// Notifier dispatches to all Senders. Notify honours the event filter;
// NotifyAll bypasses it.
type Notifier struct {
	senders []Sender
	events  map[string]bool // allowed event types
	logger  *slog.Logger
}

// NewNotifier creates a Notifier. An empty events list allows every event.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		if e = strings.TrimSpace(e); e != "" {
			allowed[e] = true
		}
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Enabled reports whether any sender is configured.
func (n *Notifier) Enabled() bool {
	return len(n.senders) > 0
}

// Allows reports whether event passes the filter.
func (n *Notifier) Allows(event string) bool {
	return len(n.events) == 0 || n.events[event]
}

// Notify sends to all senders if the event type passes the filter.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) error {
	if !n.Allows(event) {
		n.logger.DebugContext(ctx, "event filtered out", slog.String("event", event))
		return nil
	}
	return n.dispatch(ctx, title, message)
}

// NotifyAll sends to all senders regardless of event type.
func (n *Notifier) NotifyAll(ctx context.Context, title, message string) error {
	return n.dispatch(ctx, title, message)
}

// dispatch tries every sender; one failure does not stop the rest. Failures
// are combined into one error.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.DebugContext(ctx, "notification sent",
			slog.String("sender", s.Name()),
			slog.String("title", title),
		)
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

// SnapshotMessage renders a snapshot and its round-trip economics for chat.
func SnapshotMessage(snap domain.MarketSnapshot, res trade.Result) (title, message string) {
	title = fmt.Sprintf("%s (type %d)", snap.ItemName, snap.TypeID)

	var b strings.Builder
	fmt.Fprintf(&b, "Sell: %s (%d orders, 95%% low %s)\n",
		trade.FormatISK(snap.SellPrice), snap.SellOrderCount, trade.FormatISK(snap.SellPrice95CI))
	fmt.Fprintf(&b, "Buy: %s (%d orders, 95%% high %s)\n",
		trade.FormatISK(snap.BuyPrice), snap.BuyOrderCount, trade.FormatISK(snap.BuyPrice95CI))
	if snap.HasSell() && snap.HasBuy() {
		fmt.Fprintf(&b, "Profit: %s, margin %s, markup %s",
			trade.FormatISK(res.Profit), trade.FormatPercent(res.Margin), trade.FormatPercent(res.Markup))
	}
	return title, strings.TrimRight(b.String(), "\n")
}
