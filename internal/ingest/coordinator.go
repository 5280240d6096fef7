// Package ingest turns one dump file into a published snapshot.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alanyoungcy/marketwatch/internal/domain"
	"github.com/alanyoungcy/marketwatch/internal/marketlog"
	"github.com/alanyoungcy/marketwatch/internal/metrics"
)

// ProcessedPrefix starts the status line published after a snapshot.
const ProcessedPrefix = "Processed: "

// Defaults for Config.
const (
	DefaultSettleDelay = 100 * time.Millisecond
	DefaultReadRetries = 2
	DefaultLockTTL     = 30 * time.Second
)

// RangeSource yields the order ranges of the active profile.
type RangeSource interface {
	Ranges() (buy, sell domain.OrderRange)
}

// Config tunes a Coordinator.
type Config struct {
	// SettleDelay is waited before the first read so the writer can finish.
	SettleDelay time.Duration
	// ReadRetries is the number of extra read attempts, each after SettleDelay.
	ReadRetries int
	LockTTL     time.Duration
}

// Coordinator runs the per-file pipeline: settle, read, name, build, publish.
// Lock, archiver and metrics are optional.
type Coordinator struct {
	cfg       Config
	ranges    RangeSource
	publisher domain.Publisher
	locks     domain.LockManager
	archiver  domain.DumpArchiver
	metrics   *metrics.Ingest
	logger    *slog.Logger
}

// Option configures optional collaborators.
type Option func(*Coordinator)

// WithLockManager makes instances sharing a directory process each file once.
func WithLockManager(lm domain.LockManager) Option {
	return func(c *Coordinator) { c.locks = lm }
}

// WithArchiver copies every processed dump to object storage.
func WithArchiver(a domain.DumpArchiver) Option {
	return func(c *Coordinator) { c.archiver = a }
}

// WithMetrics records ingestion counters.
func WithMetrics(m *metrics.Ingest) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(cfg Config, ranges RangeSource, pub domain.Publisher, logger *slog.Logger, opts ...Option) *Coordinator {
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	if cfg.ReadRetries < 0 {
		cfg.ReadRetries = 0
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}
	c := &Coordinator{
		cfg:       cfg,
		ranges:    ranges,
		publisher: pub,
		metrics:   metrics.NewIngest(nil),
		logger:    logger.With(slog.String("component", "ingest")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HandleFile processes one dump. Files that cannot be read or contain no
// parsable rows are skipped without error; only cancellation is returned.
func (c *Coordinator) HandleFile(ctx context.Context, path string) error {
	c.metrics.FilesSeen.Inc()
	name := filepath.Base(path)
	log := c.logger.With(slog.String("file", name))

	if err := sleep(ctx, c.cfg.SettleDelay); err != nil {
		return err
	}

	if c.locks != nil {
		unlock, err := c.locks.Acquire(ctx, "dump:"+name, c.cfg.LockTTL)
		if errors.Is(err, domain.ErrLockHeld) {
			c.metrics.FilesSkipped.Inc()
			log.Debug("dump claimed by another instance")
			return nil
		}
		if err != nil {
			// Lock backend trouble must not stop ingestion.
			log.Warn("acquire dump lock failed", slog.String("error", err.Error()))
		} else {
			defer unlock()
		}
	}

	content, err := c.read(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.metrics.ReadFailures.Inc()
		log.Warn("read dump failed", slog.String("error", err.Error()))
		return nil
	}

	itemName := marketlog.ItemNameFromFilename(name)
	buyRange, sellRange := c.ranges.Ranges()

	snap, stats, err := marketlog.BuildSnapshot(itemName, content, buyRange, sellRange)
	c.metrics.RowsTotal.Add(float64(stats.TotalRows))
	c.metrics.RowsParsed.Add(float64(stats.ParsedRows))
	if err != nil {
		c.metrics.EmptyDumps.Inc()
		log.Debug("dump has no parsable orders",
			slog.Int("rows", stats.TotalRows),
			slog.Int("rejected", stats.Rejected()),
		)
		return nil
	}

	if err := c.publisher.PublishSnapshot(ctx, snap); err != nil {
		log.Warn("publish snapshot failed", slog.String("error", err.Error()))
	}
	c.metrics.SnapshotsPublished.Inc()
	if err := c.publisher.PublishStatus(ctx, ProcessedPrefix+itemName); err != nil {
		log.Warn("publish status failed", slog.String("error", err.Error()))
	}

	log.Info("dump processed",
		slog.String("item", itemName),
		slog.Int("type_id", snap.TypeID),
		slog.Int("rows", stats.TotalRows),
		slog.Int("parsed", stats.ParsedRows),
		slog.Int("sell_orders", snap.SellOrderCount),
		slog.Int("buy_orders", snap.BuyOrderCount),
	)

	c.archive(ctx, log, name, content)
	return nil
}

// read loads the whole file, retrying a bounded number of times for writers
// that have not finished yet.
func (c *Coordinator) read(ctx context.Context, path string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.ReadRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, c.cfg.SettleDelay); err != nil {
				return nil, err
			}
		}
		content, err := os.ReadFile(path)
		if err == nil {
			return content, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("ingest: read %s after %d attempts: %w", filepath.Base(path), c.cfg.ReadRetries+1, lastErr)
}

func (c *Coordinator) archive(ctx context.Context, log *slog.Logger, name string, content []byte) {
	if c.archiver == nil {
		return
	}
	key, err := c.archiver.ArchiveDump(ctx, name, content)
	if err != nil {
		c.metrics.ArchiveFailures.Inc()
		log.Warn("archive dump failed", slog.String("error", err.Error()))
		return
	}
	log.Debug("dump archived", slog.String("key", key))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
