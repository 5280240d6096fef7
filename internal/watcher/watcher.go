// Package watcher keeps a native file system watch on the market log
// directory alive and hands every newly created dump to a FileHandler.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Status lines published while the loop moves between states.
const (
	StatusWaiting    = "Waiting for market logs directory..."
	StatusWatching   = "Watching for market logs..."
	watchErrorPrefix = "Watch error: "
)

// DefaultRetryDelay is the pause before re-checking a missing directory or
// retrying a failed watch.
const DefaultRetryDelay = 5 * time.Second

// FileHandler consumes one newly created dump.
type FileHandler interface {
	HandleFile(ctx context.Context, path string) error
}

// FileHandlerFunc adapts a function to FileHandler.
type FileHandlerFunc func(ctx context.Context, path string) error

// HandleFile calls f.
func (f FileHandlerFunc) HandleFile(ctx context.Context, path string) error {
	return f(ctx, path)
}

// StatusPublisher receives the loop's human-readable state changes.
type StatusPublisher interface {
	PublishStatus(ctx context.Context, status string) error
}

// Config tunes the loop.
type Config struct {
	Extension  string        // case-sensitive, including the dot
	RetryDelay time.Duration
	QueueSize  int
}

// Loop watches State.Dir() and dispatches created files with the configured
// extension. Files are handled one at a time in notification order.
type Loop struct {
	state   *State
	handler FileHandler
	status  StatusPublisher
	cfg     Config
	logger  *slog.Logger
}

// NewLoop creates a Loop. Zero Config fields fall back to ".txt",
// DefaultRetryDelay and DefaultQueueSize.
func NewLoop(state *State, handler FileHandler, status StatusPublisher, cfg Config, logger *slog.Logger) *Loop {
	if cfg.Extension == "" {
		cfg.Extension = ".txt"
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	return &Loop{
		state:   state,
		handler: handler,
		status:  status,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "watcher")),
	}
}

// Run loops until ctx is cancelled and then returns ctx.Err(). No file system
// condition ends the loop: a missing directory or a failed watch is retried
// after RetryDelay, and a watch that goes away sends it back to waiting for
// the directory.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("watcher loop started")
	defer l.logger.Info("watcher loop stopped")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		dir := l.state.Dir()
		if err := ensureDir(dir); err != nil {
			l.logger.Warn("log directory unavailable", slog.String("dir", dir), slog.String("error", err.Error()))
			l.publish(ctx, StatusWaiting)
			if err := l.wait(ctx); err != nil {
				return err
			}
			continue
		}

		w, err := l.watch(dir)
		if err != nil {
			l.logger.Warn("watch failed", slog.String("dir", dir), slog.String("error", err.Error()))
			l.publish(ctx, watchErrorPrefix+err.Error())
			if err := l.wait(ctx); err != nil {
				return err
			}
			continue
		}

		l.logger.Info("watching directory", slog.String("dir", dir))
		l.publish(ctx, StatusWatching)
		err = l.consume(ctx, w, dir)
		if cerr := w.Close(); cerr != nil {
			l.logger.Debug("close watcher", slog.String("error", cerr.Error()))
		}
		if err != nil {
			return err
		}
	}
}

// ensureDir creates dir if needed and checks that it is a directory.
func ensureDir(dir string) error {
	if dir == "" {
		return errors.New("no directory configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

func (l *Loop) watch(dir string) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

// consume drains notifications until the queue closes, the watched directory
// disappears, the directory setting changes, or ctx is cancelled. Only the
// last case returns an error.
func (l *Loop) consume(ctx context.Context, w *fsnotify.Watcher, dir string) error {
	bridge := NewBridge(w.Events, w.Errors, l.cfg.QueueSize)
	defer bridge.Stop()

	root := filepath.Clean(dir)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-l.state.Changed():
			if l.state.Dir() != dir {
				l.logger.Info("watch directory changed", slog.String("from", dir), slog.String("to", l.state.Dir()))
				return nil
			}

		case ev, ok := <-bridge.Events():
			if !ok {
				l.logger.Warn("watch channel closed", slog.String("dir", dir))
				return nil
			}
			if ev.Err != nil {
				l.logger.Warn("watch event error", slog.String("error", ev.Err.Error()))
				continue
			}
			if filepath.Clean(ev.Name) == root && (ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename)) {
				l.logger.Warn("watched directory removed", slog.String("dir", dir))
				return nil
			}
			if !ev.Op.Has(fsnotify.Create) || filepath.Ext(ev.Name) != l.cfg.Extension {
				continue
			}
			if err := l.handler.HandleFile(ctx, ev.Name); err != nil {
				if errors.Is(err, context.Canceled) && ctx.Err() != nil {
					return ctx.Err()
				}
				l.logger.Warn("handle file failed", slog.String("path", ev.Name), slog.String("error", err.Error()))
			}
		}
	}
}

func (l *Loop) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(l.cfg.RetryDelay):
		return nil
	}
}

func (l *Loop) publish(ctx context.Context, status string) {
	if l.status == nil {
		return
	}
	if err := l.status.PublishStatus(ctx, status); err != nil {
		l.logger.Debug("publish status failed", slog.String("error", err.Error()))
	}
}
