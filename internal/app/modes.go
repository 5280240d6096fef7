package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/marketwatch/internal/domain"
	"github.com/alanyoungcy/marketwatch/internal/ingest"
	"github.com/alanyoungcy/marketwatch/internal/metrics"
	"github.com/alanyoungcy/marketwatch/internal/publish"
	"github.com/alanyoungcy/marketwatch/internal/server"
	"github.com/alanyoungcy/marketwatch/internal/server/handler"
	"github.com/alanyoungcy/marketwatch/internal/server/ws"
	"github.com/alanyoungcy/marketwatch/internal/service"
	"github.com/alanyoungcy/marketwatch/internal/watcher"
)

// WatchMode runs the directory watcher and ingestion pipeline only. Events
// go to the log, the Redis bus and the notifiers.
func (a *App) WatchMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting watch mode")

	profiles, err := a.profileService(ctx, deps)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	a.followProfiles(ctx, g, deps, profiles)
	fanout := a.outputs(ctx, g, deps, profiles)
	a.startWatcher(ctx, g, deps, profiles, fanout, watcher.NewState(a.cfg.Watcher.LogDir))
	return g.Wait()
}

// ServerMode serves the API for pipelines running elsewhere, following them
// over the Redis bus.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")
	if deps.SignalBus == nil {
		return errors.New("server mode: redis must be enabled")
	}

	profiles, err := a.profileService(ctx, deps)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	a.followProfiles(ctx, g, deps, profiles)

	market := service.NewMarketService()
	hub := ws.NewHub(a.logger)
	g.Go(func() error { return hub.Run(ctx) })

	relay := publish.NewRelay(deps.SignalBus, publish.NewFanout(a.logger, market, hub), a.logger)
	g.Go(func() error { return relay.Run(ctx) })

	a.startHTTPServer(ctx, g, deps, profiles, market, hub, nil)
	return g.Wait()
}

// FullMode runs the watcher, the pipeline and the API in one process.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	profiles, err := a.profileService(ctx, deps)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	market := service.NewMarketService()
	hub := ws.NewHub(a.logger)
	g.Go(func() error { return hub.Run(ctx) })

	a.followProfiles(ctx, g, deps, profiles)
	fanout := a.outputs(ctx, g, deps, profiles)
	fanout.Add(market)
	fanout.Add(hub)

	state := watcher.NewState(a.cfg.Watcher.LogDir)
	a.startWatcher(ctx, g, deps, profiles, fanout, state)
	a.startHTTPServer(ctx, g, deps, profiles, market, hub, state)
	return g.Wait()
}

func (a *App) profileService(ctx context.Context, deps *Dependencies) (*service.ProfileService, error) {
	profiles := service.NewProfileService(deps.ProfileStore, deps.SettingsStore, a.logger)
	if deps.SignalBus != nil {
		profiles.SetChangeNotifier(publish.NewProfileAnnouncer(deps.SignalBus))
	}
	if err := profiles.Init(ctx); err != nil {
		return nil, fmt.Errorf("app: init profiles: %w", err)
	}
	return profiles, nil
}

// followProfiles keeps this process's active profile in step with changes
// made by any process sharing the store.
func (a *App) followProfiles(ctx context.Context, g *errgroup.Group, deps *Dependencies, profiles *service.ProfileService) {
	if deps.SignalBus == nil {
		return
	}
	follower := publish.NewProfileFollower(deps.SignalBus, profiles, a.logger)
	g.Go(func() error { return follower.Run(ctx) })
}

// outputs builds the publishers every mode that ingests shares. Network
// listeners sit behind their own queue so ingestion never waits on them.
func (a *App) outputs(ctx context.Context, g *errgroup.Group, deps *Dependencies, profiles *service.ProfileService) *publish.Fanout {
	fanout := publish.NewFanout(a.logger, publish.NewLogPublisher(a.logger))
	queued := func(name string, p domain.Publisher) {
		q := publish.NewQueue(name, p, publish.DefaultQueueSize, a.logger)
		g.Go(func() error { return q.Run(ctx) })
		fanout.Add(q)
	}
	if deps.SignalBus != nil {
		queued("bus", publish.NewBusPublisher(deps.SignalBus))
	}
	if deps.Notifier.Enabled() {
		queued("notify", publish.NewNotifyPublisher(deps.Notifier, profiles))
	}
	return fanout
}

func (a *App) startWatcher(
	ctx context.Context,
	g *errgroup.Group,
	deps *Dependencies,
	profiles *service.ProfileService,
	out domain.Publisher,
	state *watcher.State,
) {
	opts := []ingest.Option{ingest.WithMetrics(deps.Ingest)}
	if deps.LockManager != nil {
		opts = append(opts, ingest.WithLockManager(deps.LockManager))
	}
	if deps.Archiver != nil {
		opts = append(opts, ingest.WithArchiver(deps.Archiver))
	}

	coord := ingest.NewCoordinator(ingest.Config{
		SettleDelay: a.cfg.Watcher.SettleDelay.Duration,
		ReadRetries: a.cfg.Watcher.ReadRetries,
		LockTTL:     a.cfg.Watcher.LockTTL.Duration,
	}, profiles, out, a.logger, opts...)

	loop := watcher.NewLoop(state, coord, out, watcher.Config{
		Extension:  a.cfg.Watcher.Extension,
		RetryDelay: a.cfg.Watcher.RetryDelay.Duration,
		QueueSize:  a.cfg.Watcher.QueueSize,
	}, a.logger)

	g.Go(func() error { return loop.Run(ctx) })
}

func (a *App) startHTTPServer(
	ctx context.Context,
	g *errgroup.Group,
	deps *Dependencies,
	profiles *service.ProfileService,
	market *service.MarketService,
	hub *ws.Hub,
	state *watcher.State,
) {
	handlers := server.Handlers{
		Health:   handler.NewHealthHandler(deps.Health, a.logger),
		Profiles: handler.NewProfileHandler(profiles, a.logger),
		Market:   handler.NewMarketHandler(market, profiles),
		Metrics:  metrics.Handler(deps.Registry),
	}
	var dirState handler.DirState
	if state != nil {
		dirState = state
		handlers.Watch = handler.NewWatchHandler(state, a.logger)
	}
	handlers.Status = handler.NewStatusHandler(a.cfg.Mode, time.Now(), dirState, market, profiles)

	srv := server.NewServer(server.Config{
		Host:        a.cfg.Server.Host,
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimit:   a.cfg.Server.RateLimit,
		RateWindow:  a.cfg.Server.RateWindow.Duration,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			a.logger.WarnContext(shutCtx, "HTTP server shutdown incomplete", slog.String("error", err.Error()))
		}
		return ctx.Err()
	})
}
