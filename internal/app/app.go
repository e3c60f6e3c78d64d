package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"manhwahub/database"
	"manhwahub/internal/config"
	"manhwahub/internal/microservices/alerts"
	"manhwahub/internal/microservices/events"
	"manhwahub/internal/microservices/http-api/repository"
	"manhwahub/internal/microservices/http-api/service"
	"manhwahub/internal/poller"

	"github.com/redis/go-redis/v9"
)

// Options overrides the alert capabilities; nil fields are built from config.
type Options struct {
	Sound   service.SoundPlayer
	Desktop service.DesktopNotifier
}

// App is the dependency container shared by the API server and the CLI.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	KV            repository.KVStore
	Redis         *redis.Client
	Hub           *events.Hub
	Bridge        *events.RedisBridge
	Poller        *poller.Poller
	Settings      service.NotificationSettingsService
	Notifications service.NotificationService
	Auth          service.AuthService

	wg sync.WaitGroup
}

// New connects storage and builds both stores. Background work starts with Start.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
		Hub:    events.NewHub(),
		Auth:   service.NewAuthService(cfg),
	}

	if cfg.StorageDriver == config.DriverRedis || cfg.SyncEnabled {
		rdb, err := database.ConnectRedis(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		a.Redis = rdb
	}

	kv, err := openKVStore(ctx, cfg, a.Redis, logger)
	if err != nil {
		a.closeRedis()
		return nil, err
	}
	a.KV = kv

	var broadcaster service.ChangeBroadcaster = a.Hub
	if cfg.SyncEnabled {
		a.Bridge = events.NewRedisBridge(a.Redis, cfg.SyncChannel, a.Hub, func(string) { a.Poller.Trigger() }, logger)
		broadcaster = a.Bridge
	}

	a.Settings, err = service.NewNotificationSettingsService(ctx, repository.NewSettingsRepository(kv), broadcaster, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Notifications, err = service.NewNotificationService(ctx, repository.NewNotificationRepository(kv), service.NotificationDeps{
		Settings:    a.Settings,
		Sound:       soundPlayer(cfg, opts, logger),
		Desktop:     desktopNotifier(cfg, opts),
		Broadcaster: broadcaster,
		Logger:      logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	// reloads announce locally only; the writer already published to peers
	a.Poller = poller.New(cfg.PollInterval, a.Hub, logger,
		poller.Target{Name: "notifications", Store: a.Notifications, OnChange: service.EventNotificationUpdated},
		poller.Target{Name: "settings", Store: a.Settings, OnChange: service.EventSettingsUpdated},
	)
	return a, nil
}

// Start runs the poller and, when sync is enabled, the Redis bridge until ctx ends.
func (a *App) Start(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.Poller.Run(ctx)
	}()

	if a.Bridge != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.Bridge.Run(ctx); err != nil {
				a.Logger.Error("sync bridge stopped", "error", err)
			}
		}()
	}
}

// Wait blocks until the goroutines launched by Start have returned.
func (a *App) Wait() {
	a.wg.Wait()
}

// Close releases storage and the Redis connection.
func (a *App) Close() error {
	var errs []error
	if a.KV != nil {
		errs = append(errs, a.KV.Close())
	}
	// the redis KV store owns the client
	if a.Config.StorageDriver != config.DriverRedis || a.KV == nil {
		a.closeRedis()
	}
	return errors.Join(errs...)
}

func (a *App) closeRedis() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
}

func soundPlayer(cfg *config.Config, opts Options, logger *slog.Logger) service.SoundPlayer {
	if opts.Sound != nil {
		return opts.Sound
	}
	if !cfg.SoundEnabled {
		return service.NopSoundPlayer()
	}
	player, err := alerts.NewCommandPlayer(cfg.SoundCommand)
	if err != nil {
		logger.Warn("sound disabled", "error", err)
		return service.NopSoundPlayer()
	}
	return player
}

func desktopNotifier(cfg *config.Config, opts Options) service.DesktopNotifier {
	if opts.Desktop != nil {
		return opts.Desktop
	}
	return alerts.NewCommandNotifier(cfg.DesktopCommand, service.Permission(cfg.DesktopPermission))
}
