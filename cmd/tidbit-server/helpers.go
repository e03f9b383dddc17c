package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/at-ishikawa/tidbit/internal/assets"
	"github.com/at-ishikawa/tidbit/internal/clock"
	"github.com/at-ishikawa/tidbit/internal/config"
	"github.com/at-ishikawa/tidbit/internal/content"
	"github.com/at-ishikawa/tidbit/internal/database"
	"github.com/at-ishikawa/tidbit/internal/device"
	"github.com/at-ishikawa/tidbit/internal/notification"
	"github.com/at-ishikawa/tidbit/internal/observability"
	"github.com/at-ishikawa/tidbit/internal/push"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

// contentSource is a content store that can also serve full snapshots.
type contentSource interface {
	content.Store
	content.SnapshotSource
}

// services are the long-lived dependencies of the server and the dispatcher.
type services struct {
	cfg        *config.Config
	db         *sqlx.DB
	content    contentSource
	registry   *device.DBRegistry
	gateway    *push.ExpoGateway
	metrics    *observability.DispatchMetrics
	prometheus *prometheus.Registry
}

func newServices(ctx context.Context, cfg *config.Config) (*services, error) {
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database.Connect() > %w", err)
	}

	validator, err := device.NewValidator()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("device.NewValidator() > %w", err), db.Close())
	}

	var contentStore contentSource
	if cfg.Content.Source == "database" {
		contentStore = content.NewDBStore(db)
	} else {
		contentStore = content.NewFileStore(cfg.Content.File)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &services{
		cfg:        cfg,
		db:         db,
		content:    contentStore,
		registry:   device.NewDBRegistry(db, validator, clock.System()),
		gateway:    push.NewExpoGateway(expoConfig(cfg.Push)),
		metrics:    observability.NewDispatchMetrics(reg),
		prometheus: reg,
	}, nil
}

func (s *services) dispatcher() (*notification.Dispatcher, error) {
	renderer, err := assets.NewNotificationRenderer(s.cfg.Content.NotificationTemplate)
	if err != nil {
		return nil, fmt.Errorf("assets.NewNotificationRenderer() > %w", err)
	}

	opts := []notification.Option{notification.WithMetrics(s.metrics)}
	if s.cfg.Scheduler.ClaimsEnabled {
		opts = append(opts, notification.WithClaimer(notification.NewDBClaimer(s.db)))
	}
	return notification.NewDispatcher(s.registry, s.content, s.gateway, renderer, dispatcherConfig(s.cfg), opts...), nil
}

func expoConfig(cfg config.PushConfig) push.ExpoConfig {
	return push.ExpoConfig{
		BaseURL:           cfg.BaseURL,
		AccessToken:       cfg.AccessToken,
		Timeout:           cfg.Timeout,
		RetryAttempts:     cfg.RetryAttempts,
		RetryDelay:        cfg.RetryDelay,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}
}

func dispatcherConfig(cfg *config.Config) notification.Config {
	return notification.Config{
		Workers:            cfg.Scheduler.Workers,
		DeviceTimeout:      cfg.Scheduler.DeviceTimeout,
		RegistryTimeout:    cfg.Scheduler.RegistryTimeout,
		RegistryAttempts:   cfg.Scheduler.RegistryAttempts,
		RegistryRetryDelay: cfg.Scheduler.RegistryRetryDelay,
		MaxBatchSize:       cfg.Push.MaxBatchSize,
		ClaimRetention:     cfg.Scheduler.ClaimRetention,
	}
}

func (s *services) Close() error {
	return errors.Join(s.gateway.Close(), s.db.Close())
}
