package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/at-ishikawa/tidbit/internal/config"
	"github.com/at-ishikawa/tidbit/internal/content"
	"github.com/at-ishikawa/tidbit/internal/database"
	"github.com/at-ishikawa/tidbit/internal/kvstore"
	"github.com/at-ishikawa/tidbit/internal/repetition"
	"github.com/at-ishikawa/tidbit/internal/study"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

// app holds the stores and services shared by the study commands.
type app struct {
	cfg      *config.Config
	location *time.Location
	state    kvstore.Store
	content  content.Store
	engine   *repetition.Engine
	closers  []func() error
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loadConfig() > %w", err)
	}
	location, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("cfg.Location() > %w", err)
	}

	a := &app{cfg: cfg, location: location}
	contentStore, err := a.openContentStore(ctx)
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}
	a.content = contentStore

	state, err := kvstore.Open(storeConfig(cfg.Store))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("kvstore.Open() > %w", err), a.Close())
	}
	a.closers = append(a.closers, state.Close)
	a.state = state
	a.engine = repetition.NewEngine(state)
	return a, nil
}

func storeConfig(cfg config.StoreConfig) kvstore.Config {
	if cfg.InMemory {
		return kvstore.InMemoryConfig()
	}
	storeCfg := kvstore.DefaultConfig(cfg.Path)
	storeCfg.GCInterval = cfg.GCInterval
	if debugMode {
		storeCfg.Logger = slog.Default()
	}
	return storeCfg
}

func (a *app) openContentStore(ctx context.Context) (content.Store, error) {
	if a.cfg.Content.Source != "database" {
		return content.NewFileStore(a.cfg.Content.File), nil
	}
	db, err := database.Connect(ctx, a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database.Connect() > %w", err)
	}
	a.closers = append(a.closers, db.Close)
	return content.NewDBStore(db), nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) generator() *study.Generator {
	return study.NewGenerator(a.state, a.engine, a.content, study.PlanConfig{
		DefaultTarget:    a.cfg.Plan.DailyTarget,
		DueRatio:         a.cfg.Plan.DueRatio,
		MinutesPerTidbit: a.cfg.Plan.MinutesPerTidbit,
		Location:         a.location,
	})
}

func (a *app) selector() *study.Selector {
	return study.NewSelector(a.engine, a.content)
}

func (a *app) runtime() *study.Runtime {
	return study.NewRuntime(a.state, a.engine)
}

// categories resolves the categories to study: the flag values, then the
// configured ones, then every category of the content.
func (a *app) categories(ctx context.Context, selected []string) ([]string, error) {
	if len(selected) > 0 {
		return selected, nil
	}
	if len(a.cfg.Plan.Categories) > 0 {
		return a.cfg.Plan.Categories, nil
	}
	categories, err := a.content.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("content.Categories() > %w", err)
	}
	ids := make([]string, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// withApp opens the app for the duration of fn.
func withApp(ctx context.Context, fn func(a *app) error) (err error) {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("a.Close() > %w", closeErr))
		}
	}()
	return fn(a)
}
