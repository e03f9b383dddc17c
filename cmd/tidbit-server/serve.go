package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/at-ishikawa/tidbit/internal/bootstrap"
	"github.com/at-ishikawa/tidbit/internal/notification"
	"github.com/at-ishikawa/tidbit/internal/server"
)

func newServeCommand() *cobra.Command {
	var withoutDispatcher bool
	command := &cobra.Command{
		Use:   "serve",
		Short: "Serve the content API and run the notification dispatcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), !withoutDispatcher)
		},
	}
	command.Flags().BoolVar(&withoutDispatcher, "no-dispatcher", false, "Serve the API without sending notifications")
	return command
}

func runServe(ctx context.Context, dispatch bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	svc, err := newServices(ctx, cfg)
	if err != nil {
		return err
	}

	var dispatcher *notification.Dispatcher
	if dispatch {
		dispatcher, err = svc.dispatcher()
		if err != nil {
			return errors.Join(err, svc.Close())
		}
	}

	app := bootstrap.New(cfg.Server.ShutdownTimeout)
	app.AddShutdownHook(func(ctx context.Context) error {
		return svc.Close()
	})

	handler := server.New(svc.content, svc.registry,
		server.WithGatherer(svc.prometheus),
		server.WithAllowedOrigins(cfg.Server.CORS.AllowedOrigins),
	).Handler()
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	app.AddShutdownHook(srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			slog.Info("starting server", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("srv.ListenAndServe() > %w", err)
			}
			return nil
		})
		if dispatcher != nil {
			g.Go(func() error {
				slog.Info("starting notification dispatcher",
					"workers", cfg.Scheduler.Workers,
					"claims", cfg.Scheduler.ClaimsEnabled,
				)
				return dispatcher.Run(ctx)
			})
		}
		return g.Wait()
	})
}
