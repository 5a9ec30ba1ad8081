package main

import (
	"contactfinder/internal/api"
	"contactfinder/internal/api/handler/v1handler"
	"contactfinder/internal/config"
	"contactfinder/pkg/logger"
	"contactfinder/pkg/metrics"
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, cfg *config.Config, deps api.Deps) func(ctx context.Context) {
	server := api.NewServer(ctx, deps, api.NewOptions(cfg))

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Starts the API server",
		RunE: func(*cobra.Command, []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mp, err := metrics.NewMeterProvider(prometheus.DefaultRegisterer)
			if err != nil {
				return err
			}
			defer func() {
				if err := mp.Shutdown(context.Background()); err != nil {
					logger.Warn(ctx, "could not shut down meter provider", zap.Error(err))
				}
			}()

			tp, stopTracer := newTracerProvider(ctx, cfg)
			defer stopTracer()

			finder, err := newFinder(cfg, mp, tp)
			if err != nil {
				return err
			}

			stopWebserver := setupServer(ctx, cfg, api.Deps{Deps: v1handler.Deps{Finder: finder}})

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)

			return nil
		},
	}
}
