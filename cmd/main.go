// Package main provides the CLI entrypoint for the contact finder.
// It wires the subcommands (serve, lookup), loads configuration and
// initializes logging.
package main

import (
	"contactfinder/internal/config"
	"contactfinder/internal/contact"
	"contactfinder/pkg/fetcher"
	"contactfinder/pkg/logger"
	"contactfinder/pkg/resolver/clearbit"
	"contactfinder/pkg/tracing"
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const resolverJitter = 100 * time.Millisecond

// newTracerProvider builds the span pipeline from the tracing config. The
// returned func flushes pending spans.
func newTracerProvider(ctx context.Context, cfg *config.Config) (*sdktrace.TracerProvider, func()) {
	tp := tracing.NewTracerProvider(ctx, tracing.Options{
		Enabled:     cfg.Tracing.Enabled,
		SampleRatio: cfg.Tracing.SampleRatio,
	})

	return tp, func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn(ctx, "could not shut down tracer provider", zap.Error(err))
		}
	}
}

// newFinder assembles the lookup pipeline from the configuration. mp and tp
// may be nil, in which case the global providers are used.
func newFinder(cfg *config.Config, mp metric.MeterProvider, tp trace.TracerProvider) (contact.Finder, error) {
	r := clearbit.New(&http.Client{Timeout: cfg.Resolver.Timeout}, clearbit.Options{
		BaseURL:     cfg.Resolver.BaseURL,
		MaxAttempts: cfg.Resolver.MaxAttempts,
		RetryDelay:  cfg.Resolver.RetryDelay,
		MaxJitter:   resolverJitter,
		UserAgent:   cfg.Resolver.UserAgent,
	})
	f := fetcher.New(fetcher.Options{
		Timeout:            cfg.Fetcher.Timeout,
		MaxRedirects:       cfg.Fetcher.MaxRedirects,
		MaxBodyBytes:       cfg.Fetcher.MaxBodyBytes,
		UserAgent:          cfg.Fetcher.UserAgent,
		InsecureSkipVerify: cfg.Fetcher.InsecureSkipVerify,
	})

	opts := contact.NewOptions(cfg)
	opts.MeterProvider = mp
	opts.TracerProvider = tp

	finder, err := contact.New(r, f, opts)
	if err != nil {
		return nil, fmt.Errorf("could not create contact finder: %w", err)
	}

	return finder, nil
}

func main() {
	var configPath string
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "contactfinder",
		Short: "Finds the phone numbers, emails and social links published on a company website",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("could not load config file: %w", err)
			}
			*cfg = *loaded
			logger.Setup(cfg.Environment, cfg.LogLevel)

			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yml", "Config File Path")

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			logger.Sync()

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		serveCommand(cfg),
		lookupCommand(cfg),
	)

	err := rootCmd.ExecuteContext(ctx)
	logger.Sync()
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}
