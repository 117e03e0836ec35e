package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skysweep/meteoq/internal/adapter/httpapi"
	"github.com/skysweep/meteoq/internal/adapter/nominatim"
	"github.com/skysweep/meteoq/internal/adapter/openmeteo"
	"github.com/skysweep/meteoq/internal/config"
	"github.com/skysweep/meteoq/internal/domain"
	"github.com/skysweep/meteoq/internal/observability"
	"github.com/skysweep/meteoq/internal/resilience"
	"github.com/skysweep/meteoq/internal/unified"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
			metrics := observability.NewMetrics()
			catalog := domain.NewCatalog(cfg.Endpoints)

			var fetcher domain.SegmentFetcher = openmeteo.NewClient(cfg.FetchTimeout, logger, metrics)
			if cfg.RetryMax > 0 {
				fetcher = resilience.NewFetcher(fetcher, resilience.Config{
					MaxRetries:      cfg.RetryMax,
					InitialInterval: cfg.RetryInitialInterval,
					MaxInterval:     cfg.RetryMaxInterval,
				}, logger, metrics)
				logger.Info("retries enabled", "max_retries", cfg.RetryMax)
			}

			var datasets unified.DatasetFetcher = unified.NewService(catalog, fetcher, logger, metrics, cfg.MaxConcurrency)
			if cfg.CacheTTL > 0 {
				datasets = unified.NewCachedService(datasets, cfg.CacheSize, cfg.CacheTTL, metrics)
				logger.Info("dataset cache enabled", "ttl", cfg.CacheTTL, "size", cfg.CacheSize)
			}

			geoClient := nominatim.NewClient(cfg.NominatimURL, cfg.NominatimTimeout, logger, metrics)
			geocoder := nominatim.NewCachedGeocoder(geoClient, cfg.NominatimCacheSize, metrics)

			timezones := openmeteo.NewTimezoneResolver(cfg.Endpoints.Forecast, cfg.FetchTimeout)

			srv := httpapi.NewServer(cfg.HTTPAddr, datasets, catalog, geocoder, timezones, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				logger.Error("http server error", "error", err)
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
				return err
			}

			logger.Info("shutdown complete")
			return nil
		},
	}
}
