package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/staylink/concierge/internal/app"
	"github.com/staylink/concierge/internal/config"
	httpapi "github.com/staylink/concierge/internal/http"
	"github.com/staylink/concierge/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := log.Level(level).With().Str("service", "staylink-concierge").Str("env", cfg.Env()).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.NewProvider(ctx, cfg.Telemetry)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init tracing")
	}

	container, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build concierge")
	}
	if err := container.WatchInventory(ctx); err != nil {
		logger.Warn().Err(err).Msg("inventory hot reload disabled")
	}

	router := httpapi.Router(cfg, httpapi.Deps{
		Concierge: container.Concierge,
		Matcher:   container.Matcher,
		Inventory: container.Inventory,
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.Traced(router, cfg.Telemetry.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server error")
	}

	if err := container.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to release resources")
	}
	if err := tp.Shutdown(context.Background()); err != nil {
		logger.Error().Err(err).Msg("failed to flush traces")
	}
	logger.Info().Msg("server stopped")
}
