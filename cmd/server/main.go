// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/config"
	"github.com/tomtom215/tripmatch/internal/logging"
	"github.com/tomtom215/tripmatch/internal/metrics"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logging.Logger()
		l.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logger := logging.Logger()

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("Tripmatch failed")
	}
	logger.Info().Msg("Tripmatch stopped")
}

// run wires the application and blocks until SIGINT or SIGTERM.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func run(cfg *config.Config, logger zerolog.Logger) error {
	logger.Info().
		Str("version", version).
		Str("profile_store", cfg.Profiles.Store).
		Str("events", cfg.Events.Transport).
		Bool("cache_enabled", cfg.Cache.Enabled).
		Bool("persistent_cache", cfg.Cache.PersistentPath != "").
		Msg("Starting tripmatch")
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	a, err := newApp(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer func() {
		if cerr := a.close(); cerr != nil {
			logger.Error().Err(cerr).Msg("Error during shutdown")
		}
	}()

	tree, err := newSupervisor(a)
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().Int("port", cfg.Server.Port).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received, waiting for services")
	case serveErr := <-errCh:
		if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
			logger.Error().Err(serveErr).Msg("Supervisor tree error")
		}
	}
	stop()

	for serveErr := range errCh {
		if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
			logger.Error().Err(serveErr).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logger.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}
	return nil
}
