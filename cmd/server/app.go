// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/api"
	"github.com/tomtom215/tripmatch/internal/cache"
	"github.com/tomtom215/tripmatch/internal/compat"
	"github.com/tomtom215/tripmatch/internal/config"
	"github.com/tomtom215/tripmatch/internal/database"
	"github.com/tomtom215/tripmatch/internal/eventprocessor"
	"github.com/tomtom215/tripmatch/internal/explain"
	"github.com/tomtom215/tripmatch/internal/middleware"
	"github.com/tomtom215/tripmatch/internal/supervisor"
	"github.com/tomtom215/tripmatch/internal/supervisor/services"
)

// app holds the wired components of one server process.
type app struct {
	cfg      *config.Config
	profiles database.ProfileStore
	cache    *cache.ScoreCache
	service  *compat.Service
	bus      *eventprocessor.Bus
	consumer *eventprocessor.Consumer
	guard    *explain.Guard
	handler  http.Handler
	logger   zerolog.Logger
}

// newApp opens the stores and the event bus and builds the service and the
// HTTP handler. On error everything opened so far is closed.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func newApp(cfg *config.Config, logger zerolog.Logger) (a *app, err error) {
	a = &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			if closeErr := a.close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("cleanup after failed startup")
			}
			a = nil
		}
	}()

	if a.profiles, err = openProfileStore(&cfg.Profiles, logger); err != nil {
		return a, err
	}
	if a.cache, err = openScoreCache(&cfg.Cache, logger); err != nil {
		return a, err
	}

	registry, err := compat.NewParameterRegistry(cfg.DefaultParameters(), logger)
	if err != nil {
		return a, fmt.Errorf("default scoring parameters: %w", err)
	}

	var explainer compat.Explainer
	if cfg.Explain.Enabled {
		tmpl, err := explain.NewTemplateExplainer()
		if err != nil {
			return a, fmt.Errorf("explanation templates: %w", err)
		}
		a.guard = explain.NewGuard(tmpl, explain.GuardConfig{
			Timeout:         cfg.Explain.Timeout,
			RatePerSecond:   cfg.Explain.RatePerSecond,
			Burst:           cfg.Explain.Burst,
			BreakerFailures: cfg.Explain.BreakerFailures,
			BreakerTimeout:  cfg.Explain.BreakerTimeout,
		}, logger)
		explainer = a.guard
	}

	if a.bus, err = eventprocessor.Open(&cfg.Events, logger); err != nil {
		return a, err
	}

	deps := compat.Dependencies{
		Registry:     registry,
		Cache:        a.cache,
		Profiles:     a.profiles,
		Explainer:    explainer,
		Workers:      cfg.Scoring.Workers,
		MaxBulkUsers: cfg.Limits.MaxBulkUsers,
	}
	if a.bus.Enabled() {
		deps.Notifier = a.bus
	}
	if a.service, err = compat.NewService(deps, logger); err != nil {
		return a, err
	}

	if a.bus.Enabled() {
		a.consumer, err = eventprocessor.NewConsumer(a.bus, a.service, eventprocessor.DefaultConsumerConfig(), logger)
		if err != nil {
			return a, err
		}
	}

	a.handler = a.newRouter()
	return a, nil
}

func (a *app) newRouter() http.Handler {
	var (
		events  api.EventPublisher
		breaker api.BreakerReporter
	)
	if a.bus.Enabled() {
		events = a.bus
	}
	if a.guard != nil {
		breaker = a.guard
	}

	handler := api.NewHandler(a.service, a.profiles, events, breaker, api.HandlerConfig{
		MaxBodyBytes:   a.cfg.Limits.MaxBodyBytes,
		RequestTimeout: a.cfg.Server.Timeout,
		Version:        version,
	}, a.logger)

	mw := api.DefaultChiMiddlewareConfig()
	mw.CORSAllowedOrigins = a.cfg.Server.CORSOrigins
	mw.BulkRateLimit = a.cfg.Limits.BulkRateLimit
	mw.BulkRateWindow = a.cfg.Limits.BulkRateWindow

	return api.NewRouter(handler, mw, middleware.DefaultSlowRequestThreshold, a.logger).SetupChi()
}

// newServer builds a fresh *http.Server for every (re)start of the HTTP
// service.
func (a *app) newServer() services.HTTPServer {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       a.cfg.Server.Timeout,
		WriteTimeout:      a.cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// addServices registers the long-running services with the tree.
func (a *app) addServices(tree *supervisor.SupervisorTree) {
	tree.AddCacheService(services.NewCacheJanitorService(a.cache, a.cfg.Cache.SweepInterval, a.logger))
	if a.consumer != nil {
		tree.AddEventService(a.consumer)
	}
	tree.AddAPIService(services.NewHTTPServerService(a.newServer, a.cfg.Server.ShutdownTimeout, a.logger))
}

// close releases the bus, the cache and the profile store, in that order.
func (a *app) close() error {
	var errs []error
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close event bus: %w", err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close score cache: %w", err))
		}
	}
	if a.profiles != nil {
		if err := a.profiles.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close profile store: %w", err))
		}
	}
	return errors.Join(errs...)
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func openProfileStore(cfg *config.ProfilesConfig, logger zerolog.Logger) (database.ProfileStore, error) {
	switch cfg.Store {
	case config.ProfileStoreMemory:
		logger.Warn().Msg("using the in-memory profile store; profiles are lost on restart")
		return database.NewMemoryStore(), nil
	default:
		db, err := database.New(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("open profile database: %w", err)
		}
		return db, nil
	}
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func openScoreCache(cfg *config.CacheConfig, logger zerolog.Logger) (*cache.ScoreCache, error) {
	opts := cache.Options{HitRateWindow: cfg.HitRateWindow, Logger: logger}
	if cfg.PersistentPath != "" {
		store, err := cache.OpenBadgerStore(cfg.PersistentPath)
		if err != nil {
			return nil, fmt.Errorf("open persistent score cache: %w", err)
		}
		opts.Store = store
	}
	c, err := cache.New(cfg.Strategy(), opts)
	if err != nil {
		if opts.Store != nil {
			_ = opts.Store.Close()
		}
		return nil, fmt.Errorf("create score cache: %w", err)
	}
	return c, nil
}
