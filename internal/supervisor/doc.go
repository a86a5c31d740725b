// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

/*
Package supervisor provides process supervision for tripmatch using suture v4.

# Overview

Long-running services are grouped into three layers:

	RootSupervisor ("tripmatch")
	├── CacheSupervisor ("cache-layer")
	│   └── CacheJanitorService
	├── EventsSupervisor ("events-layer")
	│   └── eventprocessor.Consumer (unless events.transport is none)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures on its own, so a consumer that keeps failing
while NATS is unreachable backs off without touching the HTTP server.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddCacheService(services.NewCacheJanitorService(scoreCache, cfg.Cache.SweepInterval, logger))
	tree.AddEventService(consumer)
	tree.AddAPIService(services.NewHTTPServerService(newServer, cfg.Server.ShutdownTimeout, logger))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

# Configuration

TreeConfig controls restart behavior. Zero fields take suture's defaults:

  - FailureThreshold: 5 failures
  - FailureDecay: 30 seconds
  - FailureBackoff: 15 seconds
  - ShutdownTimeout: 10 seconds

Supervisor events (starts, failures, backoff) are logged through sutureslog
into the process slog logger, which writes through zerolog.

# What Is NOT Supervised

The profile store and the score cache are libraries, not services; they are
opened before the tree starts and closed after it stops.
*/
package supervisor
