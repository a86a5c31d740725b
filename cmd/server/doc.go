// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

/*
Command server runs the tripmatch compatibility scoring service.

Startup order:

 1. Configuration: koanf with defaults, config.yaml and environment variables
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Profile store: DuckDB, or in-memory with PROFILE_STORE=memory
 4. Score cache: LRU in memory, with an optional BadgerDB tier
 5. Explanations: templates behind a rate limiter, timeout and circuit breaker
 6. Event bus: watermill over an in-process channel, NATS or nothing
 7. Supervisor tree: cache janitor, event consumer and HTTP server

# Signals

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains for up
to SHUTDOWN_TIMEOUT, then the bus, the cache and the profile store are
closed.

# Example

	export PROFILE_STORE=memory
	export EVENTS_TRANSPORT=gochannel
	./server

	curl -X PUT localhost:8470/api/v1/profiles/alice -d @alice.json
	curl -X POST localhost:8470/api/v1/compatibility/pairwise \
	  -d '{"user1_id":"alice","user2_id":"bob","options":{"include_explanation":true}}'
*/
package main
