// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

/*
Package config provides centralized configuration management for Tripmatch.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file (config.yaml, /etc/tripmatch/config.yaml or CONFIG_PATH), then
environment variables. Only the environment variables listed below are read.

# Environment Variables

HTTP Server (ServerConfig):
  - HTTP_HOST, HTTP_PORT: Bind address (default: 0.0.0.0:8470)
  - SERVER_TIMEOUT: Per-request timeout (default: 30s)
  - SHUTDOWN_TIMEOUT: Graceful shutdown bound (default: 15s)
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)

Logging (LoggingConfig):
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: Include caller file:line (default: false)

Scoring (ScoringConfig), seeding the "default" algorithm:
  - WEIGHT_PERSONALITY, WEIGHT_TRAVEL, WEIGHT_EXPERIENCE, WEIGHT_BUDGET,
    WEIGHT_ACTIVITY: Dimension weights, must sum to 1.0
  - THRESHOLD_EXCELLENT, THRESHOLD_GOOD, THRESHOLD_FAIR, THRESHOLD_POOR
  - EXPERIENCE_LEVEL_TOLERANCE, BUDGET_FLEXIBILITY_FACTOR, ACTIVITY_OVERLAP_BONUS
  - SCORING_WORKERS: Concurrent pair scorers (default: NumCPU)

Cache (CacheConfig):
  - CACHE_ENABLED, CACHE_TTL (24h), CACHE_MAX_ENTRIES (10000)
  - CACHE_INVALIDATE_ON_PROFILE_UPDATE, CACHE_INVALIDATE_ON_GROUP_CHANGE,
    CACHE_INVALIDATE_ON_ALGORITHM_UPDATE
  - CACHE_PERSISTENT_PATH: BadgerDB directory for the second tier
  - CACHE_SWEEP_INTERVAL: Janitor interval (default: 10m)

Profiles (ProfilesConfig):
  - PROFILE_STORE: duckdb or memory (default: duckdb)
  - PROFILE_DB_PATH: DuckDB file (default: /data/tripmatch.duckdb)

Explanations (ExplainConfig):
  - EXPLAIN_ENABLED, EXPLAIN_TIMEOUT, EXPLAIN_RATE_PER_SECOND, EXPLAIN_BURST
  - EXPLAIN_BREAKER_FAILURES, EXPLAIN_BREAKER_TIMEOUT

Events (EventsConfig):
  - EVENTS_TRANSPORT: none, gochannel or nats (default: gochannel)
  - NATS_URL, EVENTS_TOPIC_PREFIX, EVENTS_QUEUE_GROUP

Limits (LimitsConfig):
  - MAX_BULK_USERS (50), BULK_RATE_LIMIT (30), BULK_RATE_WINDOW (1m),
    MAX_BODY_BYTES (1MB)
*/
package config
