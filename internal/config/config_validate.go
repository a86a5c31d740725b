// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package config

import (
	"errors"
	"fmt"

	"github.com/tomtom215/tripmatch/internal/models"
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks that the configuration is usable. Every violation is
// reported.
func (c *Config) Validate() error {
	return errors.Join(
		c.validateServer(),
		c.validateLogging(),
		c.validateScoring(),
		c.validateCache(),
		c.validateProfiles(),
		c.validateExplain(),
		c.validateEvents(),
		c.validateLimits(),
	)
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("SERVER_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateScoring reuses the algorithm validation so that a bad default
// fails at startup instead of on the first request.
func (c *Config) validateScoring() error {
	p := c.Scoring.Parameters()
	if err := p.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if c.Scoring.Workers < 0 {
		return fmt.Errorf("SCORING_WORKERS must not be negative")
	}
	return nil
}

func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	if err := c.Cache.Strategy().Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if c.Cache.SweepInterval <= 0 {
		return fmt.Errorf("CACHE_SWEEP_INTERVAL must be positive")
	}
	return nil
}

func (c *Config) validateProfiles() error {
	switch c.Profiles.Store {
	case ProfileStoreMemory:
		return nil
	case ProfileStoreDuckDB:
		if c.Profiles.Path == "" {
			return fmt.Errorf("PROFILE_DB_PATH is required when PROFILE_STORE=duckdb")
		}
		return nil
	default:
		return fmt.Errorf("PROFILE_STORE must be one of: duckdb, memory")
	}
}

func (c *Config) validateExplain() error {
	if !c.Explain.Enabled {
		return nil
	}
	if c.Explain.Timeout <= 0 {
		return fmt.Errorf("EXPLAIN_TIMEOUT must be positive")
	}
	if c.Explain.RatePerSecond <= 0 || c.Explain.Burst < 1 {
		return fmt.Errorf("EXPLAIN_RATE_PER_SECOND and EXPLAIN_BURST must be positive")
	}
	if c.Explain.BreakerFailures == 0 {
		return fmt.Errorf("EXPLAIN_BREAKER_FAILURES must be at least 1")
	}
	return nil
}

func (c *Config) validateEvents() error {
	switch c.Events.Transport {
	case EventsTransportNone, EventsTransportGoChannel:
		return nil
	case EventsTransportNATS:
		if err := validateNATSURL(c.Events.NATSURL); err != nil {
			return fmt.Errorf("NATS_URL is invalid: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("EVENTS_TRANSPORT must be one of: none, gochannel, nats")
	}
}

func (c *Config) validateLimits() error {
	if c.Limits.MaxBulkUsers < 2 {
		return fmt.Errorf("MAX_BULK_USERS must be at least 2")
	}
	if c.Limits.BulkRateLimit < 1 || c.Limits.BulkRateWindow <= 0 {
		return fmt.Errorf("BULK_RATE_LIMIT and BULK_RATE_WINDOW must be positive")
	}
	if c.Limits.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	return nil
}

// DefaultParameters returns the validated default algorithm.
func (c *Config) DefaultParameters() models.ScoringParameters {
	return c.Scoring.Parameters()
}
