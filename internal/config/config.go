// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package config

import (
	"time"

	"github.com/tomtom215/tripmatch/internal/models"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Scoring  ScoringConfig  `koanf:"scoring"`
	Cache    CacheConfig    `koanf:"cache"`
	Profiles ProfilesConfig `koanf:"profiles"`
	Explain  ExplainConfig  `koanf:"explain"`
	Events   EventsConfig   `koanf:"events"`
	Limits   LimitsConfig   `koanf:"limits"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// Timeout bounds a single request, including profile loads and scoring.
	// Default: 30s
	Timeout time.Duration `koanf:"timeout"`

	// ShutdownTimeout bounds graceful shutdown. Default: 15s
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	CORSOrigins []string `koanf:"cors_origins"`

	// Environment is "development" or "production".
	Environment string `koanf:"environment"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// ThresholdsConfig sets the score quality bands of the default algorithm.
type ThresholdsConfig struct {
	Excellent float64 `koanf:"excellent"`
	Good      float64 `koanf:"good"`
	Fair      float64 `koanf:"fair"`
	Poor      float64 `koanf:"poor"`
}

// ScoringConfig seeds the default scoring algorithm.
type ScoringConfig struct {
	Weights    models.DimensionWeights `koanf:"weights"`
	Thresholds ThresholdsConfig        `koanf:"thresholds"`

	ExperienceLevelTolerance float64 `koanf:"experience_level_tolerance"`
	BudgetFlexibilityFactor  float64 `koanf:"budget_flexibility_factor"`
	ActivityOverlapBonus     float64 `koanf:"activity_overlap_bonus"`

	// Workers bounds concurrent pair scoring. 0 = runtime.NumCPU()
	Workers int `koanf:"workers"`
}

// Parameters returns the default algorithm configured by s. Fields not
// exposed through configuration keep their built-in values.
func (s ScoringConfig) Parameters() models.ScoringParameters {
	p := models.DefaultScoringParameters()
	p.Formula.Weights = s.Weights
	p.Thresholds = models.Thresholds{
		Excellent: s.Thresholds.Excellent,
		Good:      s.Thresholds.Good,
		Fair:      s.Thresholds.Fair,
		Poor:      s.Thresholds.Poor,
	}
	p.Adjustments = models.Adjustments{
		ExperienceLevelTolerance: s.ExperienceLevelTolerance,
		BudgetFlexibilityFactor:  s.BudgetFlexibilityFactor,
		ActivityOverlapBonus:     s.ActivityOverlapBonus,
	}
	return p
}

// CacheConfig holds score cache settings.
type CacheConfig struct {
	Enabled        bool          `koanf:"enabled"`
	TTL            time.Duration `koanf:"ttl"`
	MaxEntries     int           `koanf:"max_entries"`
	EvictionPolicy string        `koanf:"eviction_policy"`

	InvalidateOnProfileUpdate   bool `koanf:"invalidate_on_profile_update"`
	InvalidateOnGroupChange     bool `koanf:"invalidate_on_group_change"`
	InvalidateOnAlgorithmUpdate bool `koanf:"invalidate_on_algorithm_update"`

	// PersistentPath enables the BadgerDB second tier. Empty disables it.
	PersistentPath string `koanf:"persistent_path"`

	// HitRateWindow is the span of the reported rolling hit rate.
	HitRateWindow time.Duration `koanf:"hit_rate_window"`

	// SweepInterval is how often expired entries and stale tombstones are
	// removed.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// Strategy returns the cache strategy described by c.
func (c CacheConfig) Strategy() models.CacheStrategy {
	return models.CacheStrategy{
		Enabled:                     c.Enabled,
		TTL:                         c.TTL,
		MaxEntries:                  c.MaxEntries,
		EvictionPolicy:              c.EvictionPolicy,
		InvalidateOnProfileUpdate:   c.InvalidateOnProfileUpdate,
		InvalidateOnGroupChange:     c.InvalidateOnGroupChange,
		InvalidateOnAlgorithmUpdate: c.InvalidateOnAlgorithmUpdate,
	}
}

// Profile store drivers.
const (
	ProfileStoreDuckDB = "duckdb"
	ProfileStoreMemory = "memory"
)

// ProfilesConfig selects and tunes the profile store.
type ProfilesConfig struct {
	// Store is "duckdb" or "memory". Default: duckdb
	Store string `koanf:"store"`

	// Path is the DuckDB file; ":memory:" keeps it in process.
	Path string `koanf:"path"`

	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// ExplainConfig guards the explanation generator.
type ExplainConfig struct {
	Enabled bool `koanf:"enabled"`

	// Timeout bounds one explanation. Default: 2s
	Timeout time.Duration `koanf:"timeout"`

	// RatePerSecond and Burst bound explanation throughput.
	RatePerSecond float64 `koanf:"rate_per_second"`
	Burst         int     `koanf:"burst"`

	// BreakerFailures consecutive failures open the circuit for
	// BreakerTimeout.
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// Event transports.
const (
	EventsTransportNone      = "none"
	EventsTransportGoChannel = "gochannel"
	EventsTransportNATS      = "nats"
)

// EventsConfig configures cache invalidation events.
type EventsConfig struct {
	// Transport is none, gochannel (in-process) or nats. Default: gochannel
	Transport string `koanf:"transport"`

	NATSURL string `koanf:"nats_url"`

	// TopicPrefix is prepended to every topic, e.g. "tripmatch." gives
	// "tripmatch.profile.updated".
	TopicPrefix string `koanf:"topic_prefix"`

	// QueueGroup is the NATS queue group; empty means every instance
	// receives every event.
	QueueGroup string `koanf:"queue_group"`
}

// LimitsConfig holds request limits.
type LimitsConfig struct {
	MaxBulkUsers int `koanf:"max_bulk_users"`

	// BulkRateLimit requests per BulkRateWindow per client IP.
	BulkRateLimit  int           `koanf:"bulk_rate_limit"`
	BulkRateWindow time.Duration `koanf:"bulk_rate_window"`

	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}
