// Tripmatch - Travel Companion Compatibility Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/tripmatch/internal/models"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tripmatch/config.yaml",
	"/etc/tripmatch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	params := models.DefaultScoringParameters()
	strategy := models.DefaultCacheStrategy()

	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8470,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			CORSOrigins:     []string{"*"},
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Scoring: ScoringConfig{
			Weights: params.Formula.Weights,
			Thresholds: ThresholdsConfig{
				Excellent: params.Thresholds.Excellent,
				Good:      params.Thresholds.Good,
				Fair:      params.Thresholds.Fair,
				Poor:      params.Thresholds.Poor,
			},
			ExperienceLevelTolerance: params.Adjustments.ExperienceLevelTolerance,
			BudgetFlexibilityFactor:  params.Adjustments.BudgetFlexibilityFactor,
			ActivityOverlapBonus:     params.Adjustments.ActivityOverlapBonus,
			Workers:                  0, // 0 = use runtime.NumCPU()
		},
		Cache: CacheConfig{
			Enabled:                     strategy.Enabled,
			TTL:                         strategy.TTL,
			MaxEntries:                  strategy.MaxEntries,
			EvictionPolicy:              strategy.EvictionPolicy,
			InvalidateOnProfileUpdate:   strategy.InvalidateOnProfileUpdate,
			InvalidateOnGroupChange:     strategy.InvalidateOnGroupChange,
			InvalidateOnAlgorithmUpdate: strategy.InvalidateOnAlgorithmUpdate,
			PersistentPath:              "", // memory only by default
			HitRateWindow:               5 * time.Minute,
			SweepInterval:               10 * time.Minute,
		},
		Profiles: ProfilesConfig{
			Store:     ProfileStoreDuckDB,
			Path:      "/data/tripmatch.duckdb",
			MaxMemory: "512MB",
			Threads:   0,
		},
		Explain: ExplainConfig{
			Enabled:         true,
			Timeout:         2 * time.Second,
			RatePerSecond:   50,
			Burst:           10,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Events: EventsConfig{
			Transport:   EventsTransportGoChannel,
			NATSURL:     "nats://127.0.0.1:4222",
			TopicPrefix: "tripmatch.",
			QueueGroup:  "",
		},
		Limits: LimitsConfig{
			MaxBulkUsers:   50,
			BulkRateLimit:  30,
			BulkRateWindow: time.Minute,
			MaxBodyBytes:   1 << 20, // 1MB
		},
	}
}

// Load reads configuration from defaults, an optional config file and
// environment variables, in increasing order of priority, and validates it.
func Load() (*Config, error) {
	return load(findConfigFile())
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unmapped variables are ignored so unrelated environment cannot leak into
// the configuration.
var envMappings = map[string]string{
	"http_host":        "server.host",
	"http_port":        "server.port",
	"server_timeout":   "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":     "server.cors_origins",
	"environment":      "server.environment",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"weight_personality":         "scoring.weights.personality",
	"weight_travel":              "scoring.weights.travel",
	"weight_experience":          "scoring.weights.experience",
	"weight_budget":              "scoring.weights.budget",
	"weight_activity":            "scoring.weights.activity",
	"threshold_excellent":        "scoring.thresholds.excellent",
	"threshold_good":             "scoring.thresholds.good",
	"threshold_fair":             "scoring.thresholds.fair",
	"threshold_poor":             "scoring.thresholds.poor",
	"experience_level_tolerance": "scoring.experience_level_tolerance",
	"budget_flexibility_factor":  "scoring.budget_flexibility_factor",
	"activity_overlap_bonus":     "scoring.activity_overlap_bonus",
	"scoring_workers":            "scoring.workers",

	"cache_enabled":                        "cache.enabled",
	"cache_ttl":                            "cache.ttl",
	"cache_max_entries":                    "cache.max_entries",
	"cache_eviction_policy":                "cache.eviction_policy",
	"cache_invalidate_on_profile_update":   "cache.invalidate_on_profile_update",
	"cache_invalidate_on_group_change":     "cache.invalidate_on_group_change",
	"cache_invalidate_on_algorithm_update": "cache.invalidate_on_algorithm_update",
	"cache_persistent_path":                "cache.persistent_path",
	"cache_hit_rate_window":                "cache.hit_rate_window",
	"cache_sweep_interval":                 "cache.sweep_interval",

	"profile_store":         "profiles.store",
	"profile_db_path":       "profiles.path",
	"profile_db_max_memory": "profiles.max_memory",
	"profile_db_threads":    "profiles.threads",

	"explain_enabled":          "explain.enabled",
	"explain_timeout":          "explain.timeout",
	"explain_rate_per_second":  "explain.rate_per_second",
	"explain_burst":            "explain.burst",
	"explain_breaker_failures": "explain.breaker_failures",
	"explain_breaker_timeout":  "explain.breaker_timeout",

	"events_transport":    "events.transport",
	"nats_url":            "events.nats_url",
	"events_topic_prefix": "events.topic_prefix",
	"events_queue_group":  "events.queue_group",

	"max_bulk_users":   "limits.max_bulk_users",
	"bulk_rate_limit":  "limits.bulk_rate_limit",
	"bulk_rate_window": "limits.bulk_rate_window",
	"max_body_bytes":   "limits.max_body_bytes",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - CACHE_TTL -> cache.ttl
//   - PROFILE_DB_PATH -> profiles.path
//   - WEIGHT_BUDGET -> scoring.weights.budget
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
