// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional config file, a .env file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting (a .env file is loaded
//     into the environment first, never overriding real variables)
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Server    ServerConfig    `koanf:"server"`
	API       APIConfig       `koanf:"api"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
	WAL       WALConfig       `koanf:"wal"`
	Events    EventsConfig    `koanf:"events"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`                  // Number of DuckDB threads (0 = use NumCPU)
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"` // Whether to preserve insertion order (default true)
	SeedCatalog            bool   `koanf:"seed_catalog"`             // Load the embedded sample comic catalog on startup
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // Environment mode: "development", "staging", "production" (default: "development")
}

// APIConfig holds API pagination and response settings
type APIConfig struct {
	DefaultPageSize int           `koanf:"default_page_size"`
	MaxPageSize     int           `koanf:"max_page_size"`
	StatsCacheTTL   time.Duration `koanf:"stats_cache_ttl"`
	SwaggerEnabled  bool          `koanf:"swagger_enabled"`
}

// SecurityConfig holds authentication and rate limiting settings
type SecurityConfig struct {
	// AuthMode is "jwt" (bearer tokens issued by /auth/login) or "none"
	// (development only, the user is taken from the X-User-ID header).
	AuthMode          string        `koanf:"auth_mode"`
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`

	// RecommendPerMinute limits recommendation requests per user.
	RecommendPerMinute int `koanf:"recommend_per_minute"`
	RecommendBurst     int `koanf:"recommend_burst"`

	// LockoutAttempts failed logins for one email lock it for
	// LockoutDuration, doubling on each repeat lockout. Zero disables.
	LockoutAttempts int           `koanf:"lockout_attempts"`
	LockoutDuration time.Duration `koanf:"lockout_duration"`

	// AuthzEnabled turns on role checks for authenticated routes.
	// CatalogEditors are the emails granted the editor role, which is
	// required to create comics while authz is enabled.
	AuthzEnabled   bool     `koanf:"authz_enabled"`
	CatalogEditors []string `koanf:"catalog_editors"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// RecommendConfig holds recommendation engine limits.
// The liked threshold and vocabulary size are fixed and not configurable.
type RecommendConfig struct {
	DefaultK       int           `koanf:"default_k"` // GET /recommendations limit when none is given
	MaxK           int           `koanf:"max_k"`
	MaxCatalogSize int           `koanf:"max_catalog_size"` // 0 = unlimited
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// Circuit breaker around catalog reads.
	BreakerEnabled     bool          `koanf:"breaker_enabled"`
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerOpenTimeout time.Duration `koanf:"breaker_open_timeout"`
}

// WALConfig holds settings for the BadgerDB rating write-ahead log.
type WALConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Path            string        `koanf:"path"`
	SyncWrites      bool          `koanf:"sync_writes"`
	RetryInterval   time.Duration `koanf:"retry_interval"`
	MaxRetries      int           `koanf:"max_retries"`
	CompactInterval time.Duration `koanf:"compact_interval"`
	EntryTTL        time.Duration `koanf:"entry_ttl"`
}

// EventsConfig holds settings for the in-process catalog event bus.
type EventsConfig struct {
	Enabled             bool  `koanf:"enabled"`
	OutputChannelBuffer int64 `koanf:"output_channel_buffer"`
}

// Load reads configuration from all sources in order of precedence:
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables, including those from a .env file
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
