// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package wal

import (
	"time"

	"github.com/tomtom215/comicrec/internal/config"
)

// Config holds WAL settings. The user-facing subset comes from
// config.WALConfig; BadgerDB tuning uses fixed defaults.
type Config struct {
	// Enabled controls whether rating writes go through the WAL.
	Enabled bool

	// Path is the BadgerDB directory. Should be on a durable filesystem.
	Path string

	// SyncWrites forces fsync after every write.
	SyncWrites bool

	// RetryInterval is the time between retry loop iterations.
	RetryInterval time.Duration

	// MaxRetries is the number of failed applies after which an entry is
	// abandoned.
	MaxRetries int

	// RetryBackoff is the base delay for exponential backoff between
	// attempts on the same entry.
	RetryBackoff time.Duration

	// CompactInterval is the time between compaction runs.
	CompactInterval time.Duration

	// EntryTTL bounds the lifetime of unconfirmed entries.
	EntryTTL time.Duration

	MemTableSize     int64
	ValueLogFileSize int64
	NumCompactors    int

	// GCRatio is the value log GC discard ratio.
	GCRatio float64

	// CloseTimeout bounds Close.
	CloseTimeout time.Duration
}

// DefaultConfig returns a Config with durability-first defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:          false,
		Path:             "/data/wal",
		SyncWrites:       true,
		RetryInterval:    30 * time.Second,
		MaxRetries:       100,
		RetryBackoff:     5 * time.Second,
		CompactInterval:  time.Hour,
		EntryTTL:         168 * time.Hour, // 7 days
		MemTableSize:     16 * 1024 * 1024,
		ValueLogFileSize: 64 * 1024 * 1024,
		NumCompactors:    2,
		GCRatio:          0.5,
		CloseTimeout:     30 * time.Second,
	}
}

// FromAppConfig overlays the application WAL settings on DefaultConfig.
func FromAppConfig(c *config.WALConfig) Config {
	cfg := DefaultConfig()
	if c == nil {
		return cfg
	}
	cfg.Enabled = c.Enabled
	cfg.Path = c.Path
	cfg.SyncWrites = c.SyncWrites
	cfg.RetryInterval = c.RetryInterval
	cfg.MaxRetries = c.MaxRetries
	cfg.CompactInterval = c.CompactInterval
	cfg.EntryTTL = c.EntryTTL
	if c.RetryInterval > 0 && c.RetryInterval < cfg.RetryBackoff {
		cfg.RetryBackoff = c.RetryInterval
	}
	return cfg
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Path == "" {
		return &ConfigError{Field: "Path", Message: "WAL path is required"}
	}
	if c.RetryInterval < time.Second {
		return &ConfigError{Field: "RetryInterval", Message: "must be at least 1 second"}
	}
	if c.MaxRetries < 1 {
		return &ConfigError{Field: "MaxRetries", Message: "must be at least 1"}
	}
	if c.RetryBackoff < time.Second {
		return &ConfigError{Field: "RetryBackoff", Message: "must be at least 1 second"}
	}
	if c.CompactInterval < time.Minute {
		return &ConfigError{Field: "CompactInterval", Message: "must be at least 1 minute"}
	}
	if c.EntryTTL < time.Hour {
		return &ConfigError{Field: "EntryTTL", Message: "must be at least 1 hour"}
	}
	if c.MemTableSize < 1024*1024 {
		return &ConfigError{Field: "MemTableSize", Message: "must be at least 1MB"}
	}
	if c.ValueLogFileSize < 1024*1024 {
		return &ConfigError{Field: "ValueLogFileSize", Message: "must be at least 1MB"}
	}
	if c.NumCompactors < 2 {
		return &ConfigError{Field: "NumCompactors", Message: "must be at least 2 (BadgerDB requirement)"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "WAL config error: " + e.Field + ": " + e.Message
}
