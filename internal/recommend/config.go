// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package recommend

import (
	"fmt"
	"time"
)

// Fixed domain constants. Changing either is a behavior change.
const (
	// LikedThreshold is the minimum rating that counts as a liked item.
	LikedThreshold = 3.0

	// MaxVocabulary caps the TF-IDF vocabulary size.
	MaxVocabulary = 1000
)

// Explanation texts.
const (
	similarReasonFormat = "Recommended because it's similar to '%s' (similarity: %.2f)"
	popularReason       = "Popular comic - recommended for new users"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// MaxK is the maximum allowed K value. Larger requests are clamped and
	// the applied value is reported in ResponseMetadata.K.
	// Default: 100.
	MaxK int `json:"max_k"`

	// MaxCatalogSize bounds the number of items scored per request.
	// Requests against larger catalogs fail with ErrCatalogTooLarge.
	// Zero disables the check.
	// Default: 0.
	MaxCatalogSize int `json:"max_catalog_size"`

	// RequestTimeout bounds one recommendation call, including store reads.
	// Zero disables the deadline.
	// Default: 10s.
	RequestTimeout time.Duration `json:"request_timeout"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Limits: LimitsConfig{
			MaxK:           100,
			MaxCatalogSize: 0,
			RequestTimeout: 10 * time.Second,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Limits.MaxK < 1 {
		return fmt.Errorf("limits.max_k must be positive, got %d", c.Limits.MaxK)
	}
	if c.Limits.MaxCatalogSize < 0 {
		return fmt.Errorf("limits.max_catalog_size must be non-negative, got %d", c.Limits.MaxCatalogSize)
	}
	if c.Limits.RequestTimeout < 0 {
		return fmt.Errorf("limits.request_timeout must be non-negative, got %v", c.Limits.RequestTimeout)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	return &Config{Limits: c.Limits}
}
