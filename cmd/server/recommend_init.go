// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/comicrec/internal/config"
	"github.com/tomtom215/comicrec/internal/database"
	"github.com/tomtom215/comicrec/internal/recommend"
)

// engineConfig maps the application settings onto the engine defaults.
// Zero values keep the engine default.
func engineConfig(c *config.RecommendConfig) *recommend.Config {
	cfg := recommend.DefaultConfig()
	if c.MaxK > 0 {
		cfg.Limits.MaxK = c.MaxK
	}
	if c.MaxCatalogSize > 0 {
		cfg.Limits.MaxCatalogSize = c.MaxCatalogSize
	}
	if c.RequestTimeout > 0 {
		cfg.Limits.RequestTimeout = c.RequestTimeout
	}
	return cfg
}

// recommendStore returns the store the engine reads from, behind a circuit
// breaker when enabled.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func recommendStore(db *database.DB, c *config.RecommendConfig, logger zerolog.Logger) recommend.Store {
	if !c.BreakerEnabled {
		return db
	}
	logger.Info().
		Uint32("max_failures", c.BreakerMaxFailures).
		Dur("open_timeout", c.BreakerOpenTimeout).
		Msg("Circuit breaker enabled for catalog reads")
	return database.NewBreakerStore(db, database.BreakerSettings{
		Name:        "recommend-store",
		MaxFailures: c.BreakerMaxFailures,
		OpenTimeout: c.BreakerOpenTimeout,
	}, logger)
}

// initRecommend builds the recommendation engine with the default TF-IDF
// vectorizer and cosine similarity.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(cfg *config.Config, db *database.DB, logger zerolog.Logger) (*recommend.Engine, error) {
	ecfg := engineConfig(&cfg.Recommend)
	engine, err := recommend.NewEngine(ecfg, recommendStore(db, &cfg.Recommend, logger), nil, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("recommendation engine: %w", err)
	}

	logger.Info().
		Int("max_k", ecfg.Limits.MaxK).
		Int("max_catalog_size", ecfg.Limits.MaxCatalogSize).
		Dur("request_timeout", ecfg.Limits.RequestTimeout).
		Msg("Recommendation engine initialized")
	return engine, nil
}
