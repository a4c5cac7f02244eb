// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/comicrec/docs" // swagger docs
	"github.com/tomtom215/comicrec/internal/api"
	"github.com/tomtom215/comicrec/internal/auth"
	"github.com/tomtom215/comicrec/internal/authz"
	"github.com/tomtom215/comicrec/internal/config"
	"github.com/tomtom215/comicrec/internal/database"
	"github.com/tomtom215/comicrec/internal/events"
	"github.com/tomtom215/comicrec/internal/logging"
	"github.com/tomtom215/comicrec/internal/supervisor"
	"github.com/tomtom215/comicrec/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Sequential startup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Caller:  cfg.Logging.Caller,
		Version: version,
	})
	logger := logging.Logger()

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Bool("wal_enabled", cfg.WAL.Enabled).
		Bool("events_enabled", cfg.Events.Enabled).
		Msg("Starting Comicrec")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if cfg.Database.SeedCatalog {
		n, err := db.SeedCatalog(ctx)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to seed catalog")
		}
		logging.Info().Int("inserted", n).Msg("Seed catalog loaded")
	}

	engine, err := initRecommend(cfg, db, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendations")
	}

	var (
		publisher events.Publisher = events.NopPublisher{}
		bus       *events.Bus
	)
	if cfg.Events.Enabled {
		bus = events.NewBus(&cfg.Events, logger)
		publisher = bus
		defer func() {
			if err := bus.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing event bus")
			}
		}()
	}

	// Recovery and the retry loop apply entries directly; only the request
	// path writes through the WAL.
	applier := api.NewRatingService(db, nil, publisher, logger)
	ratings := applier
	w, err := InitWAL(ctx, &cfg.WAL, applier)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize WAL")
	}
	deps := api.HandlerDeps{Publisher: publisher, Version: version}
	if w != nil {
		defer func() {
			if err := w.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing WAL")
			}
		}()
		ratings = api.NewRatingService(db, w, publisher, logger)
		deps.WAL = w
	}
	deps.Ratings = ratings

	var jwtManager *auth.JWTManager
	if cfg.Security.AuthMode == auth.ModeJWT {
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
	}
	deps.JWTManager = jwtManager

	handler := api.NewHandler(db, engine, cfg, deps, logger)
	defer handler.Close()

	authMW := auth.NewMiddleware(jwtManager, cfg.Security.AuthMode, logger)
	router := api.NewRouter(handler, authMW, cfg)
	if cfg.Security.AuthzEnabled {
		enforcer, err := authz.NewEnforcer(&authz.EnforcerConfig{Editors: cfg.Security.CatalogEditors})
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize authorization")
		}
		router.WithAuthorization(enforcer)
		logging.Info().Int("editors", len(cfg.Security.CatalogEditors)).Msg("Role-based authorization enabled")
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if w != nil {
		superviseWAL(tree, w, applier)
	}
	if bus != nil {
		consumerCfg := events.DefaultConsumerConfig()
		tree.AddMessagingService(events.NewConsumer(bus.Subscriber(), handler, &consumerCfg, logger))
		logging.Info().Msg("Catalog event consumer added to supervisor tree")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Serve returns once the signal context is canceled and every service
	// has stopped or timed out.
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	logging.Info().Msg("Comicrec stopped")
}
