// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package api

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/comicrec/internal/auth"
	"github.com/tomtom215/comicrec/internal/cache"
	"github.com/tomtom215/comicrec/internal/config"
	"github.com/tomtom215/comicrec/internal/covers"
	"github.com/tomtom215/comicrec/internal/events"
	"github.com/tomtom215/comicrec/internal/logging"
	"github.com/tomtom215/comicrec/internal/metrics"
	"github.com/tomtom215/comicrec/internal/models"
	"github.com/tomtom215/comicrec/internal/recommend"
	"github.com/tomtom215/comicrec/internal/wal"
)

// Store is the database surface the handlers use. *database.DB implements it.
type Store interface {
	Ping(ctx context.Context) error

	CreateComic(ctx context.Context, comic *models.Comic) error
	GetComic(ctx context.Context, id int64) (*models.Comic, error)
	ListComics(ctx context.Context, skip, limit int) ([]*models.Comic, error)
	ListAllComics(ctx context.Context) ([]*models.Comic, error)
	UpdateComicImages(ctx context.Context, images map[int64]string) (int, error)
	CountComics(ctx context.Context) (int64, error)
	GetComicsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Comic, error)

	GetUserRating(ctx context.Context, userID, comicID int64) (*models.Rating, error)
	ListRatingsByUser(ctx context.Context, userID int64) ([]*models.Rating, error)

	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	GetCatalogStats(ctx context.Context) (*models.CatalogStats, error)
	SampleComics(ctx context.Context, limit int) (*models.CatalogSample, error)
}

// Recommender produces recommendations. *recommend.Engine implements it.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

// WALStatsProvider reports WAL counters for health output.
type WALStatsProvider interface {
	Stats() wal.Stats
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_auth.go: register and login
//   - handlers_comics.go: catalog listing and creation
//   - handlers_images.go: cover refresh and suggestions
//   - handlers_ratings.go: rating upsert and lookup
//   - handlers_recommend.go: recommendations
//   - handlers_stats.go: cached catalog statistics
//   - handlers_health.go: health probes
type Handler struct {
	store       Store
	recommender Recommender
	ratings     *RatingService
	publisher   events.Publisher
	covers      *covers.Resolver
	walStats    WALStatsProvider
	config      *config.Config

	jwtManager     *auth.JWTManager
	lockout        *auth.LockoutManager
	passwordPolicy auth.PasswordPolicy
	authLogger     *logging.AuthLogger

	cache     *cache.Cache
	startTime time.Time
	version   string
}

// HandlerDeps groups the optional collaborators of a Handler.
type HandlerDeps struct {
	// Ratings applies rating writes. Defaults to a WAL-less service over Store
	// when Store also implements RatingStore.
	Ratings *RatingService

	// Publisher receives catalog events. Defaults to events.NopPublisher.
	Publisher events.Publisher

	// Covers picks images for comics created without one. Defaults to
	// covers.Default.
	Covers *covers.Resolver

	// WAL reports WAL counters on /health. Nil when the WAL is disabled.
	WAL WALStatsProvider

	// JWTManager issues and validates tokens. Required for auth mode jwt.
	JWTManager *auth.JWTManager

	// Version is reported by /health.
	Version string
}

// NewHandler creates a new API handler.
//
// The stats cache uses cfg.API.StatsCacheTTL and is cleared by Clear,
// which the events consumer calls on every catalog change.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(store Store, recommender Recommender, cfg *config.Config, deps HandlerDeps, logger zerolog.Logger) *Handler {
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	ratings := deps.Ratings
	if ratings == nil {
		if rs, ok := store.(RatingStore); ok {
			ratings = NewRatingService(rs, nil, publisher, logger)
		}
	}

	resolver := deps.Covers
	if resolver == nil {
		resolver = covers.Default()
	}

	ttl := cfg.API.StatsCacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Handler{
		store:       store,
		recommender: recommender,
		ratings:     ratings,
		publisher:   publisher,
		covers:      resolver,
		walStats:    deps.WAL,
		config:      cfg,
		jwtManager:  deps.JWTManager,
		lockout: auth.NewLockoutManager(&auth.LockoutConfig{
			MaxAttempts:        cfg.Security.LockoutAttempts,
			LockoutDuration:    cfg.Security.LockoutDuration,
			MaxLockoutDuration: 24 * time.Hour,
			MaxTracked:         10000,
		}),
		passwordPolicy: auth.DefaultPasswordPolicy(),
		authLogger:     logging.NewAuthLogger(logger),
		cache:          cache.New(ttl, cache.WithCounters(metrics.StatsCacheHits, metrics.StatsCacheMisses)),
		startTime:      time.Now(),
		version:        deps.Version,
	}
}

// Clear drops all cached statistics. It implements events.Invalidator.
func (h *Handler) Clear() {
	h.cache.Clear()
}

// Close releases handler resources.
func (h *Handler) Close() {
	h.cache.Close()
}

var _ events.Invalidator = (*Handler)(nil)
