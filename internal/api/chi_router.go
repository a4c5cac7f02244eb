// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/comicrec/internal/auth"
	"github.com/tomtom215/comicrec/internal/authz"
	"github.com/tomtom215/comicrec/internal/config"
	"github.com/tomtom215/comicrec/internal/middleware"
)

// Router wires handlers to routes.
type Router struct {
	handler          *Handler
	auth             *auth.Middleware
	authz            *authz.Middleware
	chiMiddleware    *ChiMiddleware
	recommendLimiter *auth.UserRateLimiter
	swaggerEnabled   bool
}

// NewRouter creates a router for handler. authMW decides how requests are
// authenticated; cfg supplies CORS, rate limit and Swagger settings.
func NewRouter(handler *Handler, authMW *auth.Middleware, cfg *config.Config) *Router {
	return &Router{
		handler:       handler,
		auth:          authMW,
		chiMiddleware: NewChiMiddleware(ChiMiddlewareConfigFromSecurity(&cfg.Security)),
		recommendLimiter: auth.NewUserRateLimiter(
			cfg.Security.RecommendPerMinute,
			cfg.Security.RecommendBurst,
			"recommendations",
		),
		swaggerEnabled: cfg.API.SwaggerEnabled,
	}
}

// WithAuthorization enforces e on authenticated routes. A nil enforcer
// leaves them open to every authenticated caller.
func (router *Router) WithAuthorization(e *authz.Enforcer) *Router {
	router.authz = authz.NewMiddleware(e, denyRequest)
	return router
}

func denyRequest(w http.ResponseWriter, r *http.Request, status int) {
	rw := NewResponseWriter(w, r)
	if status == http.StatusForbidden {
		rw.Forbidden("Insufficient permissions")
		return
	}
	rw.InternalError("Authorization failed")
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Applied to all routes in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // must be global to answer OPTIONS preflight
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	if router.swaggerEnabled {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
			httpSwagger.DeepLinking(true),
			httpSwagger.DocExpansion("list"),
			httpSwagger.DomID("swagger-ui"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chimiddleware.Compress(5, "application/json"))

		// Health
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitHealth())
			r.Get("/health", router.handler.Health)
			r.Get("/health/live", router.handler.HealthLive)
			r.Get("/health/ready", router.handler.HealthReady)
		})

		// Authentication
		r.Route("/auth", func(r chi.Router) {
			r.With(router.chiMiddleware.RateLimitAuth()).Post("/register", router.handler.Register)
			r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", router.handler.Login)
		})

		// Public catalog reads
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Get("/comics", router.handler.ListComics)
			r.Get("/comics/{id}", router.handler.GetComic)
			r.Get("/stats", router.handler.GetStats)
			r.Get("/stats/sample", router.handler.GetSample)
			r.Get("/images/image-suggestions/{comic_id}", router.handler.ImageSuggestions)
		})

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(router.auth.Authenticate)
			r.Use(router.authz.Authorize)

			r.With(router.chiMiddleware.RateLimitWrite()).Post("/comics", router.handler.CreateComic)
			r.With(router.chiMiddleware.RateLimitWrite()).Post("/images/refresh-images", router.handler.RefreshImages)

			r.With(router.chiMiddleware.RateLimitWrite()).Post("/ratings", router.handler.RateComic)
			r.Get("/ratings", router.handler.ListRatings)
			r.Get("/ratings/{comic_id}", router.handler.GetRating)

			r.With(router.recommendLimiter.Limit).Get("/recommendations", router.handler.GetRecommendations)
		})
	})

	return r
}
