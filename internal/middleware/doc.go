// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

/*
Package middleware provides HTTP middleware components for the application.

This package implements infrastructure middleware for request ID tracking,
Prometheus metrics and access logging. These components sit alongside the
chi ecosystem middleware (RealIP, Recoverer, Compress, CORS, httprate) and
the authentication middleware in internal/auth.

Key Components:

  - RequestID: UUID-based request tracking, propagated into the logging
    context and chi's RequestIDKey
  - PrometheusMetrics: request count, latency histogram and in-flight gauge,
    labelled by chi route pattern
  - AccessLog: one zerolog line per request

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)          // Layer 1: request tracking
	r.Use(chimiddleware.RealIP)          // Layer 2: client address
	r.Use(middleware.AccessLog)          // Layer 3: access log
	r.Use(chimiddleware.Recoverer)       // Layer 4: panic recovery
	r.Use(middleware.PrometheusMetrics)  // Layer 5: metrics

Thread Safety:

All middleware is stateless apart from the Prometheus collectors, which are
safe for concurrent use.
*/
package middleware
