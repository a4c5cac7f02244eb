// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

/*
Package api provides the HTTP/JSON interface of the recommendation service.

All endpoints live under /api/v1 and answer with a uniform envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}, "meta": {...}}

Routes:

	POST /auth/register          create an account, returns a bearer token
	POST /auth/login             exchange credentials for a bearer token
	GET  /comics?skip&limit      page through the catalog
	GET  /comics/{id}            one comic
	POST /comics                 add a comic (auth); a missing image is resolved locally
	POST /images/refresh-images  reassign every cover image (auth)
	GET  /images/image-suggestions/{comic_id}  cover candidates per matching rule
	POST /ratings                upsert the caller's rating (auth)
	GET  /ratings                the caller's ratings (auth)
	GET  /ratings/{comic_id}     the caller's rating for one comic (auth)
	GET  /recommendations?limit  recommendations for the caller (auth, per-user limit)
	GET  /stats, /stats/sample   cached catalog statistics
	GET  /health[/live|/ready]   probes

/metrics serves Prometheus metrics and /swagger/* the OpenAPI UI when enabled.

Rating writes go through RatingService, which records them in the
write-ahead log before applying them to DuckDB. When applying fails for a
transient reason the write stays in the log, the client gets 202 Accepted,
and the WAL retry loop finishes the job. RatingService also implements
wal.Applier for recovery and retries.

Usage:

	handler := api.NewHandler(db, engine, cfg, api.HandlerDeps{...}, logger)
	router := api.NewRouter(handler, auth.NewMiddleware(jwtManager, cfg.Security.AuthMode, logger), cfg)
	srv := &http.Server{Handler: router.SetupChi()}
*/
package api
