// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

/*
Package auth authenticates API users.

Users register with an email and password. Passwords are stored as bcrypt
hashes; a successful login returns an HS256 JWT carrying the user id.

Authentication modes (security.auth_mode):

  - jwt: every protected request needs "Authorization: Bearer <token>".
  - none: development only. The user id is read from the X-User-ID header.

Repeated failed logins for one email lock the account for a while
(LockoutManager). Recommendation requests are throttled per user with a
token bucket (UserRateLimiter).

Usage:

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	mw := auth.NewMiddleware(jwtManager, cfg.Security.AuthMode, logger)
	r.With(mw.Authenticate).Get("/ratings", h.ListRatings)
*/
package auth
