// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

// Package logging provides the zerolog-based structured logger used across
// Comicrec.
//
// The global logger is initialized once from configuration:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("addr", addr).Msg("server listening")
//
// Request-scoped fields (request_id, user_id) travel on the context and are
// added by Ctx:
//
//	ctx = logging.ContextWithRequestID(ctx, id)
//	logging.Ctx(ctx).Info().Msg("recommendations served")
//
// Supervision libraries that expect log/slog get a zerolog-backed handler
// from NewSlogLogger. Authentication events go through AuthLogger, which
// masks emails and tokens before they reach the output.
//
// Environment variables (read by the config package):
//
//	LOG_LEVEL   trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  json, console (default: json)
//	LOG_CALLER  include caller file:line (default: false)
package logging
