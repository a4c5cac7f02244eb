// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

// @title Comicrec API
// @version 1.0
// @description Content-based comic recommendations with a popularity fallback for new users.
// @description
// @description ## Recommendations
// @description
// @description Comics are compared by TF-IDF vectors built from genre, description and
// @description characters. A user's liked comics (rating 3.0 or above) seed the ranking;
// @description users without one receive the best-rated comics instead.
// @description
// @description ## Authentication
// @description
// @description Rating and recommendation endpoints require a bearer token.
// @description Use `/api/v1/auth/login` to obtain one.
// @description
// @description ## Error Responses
// @description
// @description All responses share one envelope:
// @description ```json
// @description {
// @description   "success": false,
// @description   "error": {
// @description     "code": "NOT_FOUND",
// @description     "message": "Comic not found",
// @description     "request_id": "b6c1..."
// @description   },
// @description   "meta": {
// @description     "request_id": "b6c1...",
// @description     "timestamp": "2026-10-18T12:34:56Z",
// @description     "duration_ms": 3
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/comicrec/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token from /api/v1/auth/login, sent as "Authorization: Bearer <token>".
//
// @tag.name Core
// @tag.description Health and readiness probes
//
// @tag.name Auth
// @tag.description Registration and login
//
// @tag.name Comics
// @tag.description Catalog browsing and creation
//
// @tag.name Images
// @tag.description Cover image refresh and suggestions
//
// @tag.name Ratings
// @tag.description The caller's ratings
//
// @tag.name Recommendations
// @tag.description Personalized recommendations
//
// @tag.name Stats
// @tag.description Catalog statistics
package main
