// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

// Package models defines the data types shared by the database, API and
// event layers: comics, ratings, users, catalog statistics and the request
// bodies accepted by the HTTP API.
//
// Request types carry go-playground/validator tags and are checked with
// validation.ValidateStruct before they reach the database.
package models
