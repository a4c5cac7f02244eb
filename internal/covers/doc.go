// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

// Package covers picks cover images for comics that have none.
//
// Matching is local: an embedded keyword table is checked against the title
// and the character list, then a genre table, then a default image. The
// same resolver fills missing images on create and seed, and backs the
// /api/v1/images endpoints.
package covers
