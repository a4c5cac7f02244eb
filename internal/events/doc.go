// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

// Package events carries catalog change notifications over an in-process
// Watermill GoChannel pub/sub.
//
// Topics:
//
//   - catalog.comic_created: a comic was added through the API
//   - catalog.rating_upserted: a user created or changed a rating
//
// Bus publishes CatalogEvent values as JSON messages keyed by event ID.
// Consumer runs a Watermill router that de-duplicates by message UUID,
// retries failed handlers and invalidates cached catalog statistics.
package events
