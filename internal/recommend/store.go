// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package recommend

import (
	"context"
)

// Store defines the read operations the engine needs from the catalog and
// rating store. It is typically implemented by the database layer.
//
// Errors returned by a Store are passed to the engine's caller unmodified.
type Store interface {
	// ListItems returns all catalog items, in any order.
	ListItems(ctx context.Context) ([]Item, error)

	// ListUserRatings returns every rating of the user, at most one per item.
	ListUserRatings(ctx context.Context, userID UserID) ([]Rating, error)

	// ListItemsByMeanRating returns up to limit items that have at least one
	// rating, ordered by mean rating descending, then identifier ascending.
	ListItemsByMeanRating(ctx context.Context, limit int) ([]Item, error)

	// ListUnratedItems returns up to limit items without any rating,
	// ordered by identifier ascending.
	ListUnratedItems(ctx context.Context, limit int) ([]Item, error)
}
