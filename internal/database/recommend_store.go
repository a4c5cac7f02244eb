// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/comicrec/internal/recommend"
)

var _ recommend.Store = (*DB)(nil)

const itemColumns = `c.id, c.title, c.description, c.characters, c.genre`

// ListItems returns the whole catalog ordered by ID.
func (db *DB) ListItems(ctx context.Context) (_ []recommend.Item, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	defer track("list_items", "comics")(&err)

	rows, err := db.conn.QueryContext(ctx, `SELECT `+itemColumns+` FROM comics c ORDER BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return scanItems(rows)
}

// ListUserRatings returns every rating of the user, oldest first.
func (db *DB) ListUserRatings(ctx context.Context, userID recommend.UserID) (_ []recommend.Rating, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	defer track("list_user_ratings", "user_ratings")(&err)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT comic_id, rating FROM user_ratings
		WHERE user_id = ?
		ORDER BY created_at, comic_id`, int64(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to list user ratings: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var ratings []recommend.Rating
	for rows.Next() {
		r := recommend.Rating{UserID: userID}
		var comicID int64
		if err = rows.Scan(&comicID, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		r.ItemID = recommend.ItemID(comicID)
		ratings = append(ratings, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ratings: %w", err)
	}
	return ratings, nil
}

// ListItemsByMeanRating returns up to limit rated items by mean rating
// across all users, highest first, ties by ID.
func (db *DB) ListItemsByMeanRating(ctx context.Context, limit int) (_ []recommend.Item, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	defer track("list_items_by_mean", "user_ratings")(&err)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM comics c
		JOIN (
			SELECT comic_id, AVG(rating) AS mean FROM user_ratings GROUP BY comic_id
		) r ON r.comic_id = c.id
		ORDER BY r.mean DESC, c.id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list items by mean rating: %w", err)
	}
	return scanItems(rows)
}

// ListUnratedItems returns up to limit items nobody has rated, by ID.
func (db *DB) ListUnratedItems(ctx context.Context, limit int) (_ []recommend.Item, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	defer track("list_unrated_items", "comics")(&err)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM comics c
		WHERE NOT EXISTS (SELECT 1 FROM user_ratings r WHERE r.comic_id = c.id)
		ORDER BY c.id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unrated items: %w", err)
	}
	return scanItems(rows)
}

func scanItems(rows *sql.Rows) ([]recommend.Item, error) {
	defer closeWithLog(rows, "rows")

	var items []recommend.Item
	for rows.Next() {
		var (
			item  recommend.Item
			id    int64
			chars string
			err   error
		)
		if err = rows.Scan(&id, &item.Title, &item.Description, &chars, &item.Category); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.ID = recommend.ItemID(id)
		if item.Tags, err = decodeCharacters(chars); err != nil {
			return nil, fmt.Errorf("item %d: %w", id, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}
