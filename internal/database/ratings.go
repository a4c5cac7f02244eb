// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomtom215/comicrec/internal/models"
)

// UpsertRating stores a user's rating for a comic. A later rating replaces
// the earlier one and keeps its original CreatedAt. An unknown comic returns
// ErrNotFound.
func (db *DB) UpsertRating(ctx context.Context, userID, comicID int64, rating float64) (_ *models.Rating, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	defer track("upsert", "user_ratings")(&err)

	var exists bool
	if err = db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM comics WHERE id = ?)`, comicID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check comic %d: %w", comicID, err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	r := &models.Rating{UserID: userID, ComicID: comicID}
	err = db.conn.QueryRowContext(ctx, `
		INSERT INTO user_ratings (user_id, comic_id, rating)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, comic_id) DO UPDATE
			SET rating = excluded.rating, updated_at = current_timestamp
		RETURNING rating, created_at, updated_at`,
		userID, comicID, rating,
	).Scan(&r.Rating, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert rating: %w", err)
	}
	return r, nil
}

// GetUserRating returns the user's rating for a comic or ErrNotFound.
func (db *DB) GetUserRating(ctx context.Context, userID, comicID int64) (_ *models.Rating, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	defer track("select", "user_ratings")(&err)

	r := &models.Rating{UserID: userID, ComicID: comicID}
	err = db.conn.QueryRowContext(ctx, `
		SELECT rating, created_at, updated_at FROM user_ratings
		WHERE user_id = ? AND comic_id = ?`, userID, comicID,
	).Scan(&r.Rating, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}
	return r, nil
}

// ListRatingsByUser returns every rating of the user, oldest first, ties by
// comic ID.
func (db *DB) ListRatingsByUser(ctx context.Context, userID int64) (_ []*models.Rating, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	defer track("select", "user_ratings")(&err)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, comic_id, rating, created_at, updated_at FROM user_ratings
		WHERE user_id = ?
		ORDER BY created_at, comic_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	defer closeWithLog(rows, "rows")

	ratings := []*models.Rating{}
	for rows.Next() {
		var r models.Rating
		if err = rows.Scan(&r.UserID, &r.ComicID, &r.Rating, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, &r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ratings: %w", err)
	}
	return ratings, nil
}
