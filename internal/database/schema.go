// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package database

import (
	"context"
	"fmt"
)

// Schema. characters holds a JSON array of strings. Referential integrity
// between user_ratings and comics is checked in UpsertRating because DuckDB
// rejects updates to rows referenced by a foreign key.
var schemaQueries = []string{
	`CREATE SEQUENCE IF NOT EXISTS users_id_seq START 1`,
	`CREATE SEQUENCE IF NOT EXISTS comics_id_seq START 1`,

	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY DEFAULT nextval('users_id_seq'),
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,

	`CREATE TABLE IF NOT EXISTS comics (
		id BIGINT PRIMARY KEY DEFAULT nextval('comics_id_seq'),
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		characters TEXT NOT NULL DEFAULT '[]',
		genre TEXT NOT NULL,
		image_url TEXT,
		external_id TEXT UNIQUE,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,

	`CREATE TABLE IF NOT EXISTS user_ratings (
		user_id BIGINT NOT NULL,
		comic_id BIGINT NOT NULL,
		rating DOUBLE NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
		updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
		PRIMARY KEY (user_id, comic_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_comics_title ON comics(title)`,
	`CREATE INDEX IF NOT EXISTS idx_comics_genre ON comics(genre)`,
	`CREATE INDEX IF NOT EXISTS idx_ratings_comic ON user_ratings(comic_id)`,
}

func (db *DB) createSchema(ctx context.Context) error {
	for _, q := range schemaQueries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to execute schema query %q: %w", q, err)
		}
	}
	return nil
}
