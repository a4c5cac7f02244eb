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
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/comicrec/internal/logging"
	"github.com/tomtom215/comicrec/internal/models"
)

const comicColumns = `id, title, description, characters, genre, image_url, external_id, created_at`

// CreateComic inserts comic and fills in its ID and CreatedAt.
// A taken external ID returns ErrDuplicate.
func (db *DB) CreateComic(ctx context.Context, comic *models.Comic) (err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	defer track("insert", "comics")(&err)

	chars, err := encodeCharacters(comic.Characters)
	if err != nil {
		return err
	}

	row := db.conn.QueryRowContext(ctx, `
		INSERT INTO comics (title, description, characters, genre, image_url, external_id)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, created_at`,
		comic.Title, comic.Description, chars, comic.Genre,
		nullString(comic.ImageURL), nullString(comic.ExternalID),
	)
	if err = row.Scan(&comic.ID, &comic.CreatedAt); err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create comic: %w", err)
	}
	return nil
}

// UpsertComicByExternalID inserts comic, or updates the comic that already
// has the same external ID. It reports whether a new row was created.
func (db *DB) UpsertComicByExternalID(ctx context.Context, comic *models.Comic) (created bool, err error) {
	if comic.ExternalID == "" {
		return false, errors.New("database: upsert requires an external id")
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()
	defer track("upsert", "comics")(&err)

	var existingID int64
	err = db.conn.QueryRowContext(ctx, `SELECT id FROM comics WHERE external_id = ?`, comic.ExternalID).Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = db.CreateComic(ctx, comic)
		return err == nil, err
	case err != nil:
		return false, fmt.Errorf("failed to look up comic %q: %w", comic.ExternalID, err)
	}

	chars, err := encodeCharacters(comic.Characters)
	if err != nil {
		return false, err
	}
	row := db.conn.QueryRowContext(ctx, `
		UPDATE comics SET title = ?, description = ?, characters = ?, genre = ?, image_url = ?
		WHERE id = ?
		RETURNING id, created_at`,
		comic.Title, comic.Description, chars, comic.Genre, nullString(comic.ImageURL), existingID,
	)
	if err = row.Scan(&comic.ID, &comic.CreatedAt); err != nil {
		return false, fmt.Errorf("failed to update comic %q: %w", comic.ExternalID, err)
	}
	return false, nil
}

// GetComic returns the comic with the given ID or ErrNotFound.
func (db *DB) GetComic(ctx context.Context, id int64) (_ *models.Comic, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	defer track("select", "comics")(&err)

	row := db.conn.QueryRowContext(ctx, `SELECT `+comicColumns+` FROM comics WHERE id = ?`, id)
	comic, err := scanComic(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comic %d: %w", id, err)
	}
	return comic, nil
}

// ListComics returns up to limit comics ordered by ID, skipping the first skip.
func (db *DB) ListComics(ctx context.Context, skip, limit int) (_ []*models.Comic, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	defer track("select", "comics")(&err)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+comicColumns+` FROM comics ORDER BY id LIMIT ? OFFSET ?`, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to list comics: %w", err)
	}
	defer closeWithLog(rows, "rows")

	comics := []*models.Comic{}
	for rows.Next() {
		c, err := scanComic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comic: %w", err)
		}
		comics = append(comics, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comics: %w", err)
	}
	return comics, nil
}

// ListAllComics returns the whole catalog ordered by ID.
func (db *DB) ListAllComics(ctx context.Context) (_ []*models.Comic, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	defer track("select", "comics")(&err)

	rows, err := db.conn.QueryContext(ctx, `SELECT `+comicColumns+` FROM comics ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list comics: %w", err)
	}
	defer closeWithLog(rows, "rows")

	comics := []*models.Comic{}
	for rows.Next() {
		c, err := scanComic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comic: %w", err)
		}
		comics = append(comics, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comics: %w", err)
	}
	return comics, nil
}

// UpdateComicImages sets image_url for every comic ID in images within one
// transaction and returns the number of rows changed. Unknown IDs are
// skipped; any failure rolls back all updates.
func (db *DB) UpdateComicImages(ctx context.Context, images map[int64]string) (updated int, err error) {
	if len(images) == 0 {
		return 0, nil
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()
	defer track("update", "comics")(&err)

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `UPDATE comics SET image_url = ? WHERE id = ?`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare image update: %w", err)
	}
	defer closeWithLog(stmt, "statement")

	for id, url := range images {
		res, err := stmt.ExecContext(ctx, nullString(url), id)
		if err != nil {
			return 0, fmt.Errorf("failed to update image of comic %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read rows affected: %w", err)
		}
		updated += int(n)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit image update: %w", err)
	}
	return updated, nil
}

// GetComicsByIDs returns the comics with the given IDs keyed by ID.
// Unknown IDs are absent from the map.
func (db *DB) GetComicsByIDs(ctx context.Context, ids []int64) (_ map[int64]*models.Comic, err error) {
	out := make(map[int64]*models.Comic, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()
	defer track("select", "comics")(&err)

	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+comicColumns+` FROM comics WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get comics: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		c, err := scanComic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comic: %w", err)
		}
		out[c.ID] = c
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comics: %w", err)
	}
	return out, nil
}

// CountComics returns the number of comics in the catalog.
func (db *DB) CountComics(ctx context.Context) (n int64, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	defer track("count", "comics")(&err)

	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM comics`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count comics: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComic(row rowScanner) (*models.Comic, error) {
	var (
		c          models.Comic
		chars      string
		imageURL   sql.NullString
		externalID sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &chars, &c.Genre, &imageURL, &externalID, &c.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if c.Characters, err = decodeCharacters(chars); err != nil {
		return nil, fmt.Errorf("comic %d: %w", c.ID, err)
	}
	c.ImageURL = imageURL.String
	c.ExternalID = externalID.String
	return &c, nil
}

func encodeCharacters(chars []string) (string, error) {
	if chars == nil {
		chars = []string{}
	}
	b, err := json.Marshal(chars)
	if err != nil {
		return "", fmt.Errorf("failed to encode characters: %w", err)
	}
	return string(b), nil
}

func decodeCharacters(s string) ([]string, error) {
	chars := []string{}
	if s == "" {
		return chars, nil
	}
	if err := json.Unmarshal([]byte(s), &chars); err != nil {
		return nil, fmt.Errorf("failed to decode characters: %w", err)
	}
	return chars, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
