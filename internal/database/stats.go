// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/comicrec/internal/models"
)

// Source labels for comics by external ID prefix.
const (
	SourceSeed   = "seed"
	SourceManual = "manual"
)

const (
	topGenreLimit     = 5
	sampleDescMaxLen  = 100
	defaultSampleSize = 10
)

// GetCatalogStats returns catalog totals, the comic count per source and
// the five largest genres. A source is the external ID prefix before the
// first underscore; comics without an external ID count as manual.
func (db *DB) GetCatalogStats(ctx context.Context) (_ *models.CatalogStats, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	defer track("stats", "comics")(&err)

	stats := &models.CatalogStats{Sources: map[string]int64{}, TopGenres: []models.GenreCount{}}

	err = db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM comics),
			(SELECT COUNT(*) FROM user_ratings),
			(SELECT COUNT(*) FROM users)`,
	).Scan(&stats.TotalComics, &stats.TotalRatings, &stats.TotalUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to count catalog: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT COALESCE(NULLIF(split_part(external_id, '_', 1), ''), '`+SourceManual+`') AS source, COUNT(*)
		FROM comics
		GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to count sources: %w", err)
	}
	for rows.Next() {
		var (
			source string
			n      int64
		)
		if err = rows.Scan(&source, &n); err != nil {
			closeQuietly(rows)
			return nil, fmt.Errorf("failed to scan source count: %w", err)
		}
		stats.Sources[source] = n
	}
	if err = rows.Err(); err != nil {
		closeQuietly(rows)
		return nil, fmt.Errorf("error iterating sources: %w", err)
	}
	closeWithLog(rows, "rows")

	rows, err = db.conn.QueryContext(ctx, `
		SELECT genre, COUNT(*) AS n FROM comics
		GROUP BY genre
		ORDER BY n DESC, genre
		LIMIT ?`, topGenreLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query genres: %w", err)
	}
	defer closeWithLog(rows, "rows")
	for rows.Next() {
		var g models.GenreCount
		if err = rows.Scan(&g.Genre, &g.Count); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		stats.TopGenres = append(stats.TopGenres, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating genres: %w", err)
	}

	stats.Message = fmt.Sprintf("Your comic recommendation system has access to %d comics from %d sources", stats.TotalComics, len(stats.Sources))
	return stats, nil
}

// SampleComics returns up to limit comics in random order with descriptions
// shortened to 100 characters.
func (db *DB) SampleComics(ctx context.Context, limit int) (_ *models.CatalogSample, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	defer track("sample", "comics")(&err)

	if limit <= 0 {
		limit = defaultSampleSize
	}

	sample := &models.CatalogSample{SampleComics: []models.SampleComic{}}
	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM comics`).Scan(&sample.TotalAvailable); err != nil {
		return nil, fmt.Errorf("failed to count comics: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, genre, description FROM comics ORDER BY random() LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to sample comics: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var c models.SampleComic
		if err = rows.Scan(&c.ID, &c.Title, &c.Genre, &c.Description); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		c.Description = shorten(c.Description, sampleDescMaxLen)
		sample.SampleComics = append(sample.SampleComics, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sample: %w", err)
	}
	return sample, nil
}

// shorten cuts s to n runes and appends "..." when it was longer.
func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimRight(string(r[:n]), " ") + "..."
}
