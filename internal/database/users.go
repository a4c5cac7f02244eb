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

	"github.com/tomtom215/comicrec/internal/models"
)

// CreateUser registers a user. Emails are stored lower-cased; a taken email
// returns ErrDuplicate.
func (db *DB) CreateUser(ctx context.Context, email, passwordHash string) (_ *models.User, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	defer track("insert", "users")(&err)

	u := &models.User{Email: normalizeEmail(email), PasswordHash: passwordHash}
	err = db.conn.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash) VALUES (?, ?)
		RETURNING id, created_at`, u.Email, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns the user with the given email or ErrNotFound.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (_ *models.User, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	defer track("select", "users")(&err)

	return db.getUser(ctx, `WHERE email = ?`, normalizeEmail(email))
}

// GetUserByID returns the user with the given ID or ErrNotFound.
func (db *DB) GetUserByID(ctx context.Context, id int64) (_ *models.User, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	defer track("select", "users")(&err)

	return db.getUser(ctx, `WHERE id = ?`, id)
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	var u models.User
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users `+where, arg,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
