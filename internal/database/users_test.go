// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package database

import (
	"context"
	"errors"
	"testing"
)

func TestCreateUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u, err := db.CreateUser(ctx, " Reader@Example.com ", "hash")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if u.ID <= 0 || u.Email != "reader@example.com" || u.CreatedAt.IsZero() {
		t.Errorf("CreateUser() = %+v", u)
	}

	if _, err := db.CreateUser(ctx, "READER@example.com", "other"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate CreateUser() error = %v, want ErrDuplicate", err)
	}

	byEmail, err := db.GetUserByEmail(ctx, "reader@EXAMPLE.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if byEmail.ID != u.ID || byEmail.PasswordHash != "hash" {
		t.Errorf("GetUserByEmail() = %+v", byEmail)
	}

	byID, err := db.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if byID.Email != u.Email {
		t.Errorf("GetUserByID() = %+v", byID)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUserByEmail() error = %v, want ErrNotFound", err)
	}
	if _, err := db.GetUserByID(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}
