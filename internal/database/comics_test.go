// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package database

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tomtom215/comicrec/internal/models"
)

func TestCreateAndGetComic(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	in := &models.Comic{
		Title:       "Daredevil",
		Description: "Blind lawyer Matt Murdock fights crime in Hell's Kitchen.",
		Characters:  []string{"Matt Murdock", "Foggy Nelson"},
		Genre:       "Superhero",
		ImageURL:    "https://example.com/dd.jpg",
		ExternalID:  "manual_dd",
	}
	if err := db.CreateComic(ctx, in); err != nil {
		t.Fatalf("CreateComic() error = %v", err)
	}
	if in.ID <= 0 {
		t.Fatalf("CreateComic() did not assign an ID: %d", in.ID)
	}
	if in.CreatedAt.IsZero() {
		t.Error("CreateComic() did not set CreatedAt")
	}

	got, err := db.GetComic(ctx, in.ID)
	if err != nil {
		t.Fatalf("GetComic() error = %v", err)
	}
	if got.Title != in.Title || got.Genre != in.Genre || got.ImageURL != in.ImageURL || got.ExternalID != in.ExternalID {
		t.Errorf("GetComic() = %+v, want %+v", got, in)
	}
	if !reflect.DeepEqual(got.Characters, in.Characters) {
		t.Errorf("Characters = %v, want %v", got.Characters, in.Characters)
	}
}

func TestCreateComic_NilCharacters(t *testing.T) {
	db := setupTestDB(t)

	id := insertComic(t, db, "Solo", "Drama")
	got, err := db.GetComic(context.Background(), id)
	if err != nil {
		t.Fatalf("GetComic() error = %v", err)
	}
	if got.Characters == nil || len(got.Characters) != 0 {
		t.Errorf("Characters = %#v, want empty slice", got.Characters)
	}
}

func TestCreateComic_DuplicateExternalID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := &models.Comic{Title: "A", Description: "a", Genre: "g", ExternalID: "seed_a"}
	if err := db.CreateComic(ctx, first); err != nil {
		t.Fatalf("CreateComic() error = %v", err)
	}
	second := &models.Comic{Title: "B", Description: "b", Genre: "g", ExternalID: "seed_a"}
	if err := db.CreateComic(ctx, second); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("CreateComic() error = %v, want ErrDuplicate", err)
	}

	// Comics without an external ID never collide.
	insertComic(t, db, "C", "g")
	insertComic(t, db, "D", "g")
}

func TestGetComic_NotFound(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.GetComic(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetComic() error = %v, want ErrNotFound", err)
	}
}

func TestListComics(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	var ids []int64
	for _, title := range []string{"One", "Two", "Three", "Four", "Five"} {
		ids = append(ids, insertComic(t, db, title, "g"))
	}

	tests := []struct {
		name        string
		skip, limit int
		want        []int64
	}{
		{"first page", 0, 2, ids[:2]},
		{"second page", 2, 2, ids[2:4]},
		{"tail", 4, 10, ids[4:]},
		{"past end", 10, 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.ListComics(ctx, tt.skip, tt.limit)
			if err != nil {
				t.Fatalf("ListComics() error = %v", err)
			}
			if got == nil {
				t.Fatal("ListComics() returned nil slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ListComics() returned %d comics, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("comic %d ID = %d, want %d", i, got[i].ID, tt.want[i])
				}
			}
		})
	}

	n, err := db.CountComics(ctx)
	if err != nil {
		t.Fatalf("CountComics() error = %v", err)
	}
	if n != 5 {
		t.Errorf("CountComics() = %d, want 5", n)
	}
}

func TestUpsertComicByExternalID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	c := &models.Comic{Title: "Thor", Description: "old", Genre: "Superhero", ExternalID: "seed_thor"}
	created, err := db.UpsertComicByExternalID(ctx, c)
	if err != nil || !created {
		t.Fatalf("first upsert = (%v, %v), want (true, nil)", created, err)
	}
	firstID := c.ID

	update := &models.Comic{Title: "Thor", Description: "new", Genre: "Myth", Characters: []string{"Loki"}, ExternalID: "seed_thor"}
	created, err = db.UpsertComicByExternalID(ctx, update)
	if err != nil || created {
		t.Fatalf("second upsert = (%v, %v), want (false, nil)", created, err)
	}
	if update.ID != firstID {
		t.Errorf("update ID = %d, want %d", update.ID, firstID)
	}

	got, err := db.GetComic(ctx, firstID)
	if err != nil {
		t.Fatalf("GetComic() error = %v", err)
	}
	if got.Description != "new" || got.Genre != "Myth" || !reflect.DeepEqual(got.Characters, []string{"Loki"}) {
		t.Errorf("GetComic() = %+v", got)
	}

	if _, err := db.UpsertComicByExternalID(ctx, &models.Comic{Title: "x"}); err == nil {
		t.Error("upsert without external id should fail")
	}
}

func TestGetComicsByIDs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a := insertComic(t, db, "Alpha", "hero", "Ann")
	b := insertComic(t, db, "Beta", "noir")

	got, err := db.GetComicsByIDs(ctx, []int64{a, b, 999})
	if err != nil {
		t.Fatalf("GetComicsByIDs() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetComicsByIDs() returned %d comics, want 2", len(got))
	}
	if got[a].Title != "Alpha" || got[b].Title != "Beta" {
		t.Errorf("titles = %q, %q", got[a].Title, got[b].Title)
	}
	if len(got[a].Characters) != 1 || got[a].Characters[0] != "Ann" {
		t.Errorf("characters = %v", got[a].Characters)
	}

	empty, err := db.GetComicsByIDs(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("GetComicsByIDs(nil) = %v, %v", empty, err)
	}
}

func TestListAllComics(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	empty, err := db.ListAllComics(ctx)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("ListAllComics() on empty catalog = %v, %v", empty, err)
	}

	ids := []int64{
		insertComic(t, db, "Alpha", "hero"),
		insertComic(t, db, "Beta", "noir"),
		insertComic(t, db, "Gamma", "hero"),
	}
	got, err := db.ListAllComics(ctx)
	if err != nil {
		t.Fatalf("ListAllComics() error = %v", err)
	}
	if len(got) != len(ids) {
		t.Fatalf("ListAllComics() returned %d comics, want %d", len(got), len(ids))
	}
	for i, c := range got {
		if c.ID != ids[i] {
			t.Errorf("comic %d ID = %d, want %d", i, c.ID, ids[i])
		}
	}
}

func TestUpdateComicImages(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a := insertComic(t, db, "Alpha", "hero")
	b := insertComic(t, db, "Beta", "noir")

	n, err := db.UpdateComicImages(ctx, map[int64]string{
		a:   "https://example.com/a.jpg",
		b:   "https://example.com/b.jpg",
		999: "https://example.com/missing.jpg",
	})
	if err != nil {
		t.Fatalf("UpdateComicImages() error = %v", err)
	}
	if n != 2 {
		t.Errorf("UpdateComicImages() updated %d rows, want 2", n)
	}

	got, err := db.GetComicsByIDs(ctx, []int64{a, b})
	if err != nil {
		t.Fatalf("GetComicsByIDs() error = %v", err)
	}
	if got[a].ImageURL != "https://example.com/a.jpg" || got[b].ImageURL != "https://example.com/b.jpg" {
		t.Errorf("images = %q, %q", got[a].ImageURL, got[b].ImageURL)
	}

	if n, err := db.UpdateComicImages(ctx, nil); n != 0 || err != nil {
		t.Errorf("UpdateComicImages(nil) = %d, %v", n, err)
	}
}

func TestUpdateComicImages_CanceledContext(t *testing.T) {
	db := setupTestDB(t)
	a := insertComic(t, db, "Alpha", "hero")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := db.UpdateComicImages(ctx, map[int64]string{a: "https://example.com/a.jpg"}); err == nil {
		t.Fatal("UpdateComicImages() with canceled context succeeded")
	}

	c, err := db.GetComic(context.Background(), a)
	if err != nil {
		t.Fatalf("GetComic() error = %v", err)
	}
	if c.ImageURL != "" {
		t.Errorf("image = %q after failed update, want empty", c.ImageURL)
	}
}
