// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package models

import (
	"time"

	"github.com/tomtom215/comicrec/internal/recommend"
)

// Rating bounds accepted by the API.
const (
	MinRating = 1.0
	MaxRating = 5.0
)

// Rating is one user's score for one comic. A user has at most one rating
// per comic; a later rating replaces the earlier one.
type Rating struct {
	UserID    int64     `json:"user_id"`
	ComicID   int64     `json:"comic_id"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Recommend converts the rating to the engine's form.
func (r *Rating) Recommend() recommend.Rating {
	return recommend.Rating{
		UserID: recommend.UserID(r.UserID),
		ItemID: recommend.ItemID(r.ComicID),
		Score:  r.Rating,
	}
}

// RateComicRequest is the body of POST /api/v1/ratings.
type RateComicRequest struct {
	ComicID int64   `json:"comic_id" validate:"required,gt=0"`
	Rating  float64 `json:"rating" validate:"gte=1,lte=5"`
}
