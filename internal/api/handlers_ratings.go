// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/comicrec/internal/database"
	"github.com/tomtom215/comicrec/internal/logging"
	"github.com/tomtom215/comicrec/internal/models"
)

// PendingRating is returned with 202 when a rating is durable in the WAL
// but not yet applied.
type PendingRating struct {
	UserID  int64   `json:"user_id"`
	ComicID int64   `json:"comic_id"`
	Rating  float64 `json:"rating"`
	EntryID string  `json:"entry_id"`
	Status  string  `json:"status"`
}

// RateComic creates or replaces the caller's rating for a comic.
//
// @Summary Rate a comic
// @Description Upserts the caller's rating (1.0-5.0). Returns 202 when the write is queued for retry.
// @Tags Ratings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.RateComicRequest true "Rating"
// @Success 200 {object} APIResponse{data=models.Rating}
// @Success 202 {object} APIResponse{data=PendingRating}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /ratings [post]
func (h *Handler) RateComic(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID, ok := requireUser(rw, r)
	if !ok {
		return
	}

	var req models.RateComicRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}
	if h.ratings == nil {
		rw.ServiceUnavailable("Ratings are not available")
		return
	}

	res, err := h.ratings.Rate(r.Context(), userID, req.ComicID, req.Rating, logging.RequestIDFromContext(r.Context()))
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("Comic not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	if res.Pending {
		rw.Accepted(&PendingRating{
			UserID:  userID,
			ComicID: req.ComicID,
			Rating:  req.Rating,
			EntryID: res.EntryID,
			Status:  "pending",
		})
		return
	}
	rw.Success(res.Rating)
}

// ListRatings returns the caller's ratings in the order they were first created.
//
// @Summary List my ratings
// @Tags Ratings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse{data=[]models.Rating}
// @Router /ratings [get]
func (h *Handler) ListRatings(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID, ok := requireUser(rw, r)
	if !ok {
		return
	}

	ratings, err := h.store.ListRatingsByUser(r.Context(), userID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if ratings == nil {
		ratings = []*models.Rating{}
	}
	rw.Success(ratings)
}

// GetRating returns the caller's rating for one comic.
//
// @Summary Get my rating for a comic
// @Tags Ratings
// @Produce json
// @Security BearerAuth
// @Param comic_id path int true "Comic ID"
// @Success 200 {object} APIResponse{data=models.Rating}
// @Failure 404 {object} APIResponse
// @Router /ratings/{comic_id} [get]
func (h *Handler) GetRating(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID, ok := requireUser(rw, r)
	if !ok {
		return
	}

	comicID, err := pathID(r, "comic_id")
	if err != nil {
		rw.BadRequest(paramMessage(err))
		return
	}

	rating, err := h.store.GetUserRating(r.Context(), userID, comicID)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("Rating not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(rating)
}
