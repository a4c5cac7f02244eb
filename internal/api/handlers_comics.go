// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/comicrec/internal/database"
	"github.com/tomtom215/comicrec/internal/events"
	"github.com/tomtom215/comicrec/internal/logging"
	"github.com/tomtom215/comicrec/internal/models"
	"github.com/tomtom215/comicrec/internal/validation"
)

// ListComics returns a page of the catalog ordered by ID.
//
// @Summary List comics
// @Tags Comics
// @Produce json
// @Param skip query int false "Items to skip" default(0)
// @Param limit query int false "Page size" default(100)
// @Success 200 {object} APIResponse{data=[]models.Comic}
// @Failure 400 {object} APIResponse
// @Router /comics [get]
func (h *Handler) ListComics(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	skip, err := getIntParam(r, "skip", 0)
	if err != nil {
		rw.BadRequest(paramMessage(err))
		return
	}
	limit, err := getIntParam(r, "limit", h.defaultPageSize())
	if err != nil {
		rw.BadRequest(paramMessage(err))
		return
	}

	req := models.ListComicsRequest{Skip: skip, Limit: limit}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}
	if maxSize := h.config.API.MaxPageSize; maxSize > 0 && req.Limit > maxSize {
		req.Limit = maxSize
	}

	comics, err := h.store.ListComics(r.Context(), req.Skip, req.Limit)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	total, err := h.store.CountComics(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.SuccessWithPagination(comics, &PaginationMeta{
		Total:   total,
		Count:   len(comics),
		Skip:    req.Skip,
		Limit:   req.Limit,
		HasMore: int64(req.Skip+len(comics)) < total,
	})
}

// GetComic returns one comic.
//
// @Summary Get a comic
// @Tags Comics
// @Produce json
// @Param id path int true "Comic ID"
// @Success 200 {object} APIResponse{data=models.Comic}
// @Failure 404 {object} APIResponse
// @Router /comics/{id} [get]
func (h *Handler) GetComic(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := pathID(r, "id")
	if err != nil {
		rw.BadRequest(paramMessage(err))
		return
	}

	comic, err := h.store.GetComic(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("Comic not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(comic)
}

// CreateComic adds a comic to the catalog. A comic without image_url gets
// one from the cover resolver.
//
// @Summary Create a comic
// @Tags Comics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateComicRequest true "Comic"
// @Success 201 {object} APIResponse{data=models.Comic}
// @Failure 400 {object} APIResponse
// @Failure 401 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Router /comics [post]
func (h *Handler) CreateComic(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if _, ok := requireUser(rw, r); !ok {
		return
	}

	var req models.CreateComicRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	comic := req.Comic()
	if comic.ImageURL == "" {
		comic.ImageURL = h.covers.Assign(comic.Title, comic.Characters, comic.Genre).URL
	}
	err := h.store.CreateComic(r.Context(), comic)
	if errors.Is(err, database.ErrDuplicate) {
		rw.Conflict("A comic with this external ID already exists")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	if err := h.publisher.Publish(r.Context(), events.ComicCreated(comic.ID, comic.Genre)); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Int64("comic_id", comic.ID).Msg("Failed to publish comic event")
	}
	rw.Created(comic)
}

func (h *Handler) defaultPageSize() int {
	if n := h.config.API.DefaultPageSize; n > 0 {
		return n
	}
	return 100
}
