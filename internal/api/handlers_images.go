// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/comicrec/internal/covers"
	"github.com/tomtom215/comicrec/internal/database"
	"github.com/tomtom215/comicrec/internal/logging"
	"github.com/tomtom215/comicrec/internal/models"
)

// RefreshImages reassigns every comic's cover from the local resolver.
//
// @Summary Refresh cover images
// @Description Recomputes image_url for the whole catalog from title, character and genre matching.
// @Tags Images
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse{data=models.ImageRefresh}
// @Failure 401 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /images/refresh-images [post]
func (h *Handler) RefreshImages(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if _, ok := requireUser(rw, r); !ok {
		return
	}

	comics, err := h.store.ListAllComics(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	images := make(map[int64]string, len(comics))
	for _, c := range comics {
		c.ImageURL = h.covers.Assign(c.Title, c.Characters, c.Genre).URL
		images[c.ID] = c.ImageURL
	}

	updated, err := h.store.UpdateComicImages(r.Context(), images)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	h.cache.Clear()

	logging.Ctx(r.Context()).Info().Int("updated", updated).Msg("Cover images refreshed")
	rw.Success(models.ImageRefresh{Updated: updated, Comics: comics})
}

// ImageSuggestions lists the cover each matching rule would pick for a comic.
//
// @Summary Cover image suggestions
// @Tags Images
// @Produce json
// @Param comic_id path int true "Comic ID"
// @Success 200 {object} APIResponse{data=models.ImageSuggestions}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /images/image-suggestions/{comic_id} [get]
func (h *Handler) ImageSuggestions(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := pathID(r, "comic_id")
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

	rw.Success(models.ImageSuggestions{
		ComicID:    comic.ID,
		ComicTitle: comic.Title,
		Suggestions: models.CoverSuggestions{
			Current:     comic.ImageURL,
			ByTitle:     coverOption(h.covers.ByTitle(comic.Title, comic.Characters)),
			ByGenre:     h.covers.ByGenre(comic.Genre),
			Recommended: coverOption(h.covers.Recommended(comic.Title, comic.Characters, comic.Genre)),
		},
	})
}

func coverOption(m covers.Match) models.CoverOption {
	return models.CoverOption{URL: m.URL, Source: string(m.Source)}
}
