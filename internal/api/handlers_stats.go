// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package api

import (
	"net/http"

	"github.com/tomtom215/comicrec/internal/cache"
	"github.com/tomtom215/comicrec/internal/models"
	"github.com/tomtom215/comicrec/internal/validation"
)

// sampleRequest bounds the sample size.
type sampleRequest struct {
	Limit int `json:"limit" validate:"min=1,max=100"`
}

// GetStats returns catalog statistics.
//
// @Summary Catalog statistics
// @Description Counts of comics, ratings and users plus the top genres. Cached until the catalog changes.
// @Tags Stats
// @Produce json
// @Success 200 {object} APIResponse{data=models.CatalogStats}
// @Router /stats [get]
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	key := cache.GenerateKey("stats", nil)
	if cached, ok := h.cache.Get(key); ok {
		if stats, ok := cached.(*models.CatalogStats); ok {
			rw.Success(stats)
			return
		}
	}

	stats, err := h.store.GetCatalogStats(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	h.cache.Set(key, stats)
	rw.Success(stats)
}

// GetSample returns a few comics with shortened descriptions.
//
// @Summary Catalog sample
// @Tags Stats
// @Produce json
// @Param limit query int false "Sample size" default(10)
// @Success 200 {object} APIResponse{data=models.CatalogSample}
// @Failure 400 {object} APIResponse
// @Router /stats/sample [get]
func (h *Handler) GetSample(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, err := getIntParam(r, "limit", 10)
	if err != nil {
		rw.BadRequest(paramMessage(err))
		return
	}
	req := sampleRequest{Limit: limit}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	key := cache.GenerateKey("stats_sample", req)
	if cached, ok := h.cache.Get(key); ok {
		if sample, ok := cached.(*models.CatalogSample); ok {
			rw.Success(sample)
			return
		}
	}

	sample, err := h.store.SampleComics(r.Context(), req.Limit)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	h.cache.Set(key, sample)
	rw.Success(sample)
}
