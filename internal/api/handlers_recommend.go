// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/comicrec/internal/logging"
	"github.com/tomtom215/comicrec/internal/metrics"
	"github.com/tomtom215/comicrec/internal/models"
	"github.com/tomtom215/comicrec/internal/recommend"
)

// GetRecommendations returns recommendations for the caller.
//
// @Summary Get recommendations
// @Description Content-based recommendations from the caller's liked comics (rating >= 3), or the most popular comics when there are none.
// @Tags Recommendations
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of recommendations; 0 returns none. Capped at RECOMMEND_MAX_K (default 100), reported back as limit and limit_clamped" default(5)
// @Success 200 {object} APIResponse{data=models.RecommendationList}
// @Failure 400 {object} APIResponse
// @Failure 429 {object} APIResponse
// @Failure 503 {object} APIResponse
// @Router /recommendations [get]
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID, ok := requireUser(rw, r)
	if !ok {
		return
	}

	limit, err := getIntParam(r, "limit", h.defaultRecommendLimit())
	if err != nil {
		rw.BadRequest(paramMessage(err))
		return
	}

	start := time.Now()
	resp, err := h.recommender.Recommend(r.Context(), recommend.Request{
		UserID:    recommend.UserID(userID),
		K:         limit,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		h.recommendError(rw, r, err)
		return
	}
	metrics.RecordRecommendation(string(resp.Strategy), len(resp.Items), resp.Metadata.CatalogSize, time.Since(start))

	list, err := h.toRecommendationList(r.Context(), resp)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	list.LimitClamped = limit > list.Limit
	rw.Success(list)
}

func (h *Handler) defaultRecommendLimit() int {
	if n := h.config.Recommend.DefaultK; n > 0 {
		return n
	}
	return 5
}

func (h *Handler) recommendError(rw *ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrInvalidCount):
		rw.BadRequest("limit must not be negative")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		rw.ServiceUnavailable("Catalog temporarily unavailable")
	case errors.Is(err, recommend.ErrCatalogTooLarge), errors.Is(err, context.DeadlineExceeded):
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Recommendation request could not complete")
		rw.ServiceUnavailable("Recommendations temporarily unavailable")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Recommendation failed")
		rw.InternalError("Failed to generate recommendations")
	}
}

// toRecommendationList attaches the full comic records to engine results.
// A comic deleted since the snapshot is rebuilt from the engine item.
func (h *Handler) toRecommendationList(ctx context.Context, resp *recommend.Response) (*models.RecommendationList, error) {
	ids := make([]int64, len(resp.Items))
	for i, it := range resp.Items {
		ids[i] = int64(it.Item.ID)
	}

	comics := map[int64]*models.Comic{}
	if len(ids) > 0 {
		var err error
		if comics, err = h.store.GetComicsByIDs(ctx, ids); err != nil {
			return nil, err
		}
	}

	recs := make([]models.Recommendation, len(resp.Items))
	for i, it := range resp.Items {
		comic, ok := comics[int64(it.Item.ID)]
		if !ok {
			comic = comicFromItem(it.Item)
		}
		recs[i] = models.Recommendation{
			Comic:           comic,
			SimilarityScore: it.Score,
			Explanation:     it.Reason,
		}
	}

	return &models.RecommendationList{
		Recommendations: recs,
		Strategy:        string(resp.Strategy),
		TotalCandidates: resp.TotalCandidates,
		Limit:           resp.Metadata.K,
		RequestID:       resp.Metadata.RequestID,
		LatencyMS:       float64(resp.Metadata.Latency.Microseconds()) / 1000,
		GeneratedAt:     resp.Metadata.GeneratedAt,
	}, nil
}

func comicFromItem(item recommend.Item) *models.Comic {
	chars := item.Tags
	if chars == nil {
		chars = []string{}
	}
	return &models.Comic{
		ID:          int64(item.ID),
		Title:       item.Title,
		Description: item.Description,
		Characters:  chars,
		Genre:       item.Category,
	}
}
