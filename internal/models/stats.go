// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package models

import "time"

// CatalogStats summarizes the catalog.
type CatalogStats struct {
	TotalComics  int64            `json:"total_comics"`
	TotalRatings int64            `json:"total_ratings"`
	TotalUsers   int64            `json:"total_users"`
	Sources      map[string]int64 `json:"sources"`
	TopGenres    []GenreCount     `json:"top_genres"`
	Message      string           `json:"message"`
}

// GenreCount is the number of comics in one genre.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int64  `json:"count"`
}

// SampleComic is a shortened view of a comic for the sample endpoint.
type SampleComic struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	Description string `json:"description"`
}

// CatalogSample is a random selection of comics.
type CatalogSample struct {
	SampleComics   []SampleComic `json:"sample_comics"`
	TotalAvailable int64         `json:"total_available"`
}

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	WALEnabled        bool    `json:"wal_enabled"`
	WALPending        int64   `json:"wal_pending"`
	Uptime            float64 `json:"uptime_seconds"`
}

// Recommendation is one entry of GET /api/v1/recommendations.
type Recommendation struct {
	Comic           *Comic  `json:"comic"`
	SimilarityScore float64 `json:"similarity_score"`
	Explanation     string  `json:"explanation"`
}

// RecommendationList is the body of GET /api/v1/recommendations.
type RecommendationList struct {
	Recommendations []Recommendation `json:"recommendations"`
	Strategy        string           `json:"strategy"`
	TotalCandidates int              `json:"total_candidates"`
	Limit           int              `json:"limit"`                   // applied after the server cap
	LimitClamped    bool             `json:"limit_clamped,omitempty"` // requested limit exceeded the cap
	RequestID       string           `json:"request_id"`
	LatencyMS       float64          `json:"latency_ms"`
	GeneratedAt     time.Time        `json:"generated_at"`
}
