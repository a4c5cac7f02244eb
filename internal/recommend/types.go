// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package recommend

import (
	"time"
)

// ItemID identifies a catalog item (comic issue).
type ItemID int64

// UserID identifies a user.
type UserID int64

// Item is a catalog entry as seen by the engine.
// Missing attributes are zero values; the engine never requires them.
type Item struct {
	// ID is the unique, stable item identifier.
	ID ItemID `json:"id"`

	// Title is used in explanations.
	Title string `json:"title"`

	// Description is free text.
	Description string `json:"description,omitempty"`

	// Tags is an ordered list of labels, e.g. characters.
	Tags []string `json:"tags,omitempty"`

	// Category is a single label, e.g. genre.
	Category string `json:"category,omitempty"`
}

// Rating is a user's score for one item.
type Rating struct {
	UserID UserID  `json:"user_id"`
	ItemID ItemID  `json:"item_id"`
	Score  float64 `json:"score"`
}

// Liked reports whether the rating meets the liked threshold.
func (r Rating) Liked() bool {
	return r.Score >= LikedThreshold
}

// ScoredItem is one ranked recommendation.
type ScoredItem struct {
	// Item is the recommended item.
	Item Item `json:"item"`

	// Score is the similarity in [0, 1]. Popularity results always carry 0.
	Score float64 `json:"score"`

	// Reason is the human-readable explanation.
	Reason string `json:"reason"`

	// Source is the liked item that produced Score.
	// Zero for popularity results.
	Source ItemID `json:"source,omitempty"`
}

// Strategy names the path that produced a response.
type Strategy string

const (
	// StrategySimilarity is the liked-item content similarity path.
	StrategySimilarity Strategy = "similarity"

	// StrategyPopularity is the fallback for users without liked items.
	StrategyPopularity Strategy = "popularity"

	// StrategyNone marks an empty response for a catalog too small to rank.
	StrategyNone Strategy = "none"
)

// Request contains parameters for a recommendation request.
type Request struct {
	// UserID is the user to generate recommendations for.
	UserID UserID `json:"user_id"`

	// K is the maximum number of recommendations to return. Values above
	// Limits.MaxK are clamped.
	K int `json:"k"`

	// RequestID is an optional identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// Response contains recommendation results.
type Response struct {
	// Items are the recommendations, best first.
	Items []ScoredItem `json:"items"`

	// Strategy is the path that produced Items.
	Strategy Strategy `json:"strategy"`

	// TotalCandidates is the number of eligible items before truncation to K.
	TotalCandidates int `json:"total_candidates"`

	// Metadata describes the computation.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains details about how a response was produced.
type ResponseMetadata struct {
	RequestID   string        `json:"request_id,omitempty"`
	UserID      UserID        `json:"user_id"`
	K           int           `json:"k"` // applied K, after clamping
	CatalogSize int           `json:"catalog_size"`
	LikedCount  int           `json:"liked_count"`
	RatedCount  int           `json:"rated_count"`
	Vocabulary  int           `json:"vocabulary"`
	Latency     time.Duration `json:"latency_ns"`
	GeneratedAt time.Time     `json:"generated_at"`
}
