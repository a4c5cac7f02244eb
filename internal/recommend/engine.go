// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidCount is returned for a negative result count.
	ErrInvalidCount = errors.New("recommend: result count must not be negative")

	// ErrCatalogTooLarge is returned when the catalog exceeds Limits.MaxCatalogSize.
	ErrCatalogTooLarge = errors.New("recommend: catalog exceeds configured size limit")

	// ErrSimilarityShape is returned when a SimilarityFunc returns a matrix
	// that does not match the corpus.
	ErrSimilarityShape = errors.New("recommend: similarity matrix does not match corpus")
)

// Engine produces content-based recommendations.
// It is safe for concurrent use and holds no per-request state.
type Engine struct {
	config     *Config
	logger     zerolog.Logger
	store      Store
	vectorizer Vectorizer
	similarity SimilarityFunc

	requestCount    atomic.Int64
	similarityCount atomic.Int64
	popularityCount atomic.Int64
	emptyCount      atomic.Int64
	errorCount      atomic.Int64
	requestSeq      atomic.Uint64
}

// Stats is a snapshot of engine counters.
type Stats struct {
	Requests   int64 `json:"requests"`
	Similarity int64 `json:"similarity"`
	Popularity int64 `json:"popularity"`
	Empty      int64 `json:"empty"`
	Errors     int64 `json:"errors"`
}

// NewEngine creates a new recommendation engine. A nil vectorizer or
// similarity defaults to NewTFIDF and CosineMatrix.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, store Store, vectorizer Vectorizer, similarity SimilarityFunc, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if store == nil {
		return nil, errors.New("recommend: store is required")
	}
	if vectorizer == nil {
		vectorizer = NewTFIDF()
	}
	if similarity == nil {
		similarity = CosineMatrix
	}

	return &Engine{
		config:     cfg.Clone(),
		logger:     logger.With().Str("component", "recommend").Logger(),
		store:      store,
		vectorizer: vectorizer,
		similarity: similarity,
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Stats returns the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Requests:   e.requestCount.Load(),
		Similarity: e.similarityCount.Load(),
		Popularity: e.popularityCount.Load(),
		Empty:      e.emptyCount.Load(),
		Errors:     e.errorCount.Load(),
	}
}

// Recommend returns up to req.K ranked recommendations for req.UserID.
//
// Items and the user's ratings are read once, as a snapshot, before any
// scoring. Users without a liked item get the popularity ordering. K of
// zero returns an empty response without reading the store. Store errors
// are returned unmodified.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	req, err := e.prepareRequest(req)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}
	logger := e.createRequestLogger(req)
	logger.Debug().Int("k", req.K).Msg("processing recommendation request")

	if req.K == 0 {
		e.emptyCount.Add(1)
		meta := ResponseMetadata{RequestID: req.RequestID, UserID: req.UserID}
		return e.finish(&Response{Items: []ScoredItem{}, Strategy: StrategyNone}, meta, start), nil
	}

	if e.config.Limits.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Limits.RequestTimeout)
		defer cancel()
	}

	snap, err := e.loadSnapshot(ctx, req.UserID)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	meta := ResponseMetadata{
		RequestID:   req.RequestID,
		UserID:      req.UserID,
		K:           req.K,
		CatalogSize: len(snap.items),
		RatedCount:  len(snap.ratings),
	}

	if len(snap.items) < 2 {
		logger.Debug().Int("catalog_size", len(snap.items)).Msg("catalog too small to rank")
		e.emptyCount.Add(1)
		return e.finish(&Response{Items: []ScoredItem{}, Strategy: StrategyNone}, meta, start), nil
	}

	if limit := e.config.Limits.MaxCatalogSize; limit > 0 && len(snap.items) > limit {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("%w: %d > %d", ErrCatalogTooLarge, len(snap.items), limit)
	}

	rated, liked := splitRatings(snap.ratings)
	meta.LikedCount = len(liked)

	if len(liked) == 0 {
		items, total, err := e.popular(ctx, req.K)
		if err != nil {
			e.errorCount.Add(1)
			return nil, err
		}
		e.popularityCount.Add(1)
		logger.Debug().Int("returned", len(items)).Msg("no liked items, used popularity fallback")
		return e.finish(&Response{Items: items, Strategy: StrategyPopularity, TotalCandidates: total}, meta, start), nil
	}

	items, total, vocab, err := e.similar(snap.items, liked, rated, req.K, logger)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}
	meta.Vocabulary = vocab
	e.similarityCount.Add(1)
	if len(items) == 0 {
		e.emptyCount.Add(1)
	}

	logger.Debug().
		Int("liked", len(liked)).
		Int("candidates", total).
		Int("returned", len(items)).
		Msg("similarity recommendations computed")

	return e.finish(&Response{Items: items, Strategy: StrategySimilarity, TotalCandidates: total}, meta, start), nil
}

// snapshot is the data read at the start of a request.
type snapshot struct {
	items   []Item
	ratings []Rating
}

// loadSnapshot reads items and ratings concurrently. An items error takes
// precedence; a catalog of fewer than two items masks a ratings error since
// the request cannot produce results either way.
func (e *Engine) loadSnapshot(ctx context.Context, userID UserID) (snapshot, error) {
	var (
		snap       snapshot
		itemsErr   error
		ratingsErr error
		g          errgroup.Group
	)

	g.Go(func() error {
		snap.items, itemsErr = e.store.ListItems(ctx)
		return itemsErr
	})
	g.Go(func() error {
		snap.ratings, ratingsErr = e.store.ListUserRatings(ctx, userID)
		return ratingsErr
	})
	_ = g.Wait()

	if itemsErr != nil {
		return snapshot{}, itemsErr
	}
	if len(snap.items) < 2 {
		snap.ratings = nil
		return snap, nil
	}
	if ratingsErr != nil {
		return snapshot{}, ratingsErr
	}
	return snap, nil
}

// splitRatings returns the set of rated items and the liked ratings in load order.
func splitRatings(ratings []Rating) (map[ItemID]struct{}, []Rating) {
	rated := make(map[ItemID]struct{}, len(ratings))
	liked := make([]Rating, 0, len(ratings))
	for _, r := range ratings {
		rated[r.ItemID] = struct{}{}
		if r.Liked() {
			liked = append(liked, r)
		}
	}
	return rated, liked
}

// candidate is the best score seen for one item and the liked item behind it.
type candidate struct {
	pos    Position
	score  float64
	source Position
}

// similar scores every unrated item by its highest similarity to a liked item.
func (e *Engine) similar(items []Item, liked []Rating, rated map[ItemID]struct{}, k int, logger zerolog.Logger) ([]ScoredItem, int, int, error) {
	corpus := BuildCorpus(items)
	vectors, vocab := e.vectorizer.FitTransform(corpus.Documents)
	sim := e.similarity(vectors)
	if err := checkShape(sim, corpus.Index.Len()); err != nil {
		return nil, 0, vocab, err
	}

	best := make(map[Position]*candidate)
	for _, r := range liked {
		lpos, ok := corpus.Index.Lookup(r.ItemID)
		if !ok {
			logger.Debug().Int64("item_id", int64(r.ItemID)).Msg("liked item not in catalog, skipping")
			continue
		}

		for _, c := range rankBySimilarity(sim[lpos], lpos) {
			if _, isRated := rated[corpus.Index.ID(c)]; isRated {
				continue
			}
			s := clamp01(sim[lpos][c])
			if prev, seen := best[c]; !seen || s > prev.score {
				best[c] = &candidate{pos: c, score: s, source: lpos}
			}
		}
	}

	ranked := make([]*candidate, 0, len(best))
	for _, c := range best {
		if _, isRated := rated[corpus.Index.ID(c.pos)]; isRated {
			continue
		}
		ranked = append(ranked, c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].pos < ranked[j].pos
	})

	total := len(ranked)
	if len(ranked) > k {
		ranked = ranked[:k]
	}

	out := make([]ScoredItem, len(ranked))
	for i, c := range ranked {
		source := corpus.Index.Item(c.source)
		out[i] = ScoredItem{
			Item:   corpus.Index.Item(c.pos),
			Score:  c.score,
			Reason: fmt.Sprintf(similarReasonFormat, source.Title, c.score),
			Source: source.ID,
		}
	}
	return out, total, vocab, nil
}

// rankBySimilarity returns every position except self ordered by similarity
// to self, descending, ties by position.
func rankBySimilarity(row []float64, self Position) []Position {
	ranked := make([]Position, 0, len(row)-1)
	for i := range row {
		if Position(i) != self {
			ranked = append(ranked, Position(i))
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return row[ranked[i]] > row[ranked[j]]
	})
	return ranked
}

func checkShape(sim [][]float64, n int) error {
	if len(sim) != n {
		return fmt.Errorf("%w: %d rows for %d documents", ErrSimilarityShape, len(sim), n)
	}
	for i, row := range sim {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d columns", ErrSimilarityShape, i, len(row))
		}
	}
	return nil
}

// prepareRequest assigns a request ID and clamps K to Limits.MaxK.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) (Request, error) {
	if req.K < 0 {
		return req, ErrInvalidCount
	}
	if req.RequestID == "" {
		req.RequestID = e.generateRequestID()
	}
	if req.K > e.config.Limits.MaxK {
		req.K = e.config.Limits.MaxK
	}
	return req, nil
}

// createRequestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Int64("user_id", int64(req.UserID)).
		Logger()
}

//nolint:gocritic // hugeParam: meta passed by value, copied into resp
func (e *Engine) finish(resp *Response, meta ResponseMetadata, start time.Time) *Response {
	meta.Latency = time.Since(start)
	meta.GeneratedAt = time.Now().UTC()
	resp.Metadata = meta
	return resp
}

// generateRequestID generates a unique request ID for tracing.
func (e *Engine) generateRequestID() string {
	return fmt.Sprintf("rec-%d-%d", time.Now().UnixNano(), e.requestSeq.Add(1))
}
