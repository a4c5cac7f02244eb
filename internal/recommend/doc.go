// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

// Package recommend implements the content-based comic recommendation engine.
//
// # Architecture
//
// A request flows through two stages:
//
//   - Feature building: each comic becomes one text document made of its
//     description, its tags (characters) and its category (genre).
//   - Similarity ranking: the corpus is vectorized with TF-IDF, a cosine
//     similarity matrix is computed, and unrated comics are scored by their
//     best similarity to any comic the user liked.
//
// Users without any liked comic receive a popularity ordering instead.
//
// # Determinism
//
// The engine holds no mutable state between requests. The vectorizer is
// refit from the current catalog on every call and all orderings break ties
// on corpus position or item identifier, so identical snapshots always
// produce identical responses.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), store,
//	    recommend.NewTFIDF(), recommend.CosineMatrix, logger)
//	if err != nil {
//	    return err
//	}
//
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    UserID: userID,
//	    K:      5,
//	})
//
// # Thread Safety
//
// Engine is safe for concurrent use. Each call builds its own corpus,
// vectors and similarity matrix.
//
// # Dependencies
//
// This package has no dependencies on other internal packages. The Store
// interface is implemented by the database layer.
package recommend
