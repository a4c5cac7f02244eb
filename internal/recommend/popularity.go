// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package recommend

import (
	"context"
)

// popular returns up to k items for a user without liked items: the best
// mean-rated items first, then unrated items by identifier. Every score is 0.
func (e *Engine) popular(ctx context.Context, k int) ([]ScoredItem, int, error) {
	top, err := e.store.ListItemsByMeanRating(ctx, k)
	if err != nil {
		return nil, 0, err
	}

	out := make([]ScoredItem, 0, k)
	seen := make(map[ItemID]struct{}, k)
	add := func(items []Item) {
		for _, item := range items {
			if len(out) == k {
				return
			}
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			out = append(out, ScoredItem{Item: item, Score: 0, Reason: popularReason})
		}
	}

	add(top)
	if len(out) < k {
		rest, err := e.store.ListUnratedItems(ctx, k-len(out))
		if err != nil {
			return nil, 0, err
		}
		add(rest)
	}

	return out, len(out), nil
}
