// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package recommend

import (
	"strings"
)

// BuildDocument returns the text used to compare item with other items:
// description, tags joined with single spaces, then category, always with
// both separators. An empty tag list leaves a double space, which Tokenize
// ignores.
func BuildDocument(item Item) string {
	var b strings.Builder
	b.Grow(len(item.Description) + len(item.Category) + 16*len(item.Tags))

	b.WriteString(item.Description)
	b.WriteByte(' ')
	b.WriteString(strings.Join(item.Tags, " "))
	b.WriteByte(' ')
	b.WriteString(item.Category)

	return b.String()
}

// Corpus is the per-request document set together with the mapping
// between corpus positions and item identifiers.
type Corpus struct {
	Documents []string
	Index     *PositionIndex
}

// BuildCorpus builds one document per item, in input order.
func BuildCorpus(items []Item) Corpus {
	docs := make([]string, len(items))
	for i := range items {
		docs[i] = BuildDocument(items[i])
	}
	return Corpus{
		Documents: docs,
		Index:     NewPositionIndex(items),
	}
}
