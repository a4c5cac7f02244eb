// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package recommend

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuildDocument(t *testing.T) {
	t.Parallel()

	// Both separators are always written, so missing fields leave runs of
	// spaces. This is intended: tokenization treats them as one break.
	tests := []struct {
		name string
		item Item
		want string
	}{
		{
			name: "all fields",
			item: Item{Description: "Blind lawyer", Tags: []string{"Matt Murdock", "Elektra"}, Category: "Superhero"},
			want: "Blind lawyer Matt Murdock Elektra Superhero",
		},
		{
			name: "no tags",
			item: Item{Description: "Mutant team", Category: "Superhero"},
			want: "Mutant team  Superhero",
		},
		{
			name: "category only",
			item: Item{Category: "Horror"},
			want: "  Horror",
		},
		{
			name: "zero item",
			item: Item{},
			want: "  ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := BuildDocument(tt.item); got != tt.want {
				t.Errorf("BuildDocument() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildDocument_EmptyTagsTokenizeLikeSingleSpace(t *testing.T) {
	t.Parallel()

	doc := BuildDocument(Item{Description: "Mutant team", Category: "Superhero"})
	got, want := Tokenize(doc), Tokenize("Mutant team Superhero")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize(%q) = %v, want %v", doc, got, want)
	}
}

func TestBuildDocument_Deterministic(t *testing.T) {
	item := Item{Description: "Peter Parker", Tags: []string{"Spider-Man"}, Category: "Superhero"}
	first := BuildDocument(item)
	for i := 0; i < 10; i++ {
		if got := BuildDocument(item); got != first {
			t.Fatalf("BuildDocument() changed between calls: %q vs %q", got, first)
		}
	}
	if !strings.HasSuffix(first, "Superhero") {
		t.Errorf("category should come last, got %q", first)
	}
}

func TestBuildCorpus(t *testing.T) {
	items := []Item{
		{ID: 30, Category: "a"},
		{ID: 10, Category: "b"},
		{ID: 20, Category: "c"},
	}
	corpus := BuildCorpus(items)

	if len(corpus.Documents) != 3 || corpus.Index.Len() != 3 {
		t.Fatalf("corpus size = %d/%d, want 3", len(corpus.Documents), corpus.Index.Len())
	}
	for i, item := range items {
		pos := Position(i)
		if corpus.Index.ID(pos) != item.ID {
			t.Errorf("Index.ID(%d) = %d, want %d", pos, corpus.Index.ID(pos), item.ID)
		}
		got, ok := corpus.Index.Lookup(item.ID)
		if !ok || got != pos {
			t.Errorf("Index.Lookup(%d) = %d, %v; want %d, true", item.ID, got, ok, pos)
		}
	}
	if _, ok := corpus.Index.Lookup(99); ok {
		t.Error("Index.Lookup(99) found an item that is not in the corpus")
	}
}
