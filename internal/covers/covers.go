// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package covers

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/tomtom215/comicrec/internal/metrics"
)

//go:embed covers.yaml
var coversYAML []byte

// MinKeywordScore is the share of the title a keyword must cover for a
// partial title match.
const MinKeywordScore = 0.2

// Source names the rule that picked a cover.
type Source string

const (
	SourceTitle     Source = "title"
	SourceKeyword   Source = "keyword"
	SourceCharacter Source = "character"
	SourceGenre     Source = "genre"
	SourceDefault   Source = "default"
)

// Match is a resolved cover image.
type Match struct {
	URL    string `json:"url"`
	Source Source `json:"source"`
	// Score is the keyword coverage of the title for SourceKeyword, else 0.
	Score float64 `json:"score,omitempty"`
}

type keyword struct {
	Keyword string `yaml:"keyword"`
	Image   string `yaml:"image"`
}

type coverFile struct {
	Keywords     []keyword         `yaml:"keywords"`
	Default      string            `yaml:"default"`
	Genres       map[string]string `yaml:"genres"`
	GenreDefault string            `yaml:"genre_default"`
}

// Resolver picks cover images from local keyword and genre tables.
// It is immutable and safe for concurrent use.
type Resolver struct {
	keywords     []keyword
	exact        map[string]string
	genres       map[string]string
	fallback     string
	genreDefault string
}

// Load parses a cover table in the covers.yaml format.
func Load(data []byte) (*Resolver, error) {
	var f coverFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse cover table: %w", err)
	}
	if f.Default == "" {
		return nil, errors.New("cover table: default is required")
	}
	if f.GenreDefault == "" {
		f.GenreDefault = f.Default
	}

	r := &Resolver{
		keywords:     make([]keyword, 0, len(f.Keywords)),
		exact:        make(map[string]string, len(f.Keywords)),
		genres:       make(map[string]string, len(f.Genres)),
		fallback:     f.Default,
		genreDefault: f.GenreDefault,
	}
	for i, kw := range f.Keywords {
		k := normalize(kw.Keyword)
		if k == "" || kw.Image == "" {
			return nil, fmt.Errorf("cover table: keyword entry %d needs keyword and image", i)
		}
		r.keywords = append(r.keywords, keyword{Keyword: k, Image: kw.Image})
		if _, ok := r.exact[k]; !ok {
			r.exact[k] = kw.Image
		}
	}
	for g, img := range f.Genres {
		r.genres[normalize(g)] = img
	}
	return r, nil
}

var defaultResolver = sync.OnceValue(func() *Resolver {
	r, err := Load(coversYAML)
	if err != nil {
		panic(err)
	}
	return r
})

// Default returns the resolver for the embedded cover table.
func Default() *Resolver {
	return defaultResolver()
}

// ByTitle matches title and then characters against the keyword table.
// Rules in order: exact title, the keyword covering the largest share of
// the title (above MinKeywordScore), a character equal to, containing or
// contained in a keyword, and finally the default image.
func (r *Resolver) ByTitle(title string, characters []string) Match {
	t := normalize(title)
	if img, ok := r.exact[t]; ok {
		return Match{URL: img, Source: SourceTitle}
	}

	if n := utf8.RuneCountInString(t); n > 0 {
		var best keyword
		bestScore := 0.0
		for _, kw := range r.keywords {
			if !strings.Contains(t, kw.Keyword) {
				continue
			}
			if score := float64(utf8.RuneCountInString(kw.Keyword)) / float64(n); score > bestScore {
				best, bestScore = kw, score
			}
		}
		if bestScore > MinKeywordScore {
			return Match{URL: best.Image, Source: SourceKeyword, Score: bestScore}
		}
	}

	for _, c := range characters {
		name := normalize(c)
		if name == "" {
			continue
		}
		if img, ok := r.exact[name]; ok {
			return Match{URL: img, Source: SourceCharacter}
		}
		for _, kw := range r.keywords {
			if strings.Contains(name, kw.Keyword) || strings.Contains(kw.Keyword, name) {
				return Match{URL: kw.Image, Source: SourceCharacter}
			}
		}
	}

	return Match{URL: r.fallback, Source: SourceDefault}
}

// ByGenre returns the image for genre, or the genre default.
func (r *Resolver) ByGenre(genre string) string {
	if img, ok := r.genres[normalize(genre)]; ok {
		return img
	}
	return r.genreDefault
}

// Recommended returns the title or character match when there is one,
// otherwise the image of a known genre, otherwise the default image.
func (r *Resolver) Recommended(title string, characters []string, genre string) Match {
	m := r.ByTitle(title, characters)
	if m.Source != SourceDefault {
		return m
	}
	if img, ok := r.genres[normalize(genre)]; ok {
		return Match{URL: img, Source: SourceGenre}
	}
	return m
}

// Assign is Recommended for an image that will be stored. It counts the
// rule used in cover_resolutions_total.
func (r *Resolver) Assign(title string, characters []string, genre string) Match {
	m := r.Recommended(title, characters, genre)
	metrics.CoverResolutions.WithLabelValues(string(m.Source)).Inc()
	return m
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
