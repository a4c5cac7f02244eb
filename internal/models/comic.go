// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package models

import (
	"time"

	"github.com/tomtom215/comicrec/internal/recommend"
)

// Comic is a catalog entry.
type Comic struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Characters  []string  `json:"characters"`
	Genre       string    `json:"genre"`
	ImageURL    string    `json:"image_url,omitempty"`
	ExternalID  string    `json:"external_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Item converts the comic to the recommendation engine's item form.
// Characters become tags and the genre becomes the category.
func (c *Comic) Item() recommend.Item {
	return recommend.Item{
		ID:          recommend.ItemID(c.ID),
		Title:       c.Title,
		Description: c.Description,
		Tags:        c.Characters,
		Category:    c.Genre,
	}
}

// CreateComicRequest is the body of POST /api/v1/comics.
type CreateComicRequest struct {
	Title       string   `json:"title" validate:"required,notblank,max=300"`
	Description string   `json:"description" validate:"required,max=5000"`
	Characters  []string `json:"characters" validate:"max=100,dive,required,max=200"`
	Genre       string   `json:"genre" validate:"required,notblank,max=100"`
	ImageURL    string   `json:"image_url,omitempty" validate:"omitempty,url,max=2048"`
	ExternalID  string   `json:"external_id,omitempty" validate:"omitempty,max=200"`
}

// Comic builds an unsaved Comic from the request.
func (r *CreateComicRequest) Comic() *Comic {
	chars := r.Characters
	if chars == nil {
		chars = []string{}
	}
	return &Comic{
		Title:       r.Title,
		Description: r.Description,
		Characters:  chars,
		Genre:       r.Genre,
		ImageURL:    r.ImageURL,
		ExternalID:  r.ExternalID,
	}
}

// ListComicsRequest holds the pagination parameters of GET /api/v1/comics.
type ListComicsRequest struct {
	Skip  int `json:"skip" validate:"min=0,max=1000000"`
	Limit int `json:"limit" validate:"min=1,max=1000"`
}

// CoverOption is one candidate cover and the rule that produced it.
type CoverOption struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// CoverSuggestions are the candidates from each matching rule.
type CoverSuggestions struct {
	Current     string      `json:"current"`
	ByTitle     CoverOption `json:"by_title"`
	ByGenre     string      `json:"by_genre"`
	Recommended CoverOption `json:"recommended"`
}

// ImageSuggestions is the body of GET /api/v1/images/image-suggestions/{comic_id}.
type ImageSuggestions struct {
	ComicID     int64            `json:"comic_id"`
	ComicTitle  string           `json:"comic_title"`
	Suggestions CoverSuggestions `json:"suggestions"`
}

// ImageRefresh is the result of POST /api/v1/images/refresh-images.
type ImageRefresh struct {
	Updated int      `json:"updated"`
	Comics  []*Comic `json:"comics"`
}
