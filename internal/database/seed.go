// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package database

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tomtom215/comicrec/internal/covers"
	"github.com/tomtom215/comicrec/internal/logging"
	"github.com/tomtom215/comicrec/internal/models"
)

//go:embed seed_catalog.yaml
var seedCatalogYAML []byte

type seedCatalog struct {
	Comics []struct {
		ExternalID  string   `yaml:"external_id"`
		Title       string   `yaml:"title"`
		Description string   `yaml:"description"`
		Genre       string   `yaml:"genre"`
		Characters  []string `yaml:"characters"`
		ImageURL    string   `yaml:"image_url"`
	} `yaml:"comics"`
}

// LoadSeedCatalog parses the embedded sample catalog.
func LoadSeedCatalog() ([]*models.Comic, error) {
	var cat seedCatalog
	if err := yaml.Unmarshal(seedCatalogYAML, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse seed catalog: %w", err)
	}

	comics := make([]*models.Comic, 0, len(cat.Comics))
	for i, c := range cat.Comics {
		if c.ExternalID == "" || c.Title == "" {
			return nil, fmt.Errorf("seed catalog entry %d: external_id and title are required", i)
		}
		comics = append(comics, &models.Comic{
			Title:       c.Title,
			Description: c.Description,
			Characters:  c.Characters,
			Genre:       c.Genre,
			ImageURL:    c.ImageURL,
			ExternalID:  c.ExternalID,
		})
	}
	return comics, nil
}

func fillCovers(comics []*models.Comic, r *covers.Resolver) {
	for _, c := range comics {
		if c.ImageURL == "" {
			c.ImageURL = r.Assign(c.Title, c.Characters, c.Genre).URL
		}
	}
}

// SeedCatalog upserts the embedded sample catalog by external ID and
// returns the number of comics created. Running it again updates the
// existing rows and creates nothing. Entries without an image_url get one
// from the cover resolver.
func (db *DB) SeedCatalog(ctx context.Context) (int, error) {
	comics, err := LoadSeedCatalog()
	if err != nil {
		return 0, err
	}

	fillCovers(comics, covers.Default())

	created := 0
	for _, c := range comics {
		isNew, err := db.UpsertComicByExternalID(ctx, c)
		if err != nil {
			return created, fmt.Errorf("failed to seed %q: %w", c.ExternalID, err)
		}
		if isNew {
			created++
		}
	}

	logging.Info().Int("created", created).Int("total", len(comics)).Msg("Seed catalog applied")
	return created, nil
}
