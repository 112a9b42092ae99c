// Package catalog loads the risk-type catalog from seed files.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/osvik/riskwatch/internal/core/domain"
	"github.com/osvik/riskwatch/internal/core/ports"
	"gopkg.in/yaml.v3"
)

// SeedLoader upserts risk types from a YAML file into the store.
type SeedLoader struct {
	store ports.Storage
}

type seedEntry struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	HelpURL     string `yaml:"help_url"`
}

// NewSeedLoader creates a new seed loader.
func NewSeedLoader(store ports.Storage) *SeedLoader {
	return &SeedLoader{store: store}
}

// LoadFromFile reads risk types from a YAML file and upserts them by
// name. Existing entries keep their id so risks referencing them stay
// valid.
func (s *SeedLoader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}

	var entries []seedEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing seed file: %w", err)
	}

	loaded := 0
	for _, e := range entries {
		if e.Name == "" {
			slog.Warn("skipping seed entry without name")
			continue
		}

		rt, err := s.store.GetRiskTypeByName(e.Name)
		if errors.Is(err, ports.ErrNotFound) {
			rt = &domain.SecurityRiskType{ID: uuid.NewString(), Name: e.Name}
		} else if err != nil {
			return fmt.Errorf("looking up type %q: %w", e.Name, err)
		}

		rt.DisplayName = e.DisplayName
		rt.Description = e.Description
		rt.HelpURL = e.HelpURL
		if err := s.store.SaveRiskType(rt); err != nil {
			return fmt.Errorf("saving type %q: %w", e.Name, err)
		}
		loaded++
	}

	slog.Info("risk type catalog seeded", "loaded", loaded)
	return nil
}
