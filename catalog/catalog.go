// Package catalog reads the brand catalog documents the checklist app
// maintains: one JSON file per brand, brand → series → items.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"mercari-scraper/models"
)

// Load parses a brand catalog file. Series and items missing an explicit
// id get one derived from their name so downstream keys are stable.
func Load(path string) (*models.Brand, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %q: %w", path, err)
	}

	var brand models.Brand
	if err := json.Unmarshal(data, &brand); err != nil {
		return nil, fmt.Errorf("catalog: parse %q: %w", path, err)
	}

	for si := range brand.Series {
		s := &brand.Series[si]
		if s.ID == "" {
			s.ID = slugify(s.Name)
		}
		for ii := range s.Items {
			it := &s.Items[ii]
			if it.ID == "" {
				it.ID = s.ID + "-" + slugify(it.Name)
			}
			if it.Rarity == "" {
				it.Rarity = models.RarityRegular
			}
		}
	}

	return &brand, nil
}

func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
