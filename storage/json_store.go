package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"mercari-scraper/models"
)

// JSONPriceStore is the flat scraped-prices file the checklist app reads:
// a mapping from item ID to its latest price record. Existing entries for
// other brands are preserved across runs, and the file is rewritten after
// every update so a killed batch loses at most the in-flight item.
type JSONPriceStore struct {
	mu     sync.Mutex
	path   string
	prices map[string]models.PriceRecord
}

// OpenJSONPriceStore loads the store at path, creating an empty one if
// the file does not exist yet.
func OpenJSONPriceStore(path string) (*JSONPriceStore, error) {
	store := &JSONPriceStore{
		path:   path,
		prices: make(map[string]models.PriceRecord),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("price store: read %q: %w", path, err)
	}

	if err := json.Unmarshal(data, &store.prices); err != nil {
		return nil, fmt.Errorf("price store: parse %q: %w", path, err)
	}
	return store, nil
}

// Update records a summary for one item and saves the whole store. The
// average is wrapped as a single-element values array, which is the shape
// the checklist app expects.
func (s *JSONPriceStore) Update(itemID string, summary *models.PriceSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prices[itemID] = models.PriceRecord{
		Values:       []float64{summary.AveragePrice},
		ListingCount: summary.ListingCount,
		Currency:     "USD",
		LastUpdated:  summary.ComputedAt,
	}
	return s.save()
}

// Get returns the stored record for an item, if any.
func (s *JSONPriceStore) Get(itemID string) (models.PriceRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.prices[itemID]
	return rec, ok
}

// Len returns the number of stored records.
func (s *JSONPriceStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prices)
}

// save writes to a temp file first so a crash mid-write never leaves a
// truncated store behind.
func (s *JSONPriceStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("price store: create dir: %w", err)
	}

	data, err := json.MarshalIndent(s.prices, "", "  ")
	if err != nil {
		return fmt.Errorf("price store: marshal: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("price store: write %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("price store: rename: %w", err)
	}
	return nil
}
