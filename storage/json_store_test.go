package storage

import (
	"path/filepath"
	"testing"
	"time"

	"mercari-scraper/models"
)

func testSummary(avg float64, count int) *models.PriceSummary {
	return &models.PriceSummary{
		AveragePrice: avg,
		MinPrice:     avg - 2,
		MaxPrice:     avg + 2,
		ListingCount: count,
		ComputedAt:   time.Now(),
	}
}

func TestJSONPriceStoreMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraped-prices.json")
	store, err := OpenJSONPriceStore(path)
	if err != nil {
		t.Fatalf("open on missing file: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("fresh store should be empty, has %d records", store.Len())
	}
}

func TestJSONPriceStoreRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraped-prices.json")

	store, err := OpenJSONPriceStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Update("animal3-rabbit", testSummary(26.5, 2)); err != nil {
		t.Fatalf("update: %v", err)
	}

	reopened, err := OpenJSONPriceStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	rec, ok := reopened.Get("animal3-rabbit")
	if !ok {
		t.Fatal("record missing after reopen")
	}
	if len(rec.Values) != 1 || rec.Values[0] != 26.5 {
		t.Errorf("Values: got %v, want [26.5]", rec.Values)
	}
	if rec.ListingCount != 2 {
		t.Errorf("ListingCount: got %d, want 2", rec.ListingCount)
	}
	if rec.Currency != "USD" {
		t.Errorf("Currency: got %q, want USD", rec.Currency)
	}
}

func TestJSONPriceStorePreservesOtherEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraped-prices.json")

	store, _ := OpenJSONPriceStore(path)
	if err := store.Update("smiski-work-sitting", testSummary(14, 5)); err != nil {
		t.Fatal(err)
	}

	// A later run for a different brand must not clobber earlier brands.
	second, err := OpenJSONPriceStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := second.Update("animal3-rabbit", testSummary(26.5, 2)); err != nil {
		t.Fatal(err)
	}

	final, err := OpenJSONPriceStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if final.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", final.Len())
	}
	if _, ok := final.Get("smiski-work-sitting"); !ok {
		t.Error("earlier entry was lost")
	}
}

func TestJSONPriceStoreOverwritesSameItem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraped-prices.json")

	store, _ := OpenJSONPriceStore(path)
	_ = store.Update("animal3-rabbit", testSummary(20, 3))
	if err := store.Update("animal3-rabbit", testSummary(26.5, 4)); err != nil {
		t.Fatal(err)
	}

	rec, _ := store.Get("animal3-rabbit")
	if rec.Values[0] != 26.5 || rec.ListingCount != 4 {
		t.Errorf("latest update should win, got %+v", rec)
	}
}
