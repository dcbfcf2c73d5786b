package services

import (
	"testing"

	"mercari-scraper/models"
	"mercari-scraper/utils"
)

func sonnyFilter() *RelevanceFilter {
	return NewRelevanceFilter(BrandConfigFor("sonny-angel"), utils.NewLogger())
}

func smiskiFilter() *RelevanceFilter {
	return NewRelevanceFilter(BrandConfigFor("smiski"), utils.NewLogger())
}

func listing(title string, price float64, url string) *models.ListingRecord {
	return &models.ListingRecord{Title: title, Price: price, URL: url, Status: models.StatusActive}
}

func sonnyTarget(name, series string) models.ItemDescriptor {
	return models.ItemDescriptor{
		Name:        name,
		SeriesName:  series,
		BrandTokens: []string{"sonny", "angel"},
	}
}

func TestFilterBrandTokenNecessity(t *testing.T) {
	f := sonnyFilter()
	listings := []*models.ListingRecord{
		listing("Vintage Figure $20", 20, "a"),
		listing("Sonny figure only", 22, "b"),
		listing("Sonny Angel Rabbit", 25, "c"),
	}

	got := f.Filter(listings, sonnyTarget("Rabbit", ""))
	if len(got) != 1 || got[0].URL != "c" {
		t.Fatalf("expected only the in-brand listing, got %d", len(got))
	}
}

func TestFilterIsOrderPreservingSubsequence(t *testing.T) {
	f := sonnyFilter()
	listings := []*models.ListingRecord{
		listing("Sonny Angel Rabbit white", 25, "a"),
		listing("unrelated plushie", 10, "b"),
		listing("Sonny Angel Rabbit brown", 28, "c"),
		listing("Sonny Angel Rabbit lot of 5", 90, "d"),
		listing("Sonny Angel Rabbit 2024", 30, "e"),
	}

	got := f.Filter(listings, sonnyTarget("Rabbit", ""))
	wantURLs := []string{"a", "c", "e"}
	if len(got) != len(wantURLs) {
		t.Fatalf("len: got %d, want %d", len(got), len(wantURLs))
	}
	for i, url := range wantURLs {
		if got[i].URL != url {
			t.Errorf("position %d: got %q, want %q", i, got[i].URL, url)
		}
	}
	// Output elements are the input records themselves, not copies.
	if got[0] != listings[0] || got[1] != listings[2] || got[2] != listings[4] {
		t.Error("filter output should reference the input records")
	}
}

func TestFilterBundleDetection(t *testing.T) {
	f := sonnyFilter()
	target := sonnyTarget("Rabbit", "")

	rejected := []string{
		"Sonny Angel Rabbit Bundle",
		"Sonny Angel lot Rabbit",
		"Sonny Angel set of 3 Rabbit",
		"Sonny Angel Rabbit bulk sale",
		"Sonny Angel full set Rabbit",
		"Sonny Angel Rabbit 3 pcs",
		"Sonny Angel Rabbit 2 pack",
		"Sonny Angel Rabbit 2x3",
		"Sonny Angel Rabbit/Bear/Penguin",
		"Sonny Angel pick your Rabbit / Bear",
		"Sonny Angel Rabbit confirmed or random",
	}
	for _, title := range rejected {
		if got := f.Filter([]*models.ListingRecord{listing(title, 25, "x")}, target); len(got) != 0 {
			t.Errorf("bundle title %q should be rejected", title)
		}
	}

	// "lot" must match whole words only.
	accepted := []string{
		"Sonny Angel Pilot Rabbit",
		"Sonny Angel Rabbit 2024",
	}
	for _, title := range accepted {
		if got := f.Filter([]*models.ListingRecord{listing(title, 25, "x")}, target); len(got) != 1 {
			t.Errorf("title %q should be accepted", title)
		}
	}
}

func TestFilterAuthenticityAndProductType(t *testing.T) {
	f := sonnyFilter()
	target := sonnyTarget("Rabbit", "")

	rejected := []string{
		"Sonny Angel Rabbit replica",
		"Sonny Angel Rabbit fake",
		"Sonny Angel Rabbit not authentic",
		"Sonny Angel Rabbit dupe",
		"Sonny Angel Rabbit keychain",
		"Sonny Angel Rabbit plush",
		"Sonny Angel Rabbit sticker sheet",
	}
	for _, title := range rejected {
		if got := f.Filter([]*models.ListingRecord{listing(title, 25, "x")}, target); len(got) != 0 {
			t.Errorf("title %q should be rejected", title)
		}
	}
}

func TestFilterShortNameTokenBoundary(t *testing.T) {
	f := sonnyFilter()
	target := sonnyTarget("Cat", "")

	// "Cat" is a substring of "Category" but not a whole token.
	got := f.Filter([]*models.ListingRecord{listing("Sonny Angel Category Box", 25, "a")}, target)
	if len(got) != 0 {
		t.Error("partial-token match should be rejected")
	}

	got = f.Filter([]*models.ListingRecord{listing("Sonny Angel Cat Mini Figure", 25, "b")}, target)
	if len(got) != 1 {
		t.Error("whole-token match should be accepted")
	}
}

func TestFilterShortNameRequiresAllTokens(t *testing.T) {
	f := sonnyFilter()
	target := sonnyTarget("Unknown Road", "")

	got := f.Filter([]*models.ListingRecord{listing("Sonny Angel Road Trip", 25, "a")}, target)
	if len(got) != 0 {
		t.Error("short names require every token, one of two is not enough")
	}
}

func TestFilterLongNameMatchRatio(t *testing.T) {
	f := sonnyFilter()
	target := sonnyTarget("Red Riding Hood Forest Walker", "")

	// 3 of 5 significant tokens = 0.6, right at the default threshold.
	got := f.Filter([]*models.ListingRecord{listing("Sonny Angel Red Riding Hood", 25, "a")}, target)
	if len(got) != 1 {
		t.Error("60% token match should pass the default threshold")
	}

	// 2 of 5 = 0.4, below threshold.
	got = f.Filter([]*models.ListingRecord{listing("Sonny Angel Red Riding", 25, "b")}, target)
	if len(got) != 0 {
		t.Error("40% token match should fail the default threshold")
	}
}

func TestFilterNumberedSeriesStrict(t *testing.T) {
	f := smiskiFilter()
	target := models.ItemDescriptor{
		Name:        "Hugging",
		SeriesName:  "Series 1",
		BrandTokens: []string{"smiski"},
	}

	tests := []struct {
		title string
		want  int
	}{
		{"Smiski Series 1 Hugging", 1},
		{"Smiski Series 2 Hugging", 0},
		// No series number at all: strict mode rejects, so "Living
		// Series" listings never match "Series 1".
		{"Smiski Living Hugging", 0},
	}
	for _, tt := range tests {
		got := f.Filter([]*models.ListingRecord{listing(tt.title, 12, "x")}, target)
		if len(got) != tt.want {
			t.Errorf("strict series, title %q: got %d, want %d", tt.title, len(got), tt.want)
		}
	}
}

func TestFilterNumberedSeriesFlexible(t *testing.T) {
	f := sonnyFilter()
	target := sonnyTarget("Rabbit", "Animal Series 3")

	tests := []struct {
		title string
		want  int
	}{
		{"Sonny Angel Animal Series 3 Rabbit", 1},
		{"Sonny Angel Animal Series 4 Rabbit", 0},
		// Flexible mode accepts a bare number when "series" is dropped.
		{"Sonny Angel Animal 3 Rabbit", 1},
		{"Sonny Angel Rabbit", 0},
	}
	for _, tt := range tests {
		got := f.Filter([]*models.ListingRecord{listing(tt.title, 25, "x")}, target)
		if len(got) != tt.want {
			t.Errorf("flexible series, title %q: got %d, want %d", tt.title, len(got), tt.want)
		}
	}
}

func TestFilterNamedSeriesWordOverlap(t *testing.T) {
	f := smiskiFilter()
	target := models.ItemDescriptor{
		Name:        "Sitting",
		SeriesName:  "Work",
		BrandTokens: []string{"smiski"},
	}

	got := f.Filter([]*models.ListingRecord{listing("Smiski Work Sitting", 12, "a")}, target)
	if len(got) != 1 {
		t.Error("series word present in title should match")
	}

	got = f.Filter([]*models.ListingRecord{listing("Smiski Dressing Sitting", 12, "b")}, target)
	if len(got) != 0 {
		t.Error("missing series word should reject")
	}
}

func TestBrandConfigForUnknownBrand(t *testing.T) {
	cfg := BrandConfigFor("mystery brand")
	if len(cfg.BrandTokens) != 2 {
		t.Fatalf("expected brand tokens derived from name, got %v", cfg.BrandTokens)
	}
	if cfg.SeriesMatchMode != SeriesStrict {
		t.Errorf("unknown brands default to strict series matching")
	}
}
