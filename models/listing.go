package models

import "time"

// ListingStatus tells whether a marketplace listing is still for sale.
// Both states are accepted as valid price signals.
type ListingStatus string

const (
	StatusActive ListingStatus = "active"
	StatusSold   ListingStatus = "sold"
)

// Rarity is the catalog rarity tier of a collectible item.
type Rarity string

const (
	RarityRegular Rarity = "Regular"
	RaritySecret  Rarity = "Secret"
	RarityLimited Rarity = "Limited"
)

// ListingRecord is one observed marketplace listing. Records are immutable
// once created; the pipeline only filters and selects, never mutates.
// URL is the identity key used for de-duplication.
type ListingRecord struct {
	Title  string
	Price  float64
	URL    string
	Status ListingStatus
}

// ItemDescriptor describes the exact collectible being priced.
// BrandTokens is the minimal word set that must appear in any listing
// title for it to be considered in-brand at all.
type ItemDescriptor struct {
	Name        string
	SeriesName  string
	Rarity      Rarity
	BrandTokens []string
}

// PriceSummary is the aggregation result for one ItemDescriptor.
// ListingCount counts prices after outlier removal, RawListingCount before.
type PriceSummary struct {
	AveragePrice    float64
	MinPrice        float64
	MaxPrice        float64
	ListingCount    int
	RawListingCount int
	SourceListings  []*ListingRecord
	ComputedAt      time.Time
}
