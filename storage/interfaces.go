package storage

import "mercari-scraper/models"

// SummaryRow is one persisted aggregation result: the summary plus the
// identifiers of the run and item that produced it.
type SummaryRow struct {
	RunID      string
	Brand      string
	SeriesID   string
	SeriesName string
	ItemID     string
	ItemName   string
	Rarity     models.Rarity
	Summary    *models.PriceSummary
}

// SummaryWriter is the interface any price-summary backend must satisfy.
type SummaryWriter interface {
	Write(summaries []SummaryRow) error
	Close() error
}

// RawListingWriter is the interface for persisting the raw listings that
// fed a summary, as an audit trail.
type RawListingWriter interface {
	WriteRaw(query string, listings []*models.ListingRecord) error
	Close() error
}
