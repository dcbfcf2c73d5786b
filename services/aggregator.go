package services

import (
	"time"

	"mercari-scraper/models"
	"mercari-scraper/utils"
)

// AggregatorConfig tunes the reduction from listings to a price summary.
type AggregatorConfig struct {
	// MinListings is the minimum de-duplicated listing count required to
	// attempt a summary at all.
	MinListings int
	// MedianRatio is the multiple of the median above which a price is
	// treated as a missed bundle. Zero disables the pass.
	MedianRatio float64
	// MinPrice/MaxPrice bound plausible single-figure prices. Prices
	// outside the range are excluded during extraction, like any other
	// malformed record. Zero MaxPrice means unbounded.
	MinPrice float64
	MaxPrice float64
}

// DefaultAggregatorConfig mirrors the bounds the scrapers have always
// used: a $5 floor and a deliberately high ceiling, leaving extremes to
// outlier removal.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		MinListings: 1,
		MedianRatio: 3.0,
		MinPrice:    5,
		MaxPrice:    10000,
	}
}

// Aggregator reduces relevant listings to a PriceSummary.
type Aggregator struct {
	cfg    AggregatorConfig
	logger *utils.Logger
}

// NewAggregator creates an Aggregator with the given configuration.
func NewAggregator(cfg AggregatorConfig, logger *utils.Logger) *Aggregator {
	if cfg.MinListings < 1 {
		cfg.MinListings = 1
	}
	return &Aggregator{cfg: cfg, logger: logger}
}

// Aggregate computes the price summary for one item. A nil return means
// "insufficient data" — too few listings, or nothing survived filtering —
// and is an expected outcome, not an error.
func (a *Aggregator) Aggregate(listings []*models.ListingRecord, target models.ItemDescriptor) *models.PriceSummary {
	unique := dedupeByURL(listings)
	if len(unique) < a.cfg.MinListings {
		return nil
	}

	rawPrices := a.extractPrices(unique)
	if len(rawPrices) < a.cfg.MinListings {
		return nil
	}

	filtered := RemoveOutliers(rawPrices)
	filtered = CapAtMedianRatio(filtered, a.cfg.MedianRatio)
	if len(filtered) == 0 {
		return nil
	}

	if removed := len(rawPrices) - len(filtered); removed > 0 {
		a.logger.Debug("[aggregate] %s: removed %d outlier price(s) of %d",
			target.Name, removed, len(rawPrices))
	}

	var sum float64
	min, max := filtered[0], filtered[0]
	for _, p := range filtered {
		sum += p
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}

	return &models.PriceSummary{
		AveragePrice:    round2(sum / float64(len(filtered))),
		MinPrice:        min,
		MaxPrice:        max,
		ListingCount:    len(filtered),
		RawListingCount: len(rawPrices),
		SourceListings:  survivingListings(unique, filtered),
		ComputedAt:      time.Now(),
	}
}

// extractPrices pulls the valid prices out of the de-duplicated listings.
// Non-positive or out-of-range prices are dropped here rather than
// failing the pipeline.
func (a *Aggregator) extractPrices(listings []*models.ListingRecord) []float64 {
	prices := make([]float64, 0, len(listings))
	for _, l := range listings {
		if l.Price <= 0 || l.Price < a.cfg.MinPrice {
			continue
		}
		if a.cfg.MaxPrice > 0 && l.Price > a.cfg.MaxPrice {
			continue
		}
		prices = append(prices, l.Price)
	}
	return prices
}

// dedupeByURL keeps the first occurrence of each URL, preserving order.
func dedupeByURL(listings []*models.ListingRecord) []*models.ListingRecord {
	seen := make(map[string]struct{}, len(listings))
	unique := make([]*models.ListingRecord, 0, len(listings))
	for _, l := range listings {
		if _, dup := seen[l.URL]; dup {
			continue
		}
		seen[l.URL] = struct{}{}
		unique = append(unique, l)
	}
	return unique
}

// survivingListings selects the listings whose price made it through
// filtering. Equal prices are matched as a multiset so two listings at
// the same price both survive only if both prices did.
func survivingListings(listings []*models.ListingRecord, filtered []float64) []*models.ListingRecord {
	remaining := make(map[float64]int, len(filtered))
	for _, p := range filtered {
		remaining[p]++
	}

	var out []*models.ListingRecord
	for _, l := range listings {
		if remaining[l.Price] > 0 {
			remaining[l.Price]--
			out = append(out, l)
		}
	}
	return out
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
