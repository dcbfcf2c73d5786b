package services

import (
	"context"
	"regexp"
	"strings"

	"mercari-scraper/models"
	"mercari-scraper/utils"
)

// Searcher is the marketplace search collaborator. Implementations may
// return fewer results than exist and may be imprecise; the relevance
// filter exists to compensate. A failed search returns an error which the
// engine logs and treats as zero listings, never as a batch failure.
type Searcher interface {
	Search(ctx context.Context, query string) ([]*models.ListingRecord, error)
}

// retryThreshold is the relevant-listing count below which the engine
// falls back to a simpler brand+item search.
const retryThreshold = 5

// parenRegexp strips parenthetical notes like "(glow in the dark)" from
// names before they become search terms.
var parenRegexp = regexp.MustCompile(`\(.*?\)`)

// PriceEngine drives the full pipeline for one item: search, relevance
// filtering, and aggregation. The stages themselves are pure; the engine
// owns the search strategy and nothing else.
type PriceEngine struct {
	searcher   Searcher
	filter     *RelevanceFilter
	aggregator *Aggregator
	brandLabel string
	logger     *utils.Logger
}

// NewPriceEngine wires a searcher, filter and aggregator together.
// brandLabel is the display form of the brand used in search terms
// (e.g. "Sonny Angel").
func NewPriceEngine(searcher Searcher, filter *RelevanceFilter, aggregator *Aggregator,
	brandLabel string, logger *utils.Logger) *PriceEngine {
	return &PriceEngine{
		searcher:   searcher,
		filter:     filter,
		aggregator: aggregator,
		brandLabel: brandLabel,
		logger:     logger,
	}
}

// SearchTerm builds the marketplace query for a target: brand label plus
// cleaned series and item name, with a "Secret" suffix for secret-rarity
// items since sellers tag those explicitly.
func (e *PriceEngine) SearchTerm(target models.ItemDescriptor) string {
	series := strings.TrimSpace(parenRegexp.ReplaceAllString(target.SeriesName, ""))
	item := strings.TrimSpace(parenRegexp.ReplaceAllString(target.Name, ""))

	term := strings.TrimSpace(e.brandLabel + " " + series + " " + item)
	return e.withSecretSuffix(term, target)
}

// simpleSearchTerm drops the series, for the fallback search.
func (e *PriceEngine) simpleSearchTerm(target models.ItemDescriptor) string {
	item := strings.TrimSpace(parenRegexp.ReplaceAllString(target.Name, ""))
	return e.withSecretSuffix(e.brandLabel+" "+item, target)
}

func (e *PriceEngine) withSecretSuffix(term string, target models.ItemDescriptor) string {
	if target.Rarity == models.RaritySecret && !strings.Contains(strings.ToLower(term), "secret") {
		term += " Secret"
	}
	return term
}

// PriceItem runs the two-strategy search and aggregates the combined
// relevant listings. A nil summary means the item could not be priced,
// which callers must treat as "no price yet", not a failure.
func (e *PriceEngine) PriceItem(ctx context.Context, target models.ItemDescriptor) *models.PriceSummary {
	seen := utils.NewURLSet()
	var relevant []*models.ListingRecord

	term := e.SearchTerm(target)
	relevant = e.appendRelevant(ctx, relevant, seen, term, target)

	// Sellers often omit the series name, so a thin result set gets a
	// second, broader pass.
	if len(relevant) < retryThreshold {
		simple := e.simpleSearchTerm(target)
		if simple != term {
			e.logger.Debug("[engine] only %d relevant listing(s), retrying with %q",
				len(relevant), simple)
			relevant = e.appendRelevant(ctx, relevant, seen, simple, target)
		}
	}

	e.logger.Info("[engine] %s: %d relevant listing(s) combined", target.Name, len(relevant))
	return e.aggregator.Aggregate(relevant, target)
}

// appendRelevant searches one term, filters the results, and merges the
// survivors into acc, skipping URLs already collected by an earlier pass.
func (e *PriceEngine) appendRelevant(ctx context.Context, acc []*models.ListingRecord,
	seen *utils.URLSet, term string, target models.ItemDescriptor) []*models.ListingRecord {

	listings, err := e.searcher.Search(ctx, term)
	if err != nil {
		e.logger.Warn("[engine] search %q failed: %v — treating as zero listings", term, err)
		return acc
	}

	filtered := e.filter.Filter(listings, target)
	e.logger.Debug("[engine] search %q: %d listing(s), %d relevant", term, len(listings), len(filtered))

	for _, l := range filtered {
		if seen.Add(l.URL) {
			acc = append(acc, l)
		}
	}
	return acc
}
