package services

import (
	"regexp"
	"strings"

	"mercari-scraper/models"
	"mercari-scraper/utils"
)

// SeriesMatchMode controls how numbered series are matched against titles.
type SeriesMatchMode string

const (
	// SeriesStrict requires the title to carry a series number equal to
	// the target's. Titles without any series number are rejected, which
	// stops "Living Series" listings from matching "Series 1".
	SeriesStrict SeriesMatchMode = "strict"
	// SeriesFlexible also accepts titles whose normalized text contains
	// the normalized series name even without a number token.
	SeriesFlexible SeriesMatchMode = "flexible"
)

// FilterConfig parameterizes the relevance filter per brand. The brands
// differ in which merchandise counts as off-type and how strictly series
// must match, so the knobs live here instead of per-brand code.
type FilterConfig struct {
	BrandTokens          []string
	BundleKeywords       []string
	ExcludedProductTypes []string
	SeriesMatchMode      SeriesMatchMode
	// ItemMatchThreshold is the minimum fraction of significant item-name
	// tokens that must appear in the title when the name is long enough
	// to tolerate partial phrasing drift.
	ItemMatchThreshold float64
	// ShortNameTokenLimit is the token count at or below which the full
	// name must be present (short names are too ambiguous for ratios).
	ShortNameTokenLimit int
}

// DefaultBundleKeywords are the multi-unit markers shared by every brand.
var DefaultBundleKeywords = []string{
	"lot", "bundle", "set of", "bulk", "collection", "full set", "complete set",
}

// DefaultExcludedProductTypes are the non-figure merchandise words shared
// by every brand.
var DefaultExcludedProductTypes = []string{
	"plush", "keychain", "strap", "magnet", "sticker", "pin",
	"card", "poster", "shirt", "hoodie",
}

// BrandConfigFor returns the filter preset for a known brand key, or a
// reasonable default built from the brand name itself.
func BrandConfigFor(brand string) FilterConfig {
	switch brand {
	case "sonny-angel":
		return FilterConfig{
			BrandTokens:    []string{"sonny", "angel"},
			BundleKeywords: DefaultBundleKeywords,
			ExcludedProductTypes: append([]string{"bag", "case", "charm"},
				DefaultExcludedProductTypes...),
			SeriesMatchMode:     SeriesFlexible,
			ItemMatchThreshold:  0.6,
			ShortNameTokenLimit: 2,
		}
	case "smiski":
		return FilterConfig{
			BrandTokens:    []string{"smiski"},
			BundleKeywords: DefaultBundleKeywords,
			ExcludedProductTypes: append([]string{"toothbrush"},
				DefaultExcludedProductTypes...),
			SeriesMatchMode:     SeriesStrict,
			ItemMatchThreshold:  1.0,
			ShortNameTokenLimit: 2,
		}
	case "nyota":
		return FilterConfig{
			BrandTokens: []string{"nyota"},
			BundleKeywords: append([]string{"both", "pair", "multiple"},
				DefaultBundleKeywords...),
			ExcludedProductTypes: DefaultExcludedProductTypes,
			SeriesMatchMode:      SeriesFlexible,
			ItemMatchThreshold:   1.0,
			ShortNameTokenLimit:  2,
		}
	default:
		return FilterConfig{
			BrandTokens:          strings.Fields(strings.ToLower(brand)),
			BundleKeywords:       DefaultBundleKeywords,
			ExcludedProductTypes: DefaultExcludedProductTypes,
			SeriesMatchMode:      SeriesStrict,
			ItemMatchThreshold:   0.6,
			ShortNameTokenLimit:  2,
		}
	}
}

var (
	// quantityRegexp matches explicit unit counts like "3 pcs" or "2 pack"
	quantityRegexp = regexp.MustCompile(`\d+\s*(pcs|pieces|pc|pack|items|figures)\b`)
	// multiplyRegexp matches patterns like "2x3"
	multiplyRegexp = regexp.MustCompile(`\d+\s*x\s*\d+`)
	// seriesNumRegexp pulls the number out of "Series 3" style names
	seriesNumRegexp = regexp.MustCompile(`(?i)series\s*(\d+)`)
)

var choiceWords = []string{"pick", "choose", "confirmed", "select", "choice"}

// RelevanceFilter classifies listings as plausibly denoting one exact
// collectible item, rejecting bundles, counterfeits, wrong merchandise
// and mismatched series.
type RelevanceFilter struct {
	cfg    FilterConfig
	logger *utils.Logger
}

// NewRelevanceFilter creates a RelevanceFilter for one brand configuration.
func NewRelevanceFilter(cfg FilterConfig, logger *utils.Logger) *RelevanceFilter {
	if cfg.ItemMatchThreshold <= 0 {
		cfg.ItemMatchThreshold = 0.6
	}
	if cfg.ShortNameTokenLimit <= 0 {
		cfg.ShortNameTokenLimit = 2
	}
	if cfg.SeriesMatchMode == "" {
		cfg.SeriesMatchMode = SeriesStrict
	}
	if len(cfg.BundleKeywords) == 0 {
		cfg.BundleKeywords = DefaultBundleKeywords
	}
	return &RelevanceFilter{cfg: cfg, logger: logger}
}

// Filter returns the order-preserving subsequence of listings relevant to
// the target item. It is pure and never errors; an empty result just means
// nothing matched.
func (f *RelevanceFilter) Filter(listings []*models.ListingRecord, target models.ItemDescriptor) []*models.ListingRecord {
	var relevant []*models.ListingRecord
	for _, l := range listings {
		if f.matches(l, target) {
			relevant = append(relevant, l)
		}
	}
	return relevant
}

// matches applies the rejection rules in order, short-circuiting on the
// first that fires. Later rules assume brand presence, so the order is
// part of the contract.
func (f *RelevanceFilter) matches(l *models.ListingRecord, target models.ItemDescriptor) bool {
	title := strings.ToLower(l.Title)

	// 1. Brand tokens must all be present.
	brandTokens := target.BrandTokens
	if len(brandTokens) == 0 {
		brandTokens = f.cfg.BrandTokens
	}
	for _, tok := range brandTokens {
		if !strings.Contains(title, tok) {
			return false
		}
	}

	// 2. Bundles and lots.
	if f.isBundle(title) {
		return false
	}

	// 3. Counterfeits.
	for _, marker := range []string{"not authentic", "not original", "fake", "replica", "dupe"} {
		if strings.Contains(title, marker) {
			return false
		}
	}

	// 4. Wrong product types.
	for _, pt := range f.cfg.ExcludedProductTypes {
		if strings.Contains(title, pt) {
			return false
		}
	}

	// 5. Series.
	if !f.seriesMatches(title, target.SeriesName) {
		return false
	}

	// 6. Item name.
	return f.itemNameMatches(title, target.Name)
}

func (f *RelevanceFilter) isBundle(title string) bool {
	titleTokens := tokenSet(Normalize(title))
	for _, kw := range f.cfg.BundleKeywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(title, kw) {
				return true
			}
		} else if _, ok := titleTokens[kw]; ok {
			// single keywords match whole words only, so "lot" does not
			// fire on "pilot"
			return true
		}
	}

	if quantityRegexp.MatchString(title) || multiplyRegexp.MatchString(title) {
		return true
	}

	// Two or more slash-separated alternatives is a multi-item listing.
	if strings.Count(title, "/") >= 2 {
		return true
	}

	// Choice language plus a slash or "or" means the buyer picks one of
	// several, which is not a single-item price signal.
	for _, w := range choiceWords {
		if strings.Contains(title, w) {
			if strings.Contains(title, "/") || strings.Contains(title, " or ") {
				return true
			}
		}
	}

	return false
}

// seriesMatches checks the listing against the target series. Numbered
// series compare by number; named series fall back to word overlap on the
// normalized series name.
func (f *RelevanceFilter) seriesMatches(title, seriesName string) bool {
	if seriesName == "" {
		return true
	}

	if m := seriesNumRegexp.FindStringSubmatch(seriesName); m != nil {
		targetNum := m[1]
		if tm := seriesNumRegexp.FindStringSubmatch(title); tm != nil {
			return tm[1] == targetNum
		}
		if f.cfg.SeriesMatchMode == SeriesFlexible {
			// No number in the title; accept a plain-text series mention
			// or a bare occurrence of the number.
			normSeries := Normalize(seriesName)
			if normSeries != "" && strings.Contains(Normalize(title), normSeries) {
				return true
			}
			return strings.Contains(title, targetNum)
		}
		return false
	}

	// Named series: at least one significant series word must appear.
	words := significantTokens(Normalize(seriesName), 3)
	if len(words) == 0 {
		return true
	}
	normTitle := Normalize(title)
	titleTokens := tokenSet(normTitle)
	for _, w := range words {
		if _, ok := titleTokens[w]; ok {
			return true
		}
	}
	return false
}

// itemNameMatches requires full token containment for short names and a
// configurable match ratio for longer ones. Short names risk false
// positives from common words, so they demand full confirmation; long
// names tolerate sellers dropping minor words.
func (f *RelevanceFilter) itemNameMatches(title, itemName string) bool {
	itemTokens := significantTokens(Normalize(itemName), 2)
	if len(itemTokens) == 0 {
		return false
	}

	titleTokens := tokenSet(Normalize(title))

	if len(itemTokens) <= f.cfg.ShortNameTokenLimit {
		for _, tok := range itemTokens {
			if _, ok := titleTokens[tok]; !ok {
				return false
			}
		}
		return true
	}

	matched := 0
	for _, tok := range itemTokens {
		if _, ok := titleTokens[tok]; ok {
			matched++
		}
	}
	return float64(matched)/float64(len(itemTokens)) >= f.cfg.ItemMatchThreshold
}
