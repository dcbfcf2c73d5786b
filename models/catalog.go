package models

import "time"

// Brand is the root of a catalog document: brand → series → items.
type Brand struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Series []Series `json:"series"`
}

// Series groups catalog items released together.
type Series struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Items []CatalogItem `json:"items"`
}

// CatalogItem is one collectible figure in the catalog.
type CatalogItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rarity Rarity `json:"rarity,omitempty"`
	Image  string `json:"image,omitempty"`
}

// FlatItem pairs a catalog item with its series, so a batch run can
// address the whole catalog as one index range.
type FlatItem struct {
	Series Series
	Item   CatalogItem
}

// FlatItems returns every (series, item) pair in catalog order.
func (b *Brand) FlatItems() []FlatItem {
	var flat []FlatItem
	for _, s := range b.Series {
		for _, it := range s.Items {
			flat = append(flat, FlatItem{Series: s, Item: it})
		}
	}
	return flat
}

// PriceRecord is the persisted shape in the flat price store, keyed by
// item ID. The aggregator's average is wrapped as a single-element
// Values slice by the caller before persistence.
type PriceRecord struct {
	Values       []float64 `json:"values"`
	ListingCount int       `json:"listingCount"`
	Currency     string    `json:"currency"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

// RunReport holds the end-of-batch statistics printed after a scrape run.
type RunReport struct {
	TotalItems        int
	PricedItems       int
	TotalListings     int
	AverageOfAverages float64
	CheapestItem      string
	CheapestPrice     float64
	DearestItem       string
	DearestPrice      float64
	ItemsBySeries     map[string]int
}
