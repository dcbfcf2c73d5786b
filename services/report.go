package services

import (
	"fmt"
	"sort"
	"strings"

	"mercari-scraper/models"
	"mercari-scraper/utils"
)

// ItemResult pairs a catalog item with its (possibly absent) summary for
// reporting purposes.
type ItemResult struct {
	SeriesName string
	ItemName   string
	Summary    *models.PriceSummary
}

// ReportService computes and prints end-of-run statistics.
type ReportService struct {
	logger *utils.Logger
}

// NewReportService creates a ReportService with the given logger.
func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger}
}

// Generate reduces the per-item results of a batch run into a RunReport.
func (s *ReportService) Generate(results []ItemResult) *models.RunReport {
	report := &models.RunReport{
		ItemsBySeries: make(map[string]int),
	}

	if len(results) == 0 {
		return report
	}

	report.TotalItems = len(results)

	var sumOfAverages float64
	for _, r := range results {
		if r.Summary == nil {
			continue
		}
		report.PricedItems++
		report.TotalListings += r.Summary.ListingCount
		report.ItemsBySeries[r.SeriesName]++
		sumOfAverages += r.Summary.AveragePrice

		if report.CheapestItem == "" || r.Summary.AveragePrice < report.CheapestPrice {
			report.CheapestItem = r.ItemName
			report.CheapestPrice = r.Summary.AveragePrice
		}
		if report.DearestItem == "" || r.Summary.AveragePrice > report.DearestPrice {
			report.DearestItem = r.ItemName
			report.DearestPrice = r.Summary.AveragePrice
		}
	}

	if report.PricedItems > 0 {
		report.AverageOfAverages = round2(sumOfAverages / float64(report.PricedItems))
	}

	return report
}

// Print renders the report to stdout.
func (s *ReportService) Print(r *models.RunReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  PRICE SCRAPE RESULTS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Items processed : \033[1m%d\033[0m\n", r.TotalItems)
	fmt.Printf("  Items priced    : \033[1m%d\033[0m\n", r.PricedItems)
	if r.TotalItems > 0 {
		rate := float64(r.PricedItems) / float64(r.TotalItems) * 100
		fmt.Printf("  Success rate    : \033[1m%.1f%%\033[0m\n", rate)
	}
	fmt.Printf("  Listings used   : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Println()

	fmt.Printf("\033[1;33m  Price Range (average per item)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.PricedItems > 0 {
		fmt.Printf("  Overall average : \033[1;32m$%.2f\033[0m\n", r.AverageOfAverages)
		fmt.Printf("  Cheapest        : %s (\033[1;32m$%.2f\033[0m)\n", r.CheapestItem, r.CheapestPrice)
		fmt.Printf("  Most valuable   : %s (\033[1;31m$%.2f\033[0m)\n", r.DearestItem, r.DearestPrice)
	} else {
		fmt.Printf("  No items could be priced\n")
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Priced Items by Series\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.ItemsBySeries) == 0 {
		fmt.Printf("  No series data\n")
	} else {
		type seriesCount struct {
			name  string
			count int
		}
		var counts []seriesCount
		for name, cnt := range r.ItemsBySeries {
			counts = append(counts, seriesCount{name, cnt})
		}
		sort.Slice(counts, func(i, j int) bool {
			return counts[i].count > counts[j].count
		})
		for _, sc := range counts {
			bar := strings.Repeat("█", sc.count)
			fmt.Printf("  %-30s %s (%d)\n", truncate(sc.name, 28), bar, sc.count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
