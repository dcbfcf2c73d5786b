package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"mercari-scraper/catalog"
	"mercari-scraper/config"
	"mercari-scraper/models"
	"mercari-scraper/scraper/mercari"
	"mercari-scraper/services"
	"mercari-scraper/storage"
	"mercari-scraper/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== Mercari Price Scraping System starting ===")
	logger.Info("Config — brand: %s | catalog: %s | slice: [%d,%d) | rate: %dms",
		cfg.Brand, cfg.CatalogPath, cfg.StartIndex, cfg.EndIndex, cfg.RateLimitMs)

	brand, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Error("Failed to load catalog: %v", err)
		os.Exit(1)
	}

	items := brand.FlatItems()
	start, end := cfg.StartIndex, cfg.EndIndex
	if end <= 0 || end > len(items) {
		end = len(items)
	}
	if start < 0 || start >= end {
		logger.Error("Batch slice [%d,%d) is empty for %d catalog items. Exiting.",
			start, end, len(items))
		os.Exit(1)
	}
	batch := items[start:end]
	logger.Info("Catalog: %d series, %d items — processing %d", len(brand.Series), len(items), len(batch))

	priceStore, err := storage.OpenJSONPriceStore(cfg.PricesOutputPath)
	if err != nil {
		logger.Error("Failed to open price store: %v", err)
		os.Exit(1)
	}

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		os.Exit(1)
	}
	defer csvWriter.Close()

	retry := &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   2 * time.Second,
		Logger:      logger,
	}
	var pgWriter *storage.PostgresWriter
	err = retry.Do("postgres-connect", func() error {
		var connErr error
		pgWriter, connErr = storage.NewPostgresWriter(cfg.DSN())
		return connErr
	})
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}
	defer pgWriter.Close()

	scraper := mercari.New(cfg, logger)
	defer scraper.Close()

	filterCfg := services.BrandConfigFor(cfg.Brand)
	if cfg.ItemMatchThreshold > 0 {
		filterCfg.ItemMatchThreshold = cfg.ItemMatchThreshold
	}
	filter := services.NewRelevanceFilter(filterCfg, logger)

	aggregator := services.NewAggregator(services.AggregatorConfig{
		MinListings: cfg.MinListings,
		MedianRatio: 3.0,
		MinPrice:    cfg.MinPrice,
		MaxPrice:    cfg.MaxPrice,
	}, logger)

	engine := services.NewPriceEngine(scraper, filter, aggregator, cfg.BrandLabel, logger)

	runID := uuid.NewString()
	logger.Info("Run ID: %s", runID)

	ctx := context.Background()
	var rows []storage.SummaryRow
	var results []services.ItemResult

	for i, fi := range batch {
		target := models.ItemDescriptor{
			Name:        fi.Item.Name,
			SeriesName:  fi.Series.Name,
			Rarity:      fi.Item.Rarity,
			BrandTokens: filterCfg.BrandTokens,
		}

		logger.Info("[%d/%d] %s — %s (%s)", start+i+1, len(items),
			fi.Series.Name, fi.Item.Name, fi.Item.Rarity)

		summary := engine.PriceItem(ctx, target)
		results = append(results, services.ItemResult{
			SeriesName: fi.Series.Name,
			ItemName:   fi.Item.Name,
			Summary:    summary,
		})

		if summary == nil {
			logger.Warn("No price for %s — skipping", fi.Item.Name)
			continue
		}

		logger.Info("%s: $%.2f avg ($%.2f–$%.2f) from %d listing(s)",
			fi.Item.Name, summary.AveragePrice, summary.MinPrice, summary.MaxPrice,
			summary.ListingCount)

		// Save after every item so an interrupted run keeps its progress.
		if err := priceStore.Update(fi.Item.ID, summary); err != nil {
			logger.Error("Price store update failed for %s: %v", fi.Item.ID, err)
		}

		if err := csvWriter.WriteRaw(engine.SearchTerm(target), summary.SourceListings); err != nil {
			logger.Error("CSV write failed: %v", err)
		}

		rows = append(rows, storage.SummaryRow{
			RunID:      runID,
			Brand:      cfg.Brand,
			SeriesID:   fi.Series.ID,
			SeriesName: fi.Series.Name,
			ItemID:     fi.Item.ID,
			ItemName:   fi.Item.Name,
			Rarity:     fi.Item.Rarity,
			Summary:    summary,
		})
	}

	if err := pgWriter.Write(rows); err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
	} else {
		logger.Info("%d summaries stored in PostgreSQL (table: price_summaries)", len(rows))
	}

	reportSvc := services.NewReportService(logger)
	reportSvc.Print(reportSvc.Generate(results))

	fmt.Printf("  Done. Prices → %s | Summaries → PostgreSQL | Audit CSV → %s\n\n",
		cfg.PricesOutputPath, cfg.CSVOutputPath)
}
