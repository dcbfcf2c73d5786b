package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// PostgresWriter persists price summaries to PostgreSQL, one row per
// (run, item). Re-running a batch over the same items upserts.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS price_summaries (
			id                SERIAL PRIMARY KEY,
			run_id            UUID         NOT NULL,
			brand             VARCHAR(50)  NOT NULL,
			series_id         TEXT         NOT NULL,
			series_name       TEXT         NOT NULL,
			item_id           TEXT         NOT NULL,
			item_name         TEXT         NOT NULL,
			rarity            VARCHAR(20)  NOT NULL DEFAULT 'Regular',
			avg_price         NUMERIC(10,2) NOT NULL,
			min_price         NUMERIC(10,2) NOT NULL,
			max_price         NUMERIC(10,2) NOT NULL,
			listing_count     INT          NOT NULL,
			raw_listing_count INT          NOT NULL,
			computed_at       TIMESTAMPTZ  NOT NULL,
			UNIQUE (run_id, item_id)
		);

		CREATE INDEX IF NOT EXISTS idx_summaries_item  ON price_summaries(item_id);
		CREATE INDEX IF NOT EXISTS idx_summaries_brand ON price_summaries(brand);
		CREATE INDEX IF NOT EXISTS idx_summaries_time  ON price_summaries(computed_at);
	`)
	return err
}

// Write batch-inserts the summary rows for a run.
func (pw *PostgresWriter) Write(rows []SummaryRow) error {
	if len(rows) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := pw.insertBatch(rows[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []SummaryRow) error {
	const cols = 13
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, r := range batch {
		base := idx * cols
		placeholders := make([]string, cols)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			r.RunID, r.Brand, r.SeriesID, r.SeriesName, r.ItemID, r.ItemName, r.Rarity,
			r.Summary.AveragePrice, r.Summary.MinPrice, r.Summary.MaxPrice,
			r.Summary.ListingCount, r.Summary.RawListingCount, r.Summary.ComputedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO price_summaries
			(run_id, brand, series_id, series_name, item_id, item_name, rarity,
			 avg_price, min_price, max_price, listing_count, raw_listing_count, computed_at)
		VALUES %s
		ON CONFLICT (run_id, item_id) DO UPDATE SET
			avg_price         = EXCLUDED.avg_price,
			min_price         = EXCLUDED.min_price,
			max_price         = EXCLUDED.max_price,
			listing_count     = EXCLUDED.listing_count,
			raw_listing_count = EXCLUDED.raw_listing_count,
			computed_at       = EXCLUDED.computed_at
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	if err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
