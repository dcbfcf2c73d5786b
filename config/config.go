package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	Brand       string
	BrandLabel  string
	CatalogPath string

	// Batch slice: items [StartIndex, EndIndex) of the flattened catalog.
	// EndIndex 0 means "to the end". Runs are resumable by range.
	StartIndex int
	EndIndex   int

	RateLimitMs      int
	SearchTimeoutSec int
	MaxRetries       int

	MinPrice           float64
	MaxPrice           float64
	MinListings        int
	ItemMatchThreshold float64

	PricesOutputPath string
	CSVOutputPath    string

	Headless  bool
	ChromeBin string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "prices_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		Brand:       getEnv("BRAND", "sonny-angel"),
		BrandLabel:  getEnv("BRAND_LABEL", "Sonny Angel"),
		CatalogPath: getEnv("CATALOG_PATH", "./data/sonny-angel.json"),

		StartIndex: getEnvInt("START_INDEX", 0),
		EndIndex:   getEnvInt("END_INDEX", 0),

		RateLimitMs:      getEnvInt("RATE_LIMIT_MS", 1500),
		SearchTimeoutSec: getEnvInt("SEARCH_TIMEOUT_SEC", 45),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),

		MinPrice:           getEnvFloat("MIN_PRICE", 5),
		MaxPrice:           getEnvFloat("MAX_PRICE", 10000),
		MinListings:        getEnvInt("MIN_LISTINGS", 1),
		ItemMatchThreshold: getEnvFloat("ITEM_MATCH_THRESHOLD", 0.6),

		PricesOutputPath: getEnv("PRICES_OUTPUT_PATH", "./data/scraped-prices.json"),
		CSVOutputPath:    getEnv("CSV_OUTPUT_PATH", "./output/raw_listings.csv"),

		Headless:  getEnvBool("HEADLESS", true),
		ChromeBin: getEnv("CHROME_BIN", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
