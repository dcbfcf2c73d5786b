// Package mercari implements the marketplace search collaborator against
// Mercari's keyword search, driven by headless Chrome.
package mercari

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"mercari-scraper/config"
	"mercari-scraper/models"
	"mercari-scraper/utils"
)

const searchBase = "https://www.mercari.com/search/"

// Scraper runs keyword searches against Mercari and extracts listings.
// Queries are spaced by a fixed delay and bounded by a per-query timeout.
// A failed query is the caller's signal to move on: there is no retry,
// so one slow page never stalls a whole batch.
type Scraper struct {
	cfg      *config.Config
	logger   *utils.Logger
	limiter  *utils.RateLimiter
	allocCtx context.Context
	cancel   context.CancelFunc
}

// New creates a Scraper and starts its browser allocator.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	chromeBin := cfg.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("[mercari] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))

	return &Scraper{
		cfg:     cfg,
		logger:  logger,
		limiter: utils.NewRateLimiter(cfg.RateLimitMs),
		allocCtx: silentCtx,
		cancel: func() {
			cancelSilent()
			cancelAlloc()
		},
	}
}

// Close shuts down the browser.
func (s *Scraper) Close() {
	s.cancel()
}

// Search runs one keyword query and returns the listings on the first
// results page, both active and sold. Results carry raw titles; relevance
// filtering is the pipeline's job, not the scraper's.
func (s *Scraper) Search(ctx context.Context, query string) ([]*models.ListingRecord, error) {
	s.limiter.Wait()

	searchURL := searchBase + "?" + url.Values{
		"keyword": {query},
		"sort":    {"created_time"},
	}.Encode()

	s.logger.Info("[mercari] Searching: %q", query)

	tabCtx, cancelTab := chromedp.NewContext(s.allocCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx,
		time.Duration(s.cfg.SearchTimeoutSec)*time.Second)
	defer cancelTimeout()

	// Honor caller cancellation on top of the per-query timeout.
	go func() {
		select {
		case <-ctx.Done():
			cancelTab()
		case <-tabCtx.Done():
		}
	}()

	type cardData struct {
		Title  string  `json:"title"`
		Price  float64 `json:"price"`
		URL    string  `json:"url"`
		Status string  `json:"status"`
	}

	var cards []cardData

	err := chromedp.Run(tabCtx,
		chromedp.Navigate(searchURL),
		chromedp.Sleep(4*time.Second),

		// Scroll so lazy-loaded cards render
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight / 2)`, nil),
		chromedp.Sleep(2*time.Second),

		chromedp.Evaluate(fmt.Sprintf(`
			(function() {
				var minPrice = %f;
				var maxPrice = %f;
				var results = [];
				var links = document.querySelectorAll('a[href*="/item/"]');

				for (var i = 0; i < links.length; i++) {
					var link = links[i];
					var container = link.closest('[data-testid*="item"]') ||
					                link.closest('div[class*="Item"]') ||
					                link.parentElement || link;
					var fullText = container.textContent || '';

					var priceMatch = fullText.match(/\$\s*([0-9,]+(?:\.[0-9]{2})?)/);
					if (!priceMatch) continue;
					var price = parseFloat(priceMatch[1].replace(/,/g, ''));
					if (isNaN(price) || price < minPrice || price > maxPrice) continue;

					var title = link.getAttribute('aria-label') ||
					            link.getAttribute('title') || '';
					if (!title) {
						var titleEl = container.querySelector(
							'[data-testid*="ItemName"], [class*="itemName"], h3, h4');
						if (titleEl) title = titleEl.textContent;
					}
					if (!title) {
						title = fullText.split('$')[0];
					}
					title = title.replace(/\$\s*[0-9,]+(?:\.[0-9]{2})?/g, '')
					             .replace(/\s+/g, ' ').trim();
					if (!title || title.length < 3) continue;

					var textLower = fullText.toLowerCase();
					var isSold = textLower.indexOf('sold') !== -1;

					results.push({
						title: title,
						price: price,
						url: link.href,
						status: isSold ? 'sold' : 'active'
					});
				}
				return results;
			})()
		`, s.cfg.MinPrice, s.cfg.MaxPrice), &cards),
	)
	if err != nil {
		return nil, fmt.Errorf("mercari search %q: %w", query, err)
	}

	listings := make([]*models.ListingRecord, 0, len(cards))
	for _, c := range cards {
		status := models.StatusActive
		if c.Status == "sold" {
			status = models.StatusSold
		}
		listings = append(listings, &models.ListingRecord{
			Title:  c.Title,
			Price:  c.Price,
			URL:    c.URL,
			Status: status,
		})
	}

	s.logger.Debug("[mercari] %q returned %d listing(s)", query, len(listings))
	return listings, nil
}

// findChromeBinary locates an installed Chrome/Chromium binary.
func findChromeBinary() string {
	candidates := []string{
		"google-chrome", "google-chrome-stable", "chromium", "chromium-browser",
	}
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
