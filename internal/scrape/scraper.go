// Package scrape turns fetched HTML into bounded plain text for the
// extraction prompt.
package scrape

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-research/internal/fetcher"
	"github.com/sells-group/prospect-research/internal/metrics"
)

// ErrNoContent is returned when a page was fetched but yielded no usable text.
var ErrNoContent = eris.New("scrape: no content")

// Scraper fetches a single URL and returns its cleaned text.
type Scraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

// PageScraper is a Scraper built on a fetcher.Fetcher and Clean.
type PageScraper struct {
	fetcher  fetcher.Fetcher
	maxChars int
	metrics  *metrics.Metrics
}

// NewPageScraper creates a PageScraper. maxChars <= 0 uses DefaultMaxChars.
func NewPageScraper(f fetcher.Fetcher, maxChars int, m *metrics.Metrics) *PageScraper {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &PageScraper{fetcher: f, maxChars: maxChars, metrics: m}
}

// Scrape fetches url, rejects anti-bot challenge pages and returns cleaned
// text. Any error means no content is available for url.
func (s *PageScraper) Scrape(ctx context.Context, url string) (string, error) {
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", eris.Wrapf(err, "scrape: fetch %s", url)
	}

	if blocked, blockType := DetectBlock(body); blocked {
		s.metrics.ObserveFetch(metrics.FetchBlocked)
		return "", eris.Wrapf(ErrNoContent, "blocked (%s) at %s", blockType, url)
	}

	text := Clean(body, url, s.maxChars)
	if text == "" {
		return "", eris.Wrapf(ErrNoContent, "empty page at %s", url)
	}
	return text, nil
}
