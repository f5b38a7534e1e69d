// Package scraper is the hook for collecting university listings from the
// web. No source is scraped yet; Noop reports an empty result.
package scraper

import (
	"context"
	"log/slog"

	"github.com/uniadvisor/uniadvisor/internal/dataset"
)

// Scraper collects university rows from an external source.
type Scraper interface {
	Scrape(ctx context.Context) ([]dataset.University, error)
}

// Noop is the default Scraper. It returns no rows and no error.
type Noop struct{}

// Scrape implements Scraper.
func (Noop) Scrape(ctx context.Context) ([]dataset.University, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Scrape requested; no scraping source configured")
	return nil, nil
}
