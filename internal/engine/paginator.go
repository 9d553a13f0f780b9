package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bustedscan/internal/fetcher"
	"bustedscan/internal/types"
)

// PageHandler consumes one fetched page and reports how many records
// it parsed. Returning zero records ends the walk.
type PageHandler func(page *types.Page) (records int, err error)

// Paginator drives a sequential walk of a source's listing pages.
// Each walk starts at page 1; there is no mid-sequence restart.
type Paginator struct {
	fetcher   fetcher.Fetcher
	delay     time.Duration
	logger    *slog.Logger
	lastFetch time.Time
}

// NewPaginator creates a Paginator. delay is the politeness throttle
// observed between successive requests; it is not optional, the source
// publishes no rate-limit contract.
func NewPaginator(f fetcher.Fetcher, delay time.Duration, logger *slog.Logger) *Paginator {
	return &Paginator{
		fetcher: f,
		delay:   delay,
		logger:  logger.With("component", "paginator"),
	}
}

// Run fetches pages 1..maxPages in order, invoking handle for each.
// Termination:
//   - a page yielding zero records ends the walk without error (end
//     of listing);
//   - a fetch failure ends the walk and is surfaced to the caller,
//     without retry.
func (p *Paginator) Run(ctx context.Context, baseURL string, maxPages int, handle PageHandler) error {
	for n := 1; n <= maxPages; n++ {
		if err := p.throttle(ctx); err != nil {
			return err
		}

		url := PageURL(baseURL, n)
		p.logger.Info("fetching page", "page", n, "url", url)

		page, err := p.fetcher.Fetch(ctx, url)
		if err != nil {
			return err
		}
		page.PageNum = n
		p.lastFetch = time.Now()

		count, err := handle(page)
		if err != nil {
			return err
		}
		if count == 0 {
			p.logger.Info("no more records", "page", n)
			return nil
		}
	}
	return nil
}

// throttle waits out the remainder of the politeness delay since the
// previous fetch.
func (p *Paginator) throttle(ctx context.Context) error {
	if p.delay <= 0 || p.lastFetch.IsZero() {
		return nil
	}
	remaining := p.delay - time.Since(p.lastFetch)
	if remaining <= 0 {
		return nil
	}
	select {
	case <-time.After(remaining):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PageURL builds the URL for the nth listing page. Page 1 is the base
// URL itself; later pages append a page-index path segment.
func PageURL(baseURL string, n int) string {
	base := strings.TrimRight(baseURL, "/") + "/"
	if n <= 1 {
		return base
	}
	return fmt.Sprintf("%spage/%d/", base, n)
}
