package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bustedscan/internal/config"
	"bustedscan/internal/fetcher"
	"bustedscan/internal/parser"
	"bustedscan/internal/types"
)

// Options controls one scrape run.
type Options struct {
	// MaxPages bounds the page walk per source; <= 0 uses the
	// configured default.
	MaxPages int

	// Criteria is the record filter, immutable for the run.
	Criteria types.FilterCriteria
}

// Runner composes the paginator, record parser, filter, and dedup
// cache into per-source scrapes and sequential multi-source runs.
type Runner struct {
	cfg     *config.Config
	fetcher fetcher.Fetcher
	parser  *parser.RecordParser
	cache   *Cache
	logger  *slog.Logger
}

// NewRunner creates a Runner. Cache and output locations come from the
// supplied configuration, not ambient state.
func NewRunner(cfg *config.Config, f fetcher.Fetcher, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:     cfg,
		fetcher: f,
		parser:  parser.NewRecordParser(logger),
		cache:   NewCache(cfg.Cache.Dir, logger),
		logger:  logger.With("component", "runner"),
	}
}

// Cache exposes the dedup cache (used by tests and the CLI).
func (r *Runner) Cache() *Cache { return r.cache }

// ScrapeSource scrapes one source end to end: paginate, parse, filter,
// accumulate, then merge new fingerprints into the cache once.
//
// An unknown source returns an empty result and ErrUnknownSource. A
// fetch failure mid-walk returns the records accumulated so far along
// with the error; the cache merge still happens for them.
func (r *Runner) ScrapeSource(ctx context.Context, source string, opts Options) ([]types.Record, error) {
	slug, ok := r.cfg.SourceSlug(source)
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownSource, source)
	}

	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = r.cfg.Scraper.MaxPages
	}

	// The cache snapshot is taken once, before the walk; filtering
	// never consults a mid-run state.
	cached := make(map[string]struct{})
	if opts.Criteria.SkipDuplicates {
		cached = r.cache.Load(source)
	}

	baseURL := strings.TrimRight(r.cfg.Scraper.BaseURL, "/") + "/" + slug + "/"

	logger := r.logger.With("source", source)
	logger.Info("starting scrape",
		"base_url", baseURL,
		"max_pages", maxPages,
		"cached", len(cached),
	)

	var kept []types.Record
	newPrints := make(map[string]struct{})

	pag := NewPaginator(r.fetcher, r.cfg.Scraper.PolitenessDelay, r.logger)
	walkErr := pag.Run(ctx, baseURL, maxPages, func(page *types.Page) (int, error) {
		records := r.parser.Parse(page, source)
		if len(records) == 0 {
			return 0, nil
		}

		filtered := ApplyFilter(records, cached, opts.Criteria)
		kept = append(kept, filtered...)
		for _, rec := range filtered {
			newPrints[rec.Fingerprint()] = struct{}{}
		}

		logger.Info("page parsed", "page", page.PageNum, "records", len(records), "new", len(filtered))
		return len(records), nil
	})

	if walkErr != nil {
		logger.Error("scrape aborted", "error", walkErr)
	}

	// One merge per run, after filtering completes; persistence only
	// when the run actually produced new fingerprints.
	if opts.Criteria.SkipDuplicates && len(newPrints) > 0 {
		if err := r.cache.Merge(source, newPrints); err != nil {
			// Best effort: the in-memory result is still returned.
			logger.Warn("cache save failed", "error", err)
		}
	}

	logger.Info("scrape finished", "new_records", len(kept))
	return kept, walkErr
}

// ScrapeAll runs the given sources sequentially — the politeness
// throttle applies globally, so parallel fetches would defeat it — in
// the order given, with the configured inter-source delay. A nil or
// empty list means every registered source, in registry order. One
// source's failure never aborts the remaining sources.
func (r *Runner) ScrapeAll(ctx context.Context, sources []string, opts Options) map[string][]types.Record {
	if len(sources) == 0 {
		sources = r.cfg.SourceNames()
	}

	results := make(map[string][]types.Record, len(sources))
	for i, source := range sources {
		if i > 0 {
			select {
			case <-time.After(r.cfg.Scraper.SourceDelay):
			case <-ctx.Done():
				r.logger.Info("run interrupted between sources", "completed", i, "of", len(sources))
				return results
			}
		}

		records, err := r.ScrapeSource(ctx, source, opts)
		if err != nil {
			r.logger.Error("source failed", "source", source, "error", err)
		}
		results[source] = records

		if ctx.Err() != nil {
			return results
		}
	}

	return results
}

// Summary builds a human-readable report of a multi-source run.
// Sources appear in the given order.
func Summary(results map[string][]types.Record, order []string) string {
	var b strings.Builder
	divider := strings.Repeat("=", 60)

	fmt.Fprintf(&b, "\n%s\n", divider)
	fmt.Fprintf(&b, "SCRAPING SUMMARY - %s\n", time.Now().Format(lastUpdatedLayout))
	fmt.Fprintf(&b, "%s\n\n", divider)

	total := 0
	for _, source := range order {
		records, ok := results[source]
		if !ok {
			continue
		}
		total += len(records)
		status := "❌"
		if len(records) > 0 {
			status = "✅"
		}
		fmt.Fprintf(&b, "%s %s: %d records\n", status, titleCase(source), len(records))
	}

	fmt.Fprintf(&b, "\n%s\n", divider)
	fmt.Fprintf(&b, "TOTAL: %d records\n", total)
	fmt.Fprintf(&b, "%s\n", divider)

	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
