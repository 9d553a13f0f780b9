package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bustedscan/internal/config"
	"bustedscan/internal/types"
)

const runnerPageOne = `<!DOCTYPE html>
<html><body>
  <div class="booking-entry">
    <h3 class="name">ADA COLE</h3>
    <img src="/img/ada-cole.jpg">
    <p>age 31 sex Female booked 2024-06-01 charges: Theft by Unlawful Taking</p>
  </div>
  <div class="booking-entry">
    <h3 class="name">BEN HART</h3>
    <img src="/img/ben-hart.jpg">
    <p>age 44 sex Male booked 2024-06-01 charges: DUI</p>
  </div>
  <div class="booking-entry">
    <h3 class="name">CARA VOSS</h3>
    <img src="/img/cara-voss.jpg">
    <p>age 27 sex Female booked 2024-06-02 charges: Public Intoxication</p>
  </div>
  <div class="arrest-listing">
    <img src="/img/unknown.jpg">
    <p>age 50 booked 2024-06-02</p>
  </div>
</body></html>`

const runnerEmptyPage = `<!DOCTYPE html><html><body><p>No results found.</p></body></html>`

func runnerConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Scraper.BaseURL = "http://example.test/mugshots/kentucky"
	cfg.Scraper.PolitenessDelay = 0
	cfg.Scraper.SourceDelay = 0
	cfg.Cache.Dir = t.TempDir()
	return cfg
}

func sourceURL(cfg *config.Config, slug string, page int) string {
	return PageURL(cfg.Scraper.BaseURL+"/"+slug, page)
}

func TestScrapeSourceTwoPageWalk(t *testing.T) {
	cfg := runnerConfig(t)
	f := &fakeFetcher{pages: map[string]string{
		sourceURL(cfg, "nelson-county", 1): runnerPageOne,
		sourceURL(cfg, "nelson-county", 2): runnerEmptyPage,
	}}

	r := NewRunner(cfg, f, testLogger)
	records, err := r.ScrapeSource(context.Background(), "nelson", Options{
		Criteria: types.FilterCriteria{SkipDuplicates: true},
	})
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}

	// Three named candidates survive; the nameless block is dropped in
	// the parse pipeline, and the empty page ends the walk.
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if !sameNames(records, "ADA COLE", "BEN HART", "CARA VOSS") {
		t.Errorf("records = %v", names(records))
	}
	if len(f.calls) != 2 {
		t.Errorf("fetch calls = %v, want walk stopped after page 2", f.calls)
	}
	for _, rec := range records {
		if rec.Source != "nelson" {
			t.Errorf("source = %q", rec.Source)
		}
	}
}

func sameNames(records []types.Record, want ...string) bool {
	if len(records) != len(want) {
		return false
	}
	for i := range want {
		if records[i].Name != want[i] {
			return false
		}
	}
	return true
}

func TestScrapeSourceIdempotent(t *testing.T) {
	cfg := runnerConfig(t)
	f := &fakeFetcher{pages: map[string]string{
		sourceURL(cfg, "nelson-county", 1): runnerPageOne,
		sourceURL(cfg, "nelson-county", 2): runnerEmptyPage,
	}}

	r := NewRunner(cfg, f, testLogger)
	opts := Options{Criteria: types.FilterCriteria{SkipDuplicates: true}}

	first, err := r.ScrapeSource(context.Background(), "nelson", opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("first run: expected 3 records, got %d", len(first))
	}

	second, err := r.ScrapeSource(context.Background(), "nelson", opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second run: expected 0 new records, got %v", names(second))
	}
}

func TestScrapeSourceIncludeDuplicates(t *testing.T) {
	cfg := runnerConfig(t)
	f := &fakeFetcher{pages: map[string]string{
		sourceURL(cfg, "nelson-county", 1): runnerPageOne,
		sourceURL(cfg, "nelson-county", 2): runnerEmptyPage,
	}}

	r := NewRunner(cfg, f, testLogger)
	opts := Options{Criteria: types.FilterCriteria{SkipDuplicates: false}}

	if _, err := r.ScrapeSource(context.Background(), "nelson", opts); err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := r.ScrapeSource(context.Background(), "nelson", opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	// Without dedup the same records come back every run, and nothing
	// is written to the cache.
	if len(second) != 3 {
		t.Errorf("expected 3 records on rerun, got %d", len(second))
	}
	if prints := r.Cache().Load("nelson"); len(prints) != 0 {
		t.Errorf("cache written despite duplicates allowed: %v", prints)
	}
}

func TestScrapeSourceCachePersistsAcrossInstances(t *testing.T) {
	cfg := runnerConfig(t)
	f := &fakeFetcher{pages: map[string]string{
		sourceURL(cfg, "nelson-county", 1): runnerPageOne,
		sourceURL(cfg, "nelson-county", 2): runnerEmptyPage,
	}}

	r := NewRunner(cfg, f, testLogger)
	records, err := r.ScrapeSource(context.Background(), "nelson", Options{
		Criteria: types.FilterCriteria{SkipDuplicates: true},
	})
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}

	fresh := NewCache(cfg.Cache.Dir, testLogger)
	prints := fresh.Load("nelson")
	if len(prints) != len(records) {
		t.Fatalf("expected %d cached fingerprints, got %d", len(records), len(prints))
	}
	for _, rec := range records {
		if _, ok := prints[rec.Fingerprint()]; !ok {
			t.Errorf("fingerprint %q not persisted", rec.Fingerprint())
		}
	}
}

func TestScrapeSourceUnknown(t *testing.T) {
	cfg := runnerConfig(t)
	r := NewRunner(cfg, &fakeFetcher{}, testLogger)

	records, err := r.ScrapeSource(context.Background(), "atlantis", Options{})
	if !errors.Is(err, types.ErrUnknownSource) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %v", names(records))
	}
}

func TestScrapeSourcePartialOnFetchError(t *testing.T) {
	cfg := runnerConfig(t)
	// Page 1 succeeds, page 2 fails at transport level.
	f := &fakeFetcher{pages: map[string]string{
		sourceURL(cfg, "nelson-county", 1): runnerPageOne,
	}}

	r := NewRunner(cfg, f, testLogger)
	records, err := r.ScrapeSource(context.Background(), "nelson", Options{
		Criteria: types.FilterCriteria{SkipDuplicates: true},
	})

	var fetchErr *types.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected page-1 records alongside the error, got %d", len(records))
	}
	// The partial results are still merged into the cache.
	if prints := r.Cache().Load("nelson"); len(prints) != 3 {
		t.Errorf("expected partial results cached, got %v", prints)
	}
}

func TestScrapeSourceFilterCriteria(t *testing.T) {
	cfg := runnerConfig(t)
	f := &fakeFetcher{pages: map[string]string{
		sourceURL(cfg, "nelson-county", 1): runnerPageOne,
		sourceURL(cfg, "nelson-county", 2): runnerEmptyPage,
	}}

	r := NewRunner(cfg, f, testLogger)
	records, err := r.ScrapeSource(context.Background(), "nelson", Options{
		Criteria: types.FilterCriteria{ChargeKeywords: []string{"theft"}},
	})
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if len(records) != 1 || records[0].Name != "ADA COLE" {
		t.Errorf("expected only the theft record, got %v", names(records))
	}
	if len(f.calls) != 2 {
		t.Errorf("fetch calls = %v; filtering must not end the walk early", f.calls)
	}
}

func TestScrapeAllContinuesPastFailures(t *testing.T) {
	cfg := runnerConfig(t)
	// nelson works end to end, warren fails its first fetch.
	f := &fakeFetcher{pages: map[string]string{
		sourceURL(cfg, "nelson-county", 1): runnerPageOne,
		sourceURL(cfg, "nelson-county", 2): runnerEmptyPage,
	}}

	r := NewRunner(cfg, f, testLogger)
	results := r.ScrapeAll(context.Background(), []string{"warren", "nelson"}, Options{
		Criteria: types.FilterCriteria{SkipDuplicates: true},
	})

	if len(results["warren"]) != 0 {
		t.Errorf("warren = %v, want empty", names(results["warren"]))
	}
	if len(results["nelson"]) != 3 {
		t.Errorf("nelson = %d records, want 3", len(results["nelson"]))
	}
}

func TestSummary(t *testing.T) {
	results := map[string][]types.Record{
		"nelson": {{Name: "A"}, {Name: "B"}},
		"warren": {},
	}

	out := Summary(results, []string{"nelson", "warren"})
	for _, want := range []string{"✅ Nelson: 2 records", "❌ Warren: 0 records", "TOTAL: 2 records"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
