package config

import (
	"fmt"
	"net/url"
	"time"
)

// Validate checks the configuration for unrecoverable problems.
// No resolvable sources is the one truly fatal configuration error.
func Validate(cfg *Config) error {
	if len(cfg.Scraper.Sources) == 0 {
		return fmt.Errorf("scraper.sources: at least one source is required")
	}
	seen := make(map[string]struct{}, len(cfg.Scraper.Sources))
	for _, s := range cfg.Scraper.Sources {
		if s.Name == "" || s.Slug == "" {
			return fmt.Errorf("scraper.sources: name and slug are both required (got name=%q slug=%q)", s.Name, s.Slug)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("scraper.sources: duplicate source %q", s.Name)
		}
		seen[s.Name] = struct{}{}
	}

	if err := ValidateURL(cfg.Scraper.BaseURL); err != nil {
		return fmt.Errorf("scraper.base_url: %w", err)
	}
	if cfg.Scraper.MaxPages < 1 {
		return fmt.Errorf("scraper.max_pages must be >= 1, got %d", cfg.Scraper.MaxPages)
	}
	if cfg.Scraper.PolitenessDelay < 0 {
		return fmt.Errorf("scraper.politeness_delay must not be negative")
	}
	if cfg.Scraper.RequestTimeout <= 0 {
		return fmt.Errorf("scraper.request_timeout must be positive")
	}

	switch cfg.Storage.Type {
	case "csv":
	case "mongo":
		if cfg.Storage.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri is required when storage.type is mongo")
		}
	default:
		return fmt.Errorf("storage.type must be csv or mongo, got %q", cfg.Storage.Type)
	}

	for _, t := range cfg.Schedule.Times {
		if _, err := time.Parse("15:04", t); err != nil {
			return fmt.Errorf("schedule.times: invalid time %q (want HH:MM)", t)
		}
	}

	return nil
}

// ValidateURL checks that a URL is absolute http(s).
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL host is empty")
	}
	return nil
}
