package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for bustedscan.
type Config struct {
	Scraper  ScraperConfig  `mapstructure:"scraper"  yaml:"scraper"`
	Fetcher  FetcherConfig  `mapstructure:"fetcher"  yaml:"fetcher"`
	Cache    CacheConfig    `mapstructure:"cache"    yaml:"cache"`
	Storage  StorageConfig  `mapstructure:"storage"  yaml:"storage"`
	Schedule ScheduleConfig `mapstructure:"schedule" yaml:"schedule"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// Source maps a county/category name to its URL path segment.
type Source struct {
	Name string `mapstructure:"name" yaml:"name"`
	Slug string `mapstructure:"slug" yaml:"slug"`
}

// ScraperConfig controls the scrape run itself.
type ScraperConfig struct {
	// BaseURL is the listing root; source slugs are appended to it.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// Sources is the known-source registry, in run order.
	Sources []Source `mapstructure:"sources" yaml:"sources"`

	MaxPages        int           `mapstructure:"max_pages"        yaml:"max_pages"`
	PolitenessDelay time.Duration `mapstructure:"politeness_delay" yaml:"politeness_delay"`
	SourceDelay     time.Duration `mapstructure:"source_delay"     yaml:"source_delay"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"  yaml:"request_timeout"`
}

// FetcherConfig controls the HTTP fetcher.
type FetcherConfig struct {
	UserAgent       string        `mapstructure:"user_agent"        yaml:"user_agent"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
}

// CacheConfig controls the per-source dedup cache.
type CacheConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// StorageConfig controls where new records are written.
type StorageConfig struct {
	// Type selects the sink: "csv" (default) or "mongo".
	Type      string `mapstructure:"type"       yaml:"type"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// ScheduleConfig controls recurring runs.
type ScheduleConfig struct {
	// Times are daily local run times in "HH:MM" form.
	Times []string `mapstructure:"times" yaml:"times"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SourceSlug resolves a source name to its slug. The second return is
// false for sources not in the registry.
func (c *Config) SourceSlug(name string) (string, bool) {
	for _, s := range c.Scraper.Sources {
		if s.Name == name {
			return s.Slug, true
		}
	}
	return "", false
}

// SourceNames returns registry source names in run order.
func (c *Config) SourceNames() []string {
	names := make([]string, len(c.Scraper.Sources))
	for i, s := range c.Scraper.Sources {
		names[i] = s.Name
	}
	return names
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Scraper: ScraperConfig{
			BaseURL: "https://bustednewspaper.com/mugshots/kentucky",
			Sources: []Source{
				{Name: "nelson", Slug: "nelson-county"},
				{Name: "jefferson", Slug: "jefferson-county"},
				{Name: "hardin", Slug: "hardin-county"},
				{Name: "bullitt", Slug: "bullitt-county"},
				{Name: "fayette", Slug: "fayette-county"},
				{Name: "spencer", Slug: "spencer-county"},
				{Name: "warren", Slug: "warren-county"},
				{Name: "boone", Slug: "boone-county"},
				{Name: "franklin", Slug: "franklin-county"},
			},
			MaxPages:        5,
			PolitenessDelay: 2 * time.Second,
			SourceDelay:     3 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Fetcher: FetcherConfig{
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			FollowRedirects: true,
			MaxRedirects:    10,
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    10,
		},
		Cache: CacheConfig{
			Dir: "./scraper_cache",
		},
		Storage: StorageConfig{
			Type:            "csv",
			OutputDir:       "./mugshot_data",
			MongoDatabase:   "bustedscan",
			MongoCollection: "records",
		},
		Schedule: ScheduleConfig{
			Times: []string{"09:00", "12:00", "15:00", "18:00"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
