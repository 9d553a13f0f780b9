package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"bustedscan/internal/types"
)

// Cache is the persistent per-source set of record fingerprints that
// makes repeated runs idempotent. One JSON file per source, read
// entirely on load and rewritten entirely on save.
type Cache struct {
	dir    string
	logger *slog.Logger
}

// cacheFile is the on-disk shape of one source's cache entry.
type cacheFile struct {
	RecordIDs   []string `json:"record_ids"`
	LastUpdated string   `json:"last_updated"`
}

const lastUpdatedLayout = "2006-01-02 15:04:05"

// NewCache creates a cache rooted at dir. The directory is created
// lazily on first save.
func NewCache(dir string, logger *slog.Logger) *Cache {
	return &Cache{
		dir:    dir,
		logger: logger.With("component", "dedup_cache"),
	}
}

// Load returns the fingerprint set previously stored for a source.
// Read failures degrade to an empty set — conservative: more
// duplicates possible, never fewer.
func (c *Cache) Load(source string) map[string]struct{} {
	path := c.path(source)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("cache load failed", "source", source, "error", &types.CacheError{Path: path, Err: err})
		}
		return make(map[string]struct{})
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		c.logger.Warn("cache file corrupt, treating as empty", "source", source, "error", err)
		return make(map[string]struct{})
	}

	prints := make(map[string]struct{}, len(cf.RecordIDs))
	for _, id := range cf.RecordIDs {
		prints[id] = struct{}{}
	}
	return prints
}

// Merge unions new fingerprints into the persisted set and stamps a
// new last-updated time. The write replaces the whole file via a temp
// file rename, so an interrupt never leaves a partial cache. Within a
// run the set only grows.
func (c *Cache) Merge(source string, prints map[string]struct{}) error {
	if len(prints) == 0 {
		return nil
	}

	merged := c.Load(source)
	for id := range prints {
		merged[id] = struct{}{}
	}

	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	cf := cacheFile{
		RecordIDs:   ids,
		LastUpdated: time.Now().Format(lastUpdatedLayout),
	}

	if err := c.write(source, cf); err != nil {
		return &types.CacheError{Path: c.path(source), Err: err}
	}

	c.logger.Debug("cache merged", "source", source, "new", len(prints), "total", len(ids))
	return nil
}

func (c *Cache) write(source string, cf cacheFile) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmpPath := c.path(source) + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cf); err != nil {
		f.Close()
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, c.path(source)); err != nil {
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}

func (c *Cache) path(source string) string {
	return filepath.Join(c.dir, source+"_cache.json")
}
