package engine

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestCacheLoadMissingFileIsEmpty(t *testing.T) {
	c := NewCache(t.TempDir(), testLogger)

	if prints := c.Load("nelson"); len(prints) != 0 {
		t.Errorf("expected empty set, got %v", prints)
	}
}

func TestCacheMergeAndReload(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir, testLogger)

	err := c.Merge("nelson", map[string]struct{}{
		"john_doe_2024-01-02":   {},
		"jane_smith_2024-01-03": {},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	// A fresh instance must see the persisted set.
	fresh := NewCache(dir, testLogger)
	prints := fresh.Load("nelson")
	if len(prints) != 2 {
		t.Fatalf("expected 2 fingerprints, got %d", len(prints))
	}
	for _, id := range []string{"john_doe_2024-01-02", "jane_smith_2024-01-03"} {
		if _, ok := prints[id]; !ok {
			t.Errorf("missing fingerprint %q", id)
		}
	}
}

func TestCacheMergeUnionsWithExisting(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir, testLogger)

	if err := c.Merge("nelson", map[string]struct{}{"a_2024-01-01": {}}); err != nil {
		t.Fatalf("first merge: %v", err)
	}
	if err := c.Merge("nelson", map[string]struct{}{"b_2024-01-02": {}}); err != nil {
		t.Fatalf("second merge: %v", err)
	}

	prints := c.Load("nelson")
	if len(prints) != 2 {
		t.Errorf("expected union of 2, got %v", prints)
	}
}

func TestCacheMergeEmptyIsNoop(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir, testLogger)

	if err := c.Merge("nelson", nil); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "nelson_cache.json")); !os.IsNotExist(err) {
		t.Error("empty merge must not create a cache file")
	}
}

func TestCacheFileShape(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir, testLogger)

	if err := c.Merge("nelson", map[string]struct{}{"z_2024-01-01": {}, "a_2024-01-02": {}}); err != nil {
		t.Fatalf("merge: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "nelson_cache.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var cf struct {
		RecordIDs   []string `json:"record_ids"`
		LastUpdated string   `json:"last_updated"`
	}
	if err := json.Unmarshal(data, &cf); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(cf.RecordIDs, []string{"a_2024-01-02", "z_2024-01-01"}) {
		t.Errorf("record_ids = %v, want sorted", cf.RecordIDs)
	}
	if cf.LastUpdated == "" {
		t.Error("last_updated not stamped")
	}
}

func TestCacheCorruptFileDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nelson_cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewCache(dir, testLogger)
	if prints := c.Load("nelson"); len(prints) != 0 {
		t.Errorf("expected empty set for corrupt file, got %v", prints)
	}
}

func TestCachePerSourceIsolation(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir, testLogger)

	if err := c.Merge("nelson", map[string]struct{}{"only_nelson": {}}); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if prints := c.Load("warren"); len(prints) != 0 {
		t.Errorf("warren cache contaminated: %v", prints)
	}
}
