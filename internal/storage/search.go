package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// SearchResult is one matching row from a previously written CSV.
type SearchResult struct {
	Name        string
	Source      string
	BookingDate string
	Charges     string
	File        string
}

// Searcher scans previously exported CSV files by arrestee name.
type Searcher struct {
	outputDir string
	logger    *slog.Logger
}

// NewSearcher creates a searcher over the CSV output directory.
func NewSearcher(outputDir string, logger *slog.Logger) *Searcher {
	return &Searcher{
		outputDir: outputDir,
		logger:    logger.With("component", "searcher"),
	}
}

// ByName returns rows whose name contains the query, case-insensitive.
// An empty source searches every source's files. A file that cannot be
// read or parsed is skipped with a warning; search is best-effort over
// whatever exports exist.
func (s *Searcher) ByName(query, source string) ([]SearchResult, error) {
	pattern := "*_arrests_*.csv"
	if source != "" {
		pattern = fmt.Sprintf("%s_arrests_*.csv", source)
	}

	files, err := filepath.Glob(filepath.Join(s.outputDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob output dir: %w", err)
	}

	queryLower := strings.ToLower(query)
	var results []SearchResult

	for _, file := range files {
		matches, err := searchFile(file, queryLower)
		if err != nil {
			s.logger.Warn("search skipping file", "file", file, "error", err)
			continue
		}
		results = append(results, matches...)
	}

	return results, nil
}

// searchFile scans one CSV. Column positions come from the header row,
// since exports omit columns absent from their batch.
func searchFile(path, queryLower string) ([]SearchResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, err
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	nameIdx, ok := idx["name"]
	if !ok {
		return nil, fmt.Errorf("no name column in %s", path)
	}

	field := func(row []string, column string) string {
		i, ok := idx[column]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var results []SearchResult
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if nameIdx >= len(row) {
			continue
		}
		if !strings.Contains(strings.ToLower(row[nameIdx]), queryLower) {
			continue
		}
		results = append(results, SearchResult{
			Name:        row[nameIdx],
			Source:      field(row, "source"),
			BookingDate: field(row, "booking_date"),
			Charges:     field(row, "charges"),
			File:        path,
		})
	}
	return results, nil
}
