package storage

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bustedscan/internal/types"
)

const scrapedAtLayout = "2006-01-02 15:04:05"

// column binds a CSV header to its record field. The slice below is
// the contractual output column order.
type column struct {
	header string
	value  func(*types.Record) string
}

var columns = []column{
	{"name", func(r *types.Record) string { return r.Name }},
	{"booking_date", func(r *types.Record) string { return r.BookingDate }},
	{"charges", func(r *types.Record) string { return r.Charges }},
	{"age", func(r *types.Record) string { return r.Age }},
	{"sex", func(r *types.Record) string { return r.Sex }},
	{"race", func(r *types.Record) string { return r.Race }},
	{"height", func(r *types.Record) string { return r.Height }},
	{"weight", func(r *types.Record) string { return r.Weight }},
	{"hair_color", func(r *types.Record) string { return r.HairColor }},
	{"eye_color", func(r *types.Record) string { return r.EyeColor }},
	{"arresting_agency", func(r *types.Record) string { return r.ArrestingAgency }},
	{"bond_amount", func(r *types.Record) string { return r.BondAmount }},
	{"source", func(r *types.Record) string { return r.Source }},
	{"mugshot_url", func(r *types.Record) string { return r.MugshotURL }},
	{"scraped_at", func(r *types.Record) string {
		if r.ScrapedAt.IsZero() {
			return ""
		}
		return r.ScrapedAt.Format(scrapedAtLayout)
	}},
}

// CSVStorage writes one timestamped CSV per (source, batch): the
// downstream consumption format. Columns with no value anywhere in the
// batch are omitted, not emitted empty.
type CSVStorage struct {
	outputDir string
	logger    *slog.Logger
}

// NewCSVStorage creates a CSV storage rooted at outputDir.
func NewCSVStorage(outputDir string, logger *slog.Logger) (*CSVStorage, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &CSVStorage{
		outputDir: outputDir,
		logger:    logger.With("component", "csv_storage"),
	}, nil
}

func (s *CSVStorage) Name() string { return "csv" }

// Store writes the batch to <source>_arrests_<timestamp>.csv.
func (s *CSVStorage) Store(source string, records []types.Record) error {
	path, err := s.Write(source, records)
	if err != nil {
		return err
	}
	s.logger.Info("CSV written", "path", path, "records", len(records))
	return nil
}

// Write writes the batch and returns the created file path.
func (s *CSVStorage) Write(source string, records []types.Record) (string, error) {
	if len(records) == 0 {
		return "", &types.StorageError{Backend: "csv", Err: types.ErrNoRecords}
	}

	present := presentColumns(records)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_arrests_%s.csv", source, timestamp))

	f, err := os.Create(path)
	if err != nil {
		return "", &types.StorageError{Backend: "csv", Err: err}
	}
	defer f.Close()

	w := csv.NewWriter(f)

	headers := make([]string, len(present))
	for i, col := range present {
		headers[i] = col.header
	}
	if err := w.Write(headers); err != nil {
		return "", &types.StorageError{Backend: "csv", Err: err}
	}

	row := make([]string, len(present))
	for i := range records {
		for j, col := range present {
			row[j] = col.value(&records[i])
		}
		if err := w.Write(row); err != nil {
			return "", &types.StorageError{Backend: "csv", Err: err}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", &types.StorageError{Backend: "csv", Err: err}
	}
	return path, nil
}

func (s *CSVStorage) Close() error { return nil }

// presentColumns keeps, in contractual order, the columns that have a
// value in at least one record of the batch.
func presentColumns(records []types.Record) []column {
	present := make([]column, 0, len(columns))
	for _, col := range columns {
		for i := range records {
			if col.value(&records[i]) != "" {
				present = append(present, col)
				break
			}
		}
	}
	return present
}
