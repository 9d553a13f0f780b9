package types

import (
	"strings"
	"time"
)

// Record is a single arrest entry extracted from a listing page.
// Every field except Name, Source, and ScrapedAt is optional free text;
// a missing field is the empty string, never an error.
type Record struct {
	Name            string
	BookingDate     string
	Charges         string
	Age             string
	Height          string
	Weight          string
	HairColor       string
	EyeColor        string
	Sex             string
	Race            string
	ArrestingAgency string
	BondAmount      string
	MugshotURL      string

	// Source identifies the county/category listing this record came from.
	Source string

	// ScrapedAt is when the record was extracted.
	ScrapedAt time.Time
}

// Fingerprint derives the dedup key for this record: the lower-cased
// name and booking date joined with "_", with whitespace runs collapsed
// to single underscores.
//
// Known identity-resolution weakness: two people sharing a name and a
// booking date collapse into one fingerprint, and the same person is NOT
// deduplicated if either field's free-text formatting drifts between
// scrapes. This matches the historical cache contents, so it stays.
func (r *Record) Fingerprint() string {
	key := strings.ToLower(r.Name + " " + r.BookingDate)
	return strings.Join(strings.Fields(key), "_")
}

// FilterCriteria controls which parsed records a run keeps.
// Immutable for the duration of a run.
type FilterCriteria struct {
	// DateFrom/DateTo bound the booking date (inclusive) when set.
	// Records whose booking date cannot be parsed are never excluded
	// on date grounds.
	DateFrom *time.Time
	DateTo   *time.Time

	// ChargeKeywords keeps only records whose charges contain at least
	// one keyword (case-insensitive substring match).
	ChargeKeywords []string

	// SkipDuplicates enables fingerprint filtering against the
	// per-source cache.
	SkipDuplicates bool
}
