package engine

import (
	"strings"
	"time"

	"bustedscan/internal/types"
)

// bookingDateLayouts are the accepted booking-date formats, tried in
// order; the first successful parse wins.
var bookingDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"01-02-2006",
	"2006/01/02",
}

// ApplyFilter applies the run criteria to a record batch. Pure
// function of its inputs: cached is never mutated, and the surviving
// records keep their original relative order.
//
// Per-record checks, short-circuiting on the first failure:
//  1. fingerprint already cached → drop
//  2. booking date parses and falls outside the inclusive range → drop
//     (unparseable dates are never excluded on date grounds)
//  3. no charge keyword present → drop
func ApplyFilter(records []types.Record, cached map[string]struct{}, c types.FilterCriteria) []types.Record {
	kept := make([]types.Record, 0, len(records))

	for _, rec := range records {
		if _, seen := cached[rec.Fingerprint()]; seen {
			continue
		}

		if c.DateFrom != nil || c.DateTo != nil {
			if booked, ok := ParseBookingDate(rec.BookingDate); ok {
				if c.DateFrom != nil && booked.Before(*c.DateFrom) {
					continue
				}
				if c.DateTo != nil && booked.After(*c.DateTo) {
					continue
				}
			}
		}

		if len(c.ChargeKeywords) > 0 && !matchesKeyword(rec.Charges, c.ChargeKeywords) {
			continue
		}

		kept = append(kept, rec)
	}

	return kept
}

// ParseBookingDate parses a free-text booking date under the accepted
// layouts. The second return is false when no layout matches.
func ParseBookingDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range bookingDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// matchesKeyword reports whether any keyword appears in the charges
// text, case-insensitively.
func matchesKeyword(charges string, keywords []string) bool {
	if charges == "" {
		return false
	}
	lower := strings.ToLower(charges)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
