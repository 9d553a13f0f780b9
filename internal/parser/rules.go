package parser

import (
	"bustedscan/internal/types"
)

// FieldRule is one entry in the extraction rule table. Rules are
// independent of each other: extraction of one field never depends on
// whether another field matched, because source markup order and
// presence are unreliable.
type FieldRule struct {
	// Field names the record field, for logging.
	Field string

	// Pattern is the extraction regex; the first capture group is the
	// field value.
	Pattern string

	// CaseSensitive requests exact-case matching. Used for values like
	// Male/Female where proper case discriminates against partial-word
	// matches in free text.
	CaseSensitive bool

	// JoinMultiword collapses internal whitespace runs in the captured
	// value to single spaces.
	JoinMultiword bool

	// Assign writes the extracted value into the record.
	Assign func(rec *types.Record, value string)
}

// fieldRules is the extraction schema for an entry block's flattened
// text. Adding a field is a table edit, not new logic.
var fieldRules = []FieldRule{
	{
		Field:   "age",
		Pattern: `age\s+(\d+)`,
		Assign:  func(r *types.Record, v string) { r.Age = v },
	},
	{
		Field:   "height",
		Pattern: `height\s+([\d'"]+)`,
		Assign:  func(r *types.Record, v string) { r.Height = v },
	},
	{
		Field:   "weight",
		Pattern: `weight\s+(\d+)\s*lbs`,
		Assign:  func(r *types.Record, v string) { r.Weight = v },
	},
	{
		Field:   "hair_color",
		Pattern: `hair\s+([A-Z]{3})`,
		Assign:  func(r *types.Record, v string) { r.HairColor = v },
	},
	{
		Field:   "eye_color",
		Pattern: `eye\s+([A-Z]{3})`,
		Assign:  func(r *types.Record, v string) { r.EyeColor = v },
	},
	{
		Field:         "sex",
		Pattern:       `sex\s+(Male|Female)`,
		CaseSensitive: true,
		Assign:        func(r *types.Record, v string) { r.Sex = v },
	},
	{
		Field:   "race",
		Pattern: `race\s+([A-Z])\s+`,
		Assign:  func(r *types.Record, v string) { r.Race = v },
	},
	{
		Field:   "booking_date",
		Pattern: `booked\s+([\d\-]+)`,
		Assign:  func(r *types.Record, v string) { r.BookingDate = v },
	},
	{
		Field:         "arresting_agency",
		Pattern:       `arrested by\s+([A-Z\s]+)`,
		JoinMultiword: true,
		Assign:        func(r *types.Record, v string) { r.ArrestingAgency = v },
	},
	{
		Field:   "bond_amount",
		Pattern: `bond[:\s]+\$?([\d,]+)`,
		Assign:  func(r *types.Record, v string) { r.BondAmount = v },
	},
	{
		// Charges are multi-item free text: capture everything between
		// the charges label and either a bond label or end of text.
		Field:   "charges",
		Pattern: `(?s)charges?[:\s]+(.+?)(?:bond|$)`,
		Assign:  func(r *types.Record, v string) { r.Charges = v },
	},
}
