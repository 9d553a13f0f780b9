package parser

import (
	"log/slog"
	"os"
	"testing"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const entryText = `JOHN DOE
age 34 height 5'11" weight 180 lbs hair BRO eye BLU sex Male race W booked 2024-03-01
arrested by NELSON   COUNTY SHERIFF. charges: Theft by Unlawful Taking, Resisting Arrest bond: $5,000`

func TestExtractFieldRules(t *testing.T) {
	e := NewPatternExtractor(testLogger)

	tests := []struct {
		field string
		want  string
	}{
		{"age", "34"},
		{"height", `5'11"`},
		{"weight", "180"},
		{"hair_color", "BRO"},
		{"eye_color", "BLU"},
		{"sex", "Male"},
		{"race", "W"},
		{"booking_date", "2024-03-01"},
		{"arresting_agency", "NELSON COUNTY SHERIFF"},
		{"bond_amount", "5,000"},
		{"charges", "Theft by Unlawful Taking, Resisting Arrest"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			rule, ok := ruleByField(tt.field)
			if !ok {
				t.Fatalf("no rule for field %q", tt.field)
			}
			if got := e.Extract(entryText, rule); got != tt.want {
				t.Errorf("Extract(%s) = %q, want %q", tt.field, got, tt.want)
			}
		})
	}
}

func TestExtractCaseSensitivity(t *testing.T) {
	e := NewPatternExtractor(testLogger)
	rule, _ := ruleByField("sex")

	// Proper case is required for sex: lowercase "male" in free text
	// must not count as a match.
	if got := e.Extract("sex male", rule); got != "" {
		t.Errorf("expected no match for lowercase value, got %q", got)
	}
	if got := e.Extract("sex Male", rule); got != "Male" {
		t.Errorf("expected Male, got %q", got)
	}
}

func TestExtractCaseInsensitiveDefault(t *testing.T) {
	e := NewPatternExtractor(testLogger)
	rule, _ := ruleByField("age")

	if got := e.Extract("AGE 52", rule); got != "52" {
		t.Errorf("expected 52, got %q", got)
	}
}

func TestExtractNoMatchIsEmpty(t *testing.T) {
	e := NewPatternExtractor(testLogger)

	for _, rule := range fieldRules {
		if got := e.Extract("nothing useful here", rule); got != "" {
			t.Errorf("field %s: expected empty, got %q", rule.Field, got)
		}
	}
}

func TestExtractJoinMultiword(t *testing.T) {
	e := NewPatternExtractor(testLogger)
	rule, _ := ruleByField("arresting_agency")

	got := e.Extract("arrested by HARDIN\n  COUNTY\tPOLICE.", rule)
	if got != "HARDIN COUNTY POLICE" {
		t.Errorf("expected collapsed whitespace, got %q", got)
	}
}

func TestExtractChargesStopsAtBond(t *testing.T) {
	e := NewPatternExtractor(testLogger)
	rule, _ := ruleByField("charges")

	text := "charges: DUI first offense\nPublic Intoxication\nBond: $250"
	if got := e.Extract(text, rule); got != "DUI first offense\nPublic Intoxication" {
		t.Errorf("multi-line charges capture wrong: %q", got)
	}

	// Without a bond label, capture runs to end of text.
	text = "charge: Speeding 26mph over limit"
	if got := e.Extract(text, rule); got != "Speeding 26mph over limit" {
		t.Errorf("end-of-text charges capture wrong: %q", got)
	}
}

func ruleByField(field string) (FieldRule, bool) {
	for _, r := range fieldRules {
		if r.Field == field {
			return r, true
		}
	}
	return FieldRule{}, false
}
