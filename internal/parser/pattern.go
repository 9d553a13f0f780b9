package parser

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// PatternExtractor pulls individual fields out of unstructured text
// using first-match-wins regular expressions. "No match" is a normal
// outcome and yields the empty string.
type PatternExtractor struct {
	logger *slog.Logger
	cache  map[string]*regexp.Regexp
}

// NewPatternExtractor creates a new pattern extractor.
func NewPatternExtractor(logger *slog.Logger) *PatternExtractor {
	return &PatternExtractor{
		logger: logger.With("component", "pattern_extractor"),
		cache:  make(map[string]*regexp.Regexp),
	}
}

// Extract applies a field rule to the text and returns the first
// capture group of the first match, trimmed. Rules match
// case-insensitively unless CaseSensitive is set. When JoinMultiword is
// set, internal whitespace runs in the captured value are collapsed to
// single spaces.
func (e *PatternExtractor) Extract(text string, rule FieldRule) string {
	re, err := e.getOrCompile(rule)
	if err != nil {
		// A broken pattern is a programming error in the rule table;
		// treat it as no-match so one bad rule cannot fail a record.
		e.logger.Warn("invalid field pattern", "field", rule.Field, "error", err)
		return ""
	}

	match := re.FindStringSubmatch(text)
	if match == nil || len(match) < 2 {
		return ""
	}

	value := strings.TrimSpace(match[1])
	if rule.JoinMultiword {
		value = strings.Join(strings.Fields(value), " ")
	}
	return value
}

// getOrCompile returns a cached compiled regex or compiles and caches
// a new one.
func (e *PatternExtractor) getOrCompile(rule FieldRule) (*regexp.Regexp, error) {
	pattern := rule.Pattern
	if !rule.CaseSensitive {
		pattern = "(?i)" + pattern
	}

	if re, ok := e.cache[pattern]; ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", rule.Pattern, err)
	}

	e.cache[pattern] = re
	return re, nil
}
