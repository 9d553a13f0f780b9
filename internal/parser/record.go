package parser

import (
	"fmt"
	"log/slog"
	"time"

	"bustedscan/internal/pipeline"
	"bustedscan/internal/types"
)

// RecordParser turns one listing page into zero or more structured
// records.
type RecordParser struct {
	extractor *PatternExtractor
	matchers  []BlockMatcher
	pipe      *pipeline.Pipeline
	logger    *slog.Logger
}

// NewRecordParser creates a parser with the default matcher ranking
// and post-processing pipeline.
func NewRecordParser(logger *slog.Logger) *RecordParser {
	pipe := pipeline.New(logger)
	pipe.Use(&pipeline.TrimMiddleware{})
	pipe.Use(&pipeline.RequireNameMiddleware{})

	return &RecordParser{
		extractor: NewPatternExtractor(logger),
		matchers:  DefaultMatchers(),
		pipe:      pipe,
		logger:    logger.With("component", "record_parser"),
	}
}

// Parse extracts records from a page. Candidate blocks come from the
// first matcher that yields any; a malformed block is skipped and
// parsing continues with the next one.
func (p *RecordParser) Parse(page *types.Page, source string) []types.Record {
	blocks := p.candidateBlocks(page)

	records := make([]types.Record, 0, len(blocks))
	for i, block := range blocks {
		rec, err := p.parseBlock(block, source)
		if err != nil {
			p.logger.Debug("candidate block skipped",
				"url", page.URL,
				"block", i,
				"error", err,
			)
			continue
		}
		if rec == nil {
			// No name extracted: not a real entry.
			continue
		}
		records = append(records, *rec)
	}

	return records
}

// candidateBlocks runs the ranked matchers; the first one yielding any
// candidates wins.
func (p *RecordParser) candidateBlocks(page *types.Page) []Block {
	for _, m := range p.matchers {
		blocks, err := m.Match(page)
		if err != nil {
			p.logger.Warn("block matcher failed", "matcher", m.Name(), "url", page.URL, "error", err)
			continue
		}
		if len(blocks) > 0 {
			p.logger.Debug("candidate blocks found", "matcher", m.Name(), "count", len(blocks))
			return blocks
		}
	}
	return nil
}

// parseBlock extracts a single record from a candidate block. Returns
// (nil, nil) when the block is not a real entry. Panics from hostile
// markup are contained here so one bad block cannot abort the page.
func (p *RecordParser) parseBlock(block Block, source string) (rec *types.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, err = nil, fmt.Errorf("block extraction panicked: %v", r)
		}
	}()

	rec = &types.Record{
		Source:     source,
		ScrapedAt:  time.Now(),
		Name:       block.NameText(),
		MugshotURL: block.ImageURL(),
	}

	text := block.Text()
	for _, rule := range fieldRules {
		if value := p.extractor.Extract(text, rule); value != "" {
			rule.Assign(rec, value)
		}
	}

	return p.pipe.Process(rec)
}
