package pipeline

import (
	"log/slog"
	"strings"

	"bustedscan/internal/types"
)

// Middleware processes a record and returns the (possibly modified)
// record. Return nil to drop the record.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms a record. Return nil to drop the record.
	Process(rec *types.Record) (*types.Record, error)
}

// Pipeline chains middleware processors together.
type Pipeline struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates a new Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// Use adds a middleware to the pipeline chain.
func (p *Pipeline) Use(mw Middleware) {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
}

// Process runs the record through all middleware in order.
func (p *Pipeline) Process(rec *types.Record) (*types.Record, error) {
	current := rec

	for _, mw := range p.middlewares {
		result, err := mw.Process(current)
		if err != nil {
			return nil, err
		}
		if result == nil {
			p.logger.Debug("record dropped", "stage", mw.Name(), "source", rec.Source)
			return nil, nil
		}
		current = result
	}

	return current, nil
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middlewares)
}

// --- Built-in Middleware ---

// TrimMiddleware trims whitespace from all string fields.
type TrimMiddleware struct{}

func (m *TrimMiddleware) Name() string { return "trim" }

func (m *TrimMiddleware) Process(rec *types.Record) (*types.Record, error) {
	for _, f := range []*string{
		&rec.Name, &rec.BookingDate, &rec.Charges, &rec.Age, &rec.Height,
		&rec.Weight, &rec.HairColor, &rec.EyeColor, &rec.Sex, &rec.Race,
		&rec.ArrestingAgency, &rec.BondAmount, &rec.MugshotURL,
	} {
		*f = strings.TrimSpace(*f)
	}
	return rec, nil
}

// RequireNameMiddleware drops records without a name. A candidate block
// that yields no name was never a real entry.
type RequireNameMiddleware struct{}

func (m *RequireNameMiddleware) Name() string { return "require_name" }

func (m *RequireNameMiddleware) Process(rec *types.Record) (*types.Record, error) {
	if rec.Name == "" {
		return nil, nil
	}
	return rec, nil
}
