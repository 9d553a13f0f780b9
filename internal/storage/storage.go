package storage

import (
	"fmt"
	"log/slog"

	"bustedscan/internal/config"
	"bustedscan/internal/types"
)

// Storage is the interface for record sinks.
type Storage interface {
	// Store persists one source's batch of new records.
	Store(source string, records []types.Record) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// New creates the configured storage backend.
func New(cfg *config.StorageConfig, logger *slog.Logger) (Storage, error) {
	switch cfg.Type {
	case "csv", "":
		return NewCSVStorage(cfg.OutputDir, logger)
	case "mongo":
		return NewMongoStorage(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
