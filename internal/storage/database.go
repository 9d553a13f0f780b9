package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bustedscan/internal/types"
)

// MongoStorage writes records to a MongoDB collection. Each document
// carries the record fingerprint so downstream consumers can join
// against the dedup cache.
type MongoStorage struct {
	client     *mongo.Client
	collection *mongo.Collection
	mu         sync.Mutex
	count      int
	logger     *slog.Logger
}

// NewMongoStorage creates a new MongoDB storage backend.
func NewMongoStorage(uri, database, collection string, logger *slog.Logger) (*MongoStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoStorage{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_storage"),
	}, nil
}

func (s *MongoStorage) Name() string { return "mongodb" }

func (s *MongoStorage) Store(source string, records []types.Record) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]any, len(records))
	for i := range records {
		rec := &records[i]
		docs[i] = bson.M{
			"fingerprint":      rec.Fingerprint(),
			"source":           source,
			"name":             rec.Name,
			"booking_date":     rec.BookingDate,
			"charges":          rec.Charges,
			"age":              rec.Age,
			"sex":              rec.Sex,
			"race":             rec.Race,
			"height":           rec.Height,
			"weight":           rec.Weight,
			"hair_color":       rec.HairColor,
			"eye_color":        rec.EyeColor,
			"arresting_agency": rec.ArrestingAgency,
			"bond_amount":      rec.BondAmount,
			"mugshot_url":      rec.MugshotURL,
			"scraped_at":       rec.ScrapedAt,
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.collection.InsertMany(ctx, docs); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}

	s.count += len(records)
	s.logger.Debug("records stored in mongodb", "source", source, "count", len(records), "total", s.count)
	return nil
}

func (s *MongoStorage) Close() error {
	s.logger.Info("mongodb storage closing", "total_records", s.count)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
