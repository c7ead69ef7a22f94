// Package mongo keeps task documents in a MongoDB collection.
package mongo

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adanyl0v/go-tasks/internal/storage"
)

const tasksCollection = "tasks"

// Store implements storage.TaskRepository and storage.AnalyticsRepository.
type Store struct {
	logger zerolog.Logger
	tasks  *mongo.Collection
}

var (
	_ storage.TaskRepository      = (*Store)(nil)
	_ storage.AnalyticsRepository = (*Store)(nil)
)

func New(logger zerolog.Logger, db *mongo.Database) *Store {
	return &Store{
		logger: logger,
		tasks:  db.Collection(tasksCollection),
	}
}

// EnsureIndexes creates the indexes behind the owner, shared and trend queries.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("owner_created"),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("owner_status"),
		},
		{
			Keys:    bson.D{{Key: "shared_with", Value: 1}},
			Options: options.Index().SetName("shared_with"),
		},
	}

	names, err := s.tasks.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to create task indexes")
		return fmt.Errorf("failed to create task indexes: %w", err)
	}
	s.logger.Info().
		Strs("indexes", names).
		Msg("ensured task indexes")
	return nil
}
