package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/adanyl0v/go-tasks/internal/models"
)

const dayFormat = "%Y-%m-%d"

func (s *Store) CountTasksByStatus(ctx context.Context, ownerID string) ([]models.StatusCount, error) {
	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	err := s.aggregate(ctx, statusCountsPipeline(ownerID), &rows)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("owner_id", ownerID).
			Msg("failed to count tasks by status")
		return nil, err
	}

	counts := make([]models.StatusCount, len(rows))
	for i, r := range rows {
		counts[i] = models.StatusCount{
			Status: models.TaskStatus(r.Status),
			Count:  r.Count,
		}
	}
	return counts, nil
}

func (s *Store) CountTasksCreatedPerDay(ctx context.Context, ownerID string, since time.Time) ([]models.DailyCount, error) {
	var rows []struct {
		Day   string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	err := s.aggregate(ctx, dailyCountsPipeline(ownerID, since), &rows)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("owner_id", ownerID).
			Time("since", since).
			Msg("failed to count tasks per day")
		return nil, err
	}

	counts := make([]models.DailyCount, len(rows))
	for i, r := range rows {
		counts[i] = models.DailyCount{Day: r.Day, Count: r.Count}
	}
	return counts, nil
}

func (s *Store) aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	cursor, err := s.tasks.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer func() { _ = cursor.Close(ctx) }()

	return cursor.All(ctx, out)
}

func statusCountsPipeline(ownerID string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "owner_id", Value: ownerID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

func dailyCountsPipeline(ownerID string, since time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "owner_id", Value: ownerID},
			{Key: "created_at", Value: bson.D{{Key: "$gte", Value: since}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: dayFormat},
				{Key: "date", Value: "$created_at"},
				{Key: "timezone", Value: "UTC"},
			}}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}
