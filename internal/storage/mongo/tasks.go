package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/storage"
)

// Page size bounds for ListTasks.
const (
	defaultListLimit = 32
	maxListLimit     = 256
)

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	doc := newTaskDocument(task)

	res, err := s.tasks.InsertOne(ctx, doc)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("owner_id", task.OwnerID).
			Msg("failed to insert task")
		return err
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		s.logger.Error().
			Interface("inserted_id", res.InsertedID).
			Msg("unexpected inserted id type")
		return errors.New("unexpected inserted id type")
	}
	task.ID = id.Hex()
	if task.SharedWith == nil {
		task.SharedWith = []string{}
	}

	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("inserted task")
	return nil
}

func (s *Store) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, storage.ErrNotFound
	}

	var doc taskDocument
	err = s.tasks.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to find task")
		return nil, err
	}
	return doc.toModel(), nil
}

func (s *Store) ListTasks(ctx context.Context, filter storage.TaskFilter) ([]*models.Task, error) {
	query := bson.M{"owner_id": filter.OwnerID}
	if filter.Status != "" {
		query["status"] = filter.Status.String()
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(filter.Offset).
		SetLimit(clampLimit(filter.Limit))

	tasks, err := s.findTasks(ctx, query, opts)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("owner_id", filter.OwnerID).
			Msg("failed to find tasks by owner")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Str("owner_id", filter.OwnerID).
		Msg("selected tasks by owner")
	return tasks, nil
}

func (s *Store) ListTasksSharedWith(ctx context.Context, userID string) ([]*models.Task, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}})

	tasks, err := s.findTasks(ctx, bson.M{"shared_with": userID}, opts)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to find shared tasks")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", userID).
		Msg("selected shared tasks")
	return tasks, nil
}

func (s *Store) findTasks(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Task, error) {
	cursor, err := s.tasks.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	var docs []taskDocument
	err = cursor.All(ctx, &docs)
	if err != nil {
		return nil, err
	}

	tasks := make([]*models.Task, len(docs))
	for i := range docs {
		tasks[i] = docs[i].toModel()
	}
	return tasks, nil
}

func (s *Store) UpdateTask(ctx context.Context, id, ownerID string, update storage.TaskUpdate) (*models.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, storage.ErrNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc taskDocument
	err = s.tasks.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid, "owner_id": ownerID},
		buildTaskUpdate(update),
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to update task")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", id).
		Msg("updated task")
	return doc.toModel(), nil
}

func (s *Store) DeleteTask(ctx context.Context, id, ownerID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return storage.ErrNotFound
	}

	res, err := s.tasks.DeleteOne(ctx, bson.M{"_id": oid, "owner_id": ownerID})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return err
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	s.logger.Debug().
		Str("task_id", id).
		Msg("deleted task")
	return nil
}

func (s *Store) AddSharedUser(ctx context.Context, id, ownerID, userID string, now time.Time) (*models.Task, bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false, storage.ErrNotFound
	}

	// The $ne guard keeps existing members from matching, so a returned
	// document means this call added the user.
	filter := bson.M{
		"_id":         oid,
		"owner_id":    ownerID,
		"shared_with": bson.M{"$ne": userID},
	}
	update := bson.M{
		"$addToSet": bson.M{"shared_with": userID},
		"$set":      bson.M{"updated_at": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc taskDocument
	err = s.tasks.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		s.logger.Debug().
			Str("task_id", id).
			Str("user_id", userID).
			Msg("added shared user")
		return doc.toModel(), true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Str("user_id", userID).
			Msg("failed to add shared user")
		return nil, false, err
	}

	err = s.tasks.FindOne(ctx, bson.M{"_id": oid, "owner_id": ownerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, storage.ErrNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to get task")
		return nil, false, err
	}
	return doc.toModel(), false, nil
}

func buildTaskUpdate(update storage.TaskUpdate) bson.M {
	set := bson.M{"updated_at": update.UpdatedAt}
	unset := bson.M{}

	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Status != nil {
		set["status"] = update.Status.String()
	}
	if update.ClearDueDate {
		unset["due_date"] = ""
	} else if update.DueDate != nil {
		set["due_date"] = *update.DueDate
	}
	if update.Attachments != nil {
		set["attachments"] = newAttachmentDocuments(*update.Attachments)
	}

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	return doc
}

func clampLimit(limit int64) int64 {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}
