package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/notify"
	"github.com/adanyl0v/go-tasks/internal/storage"
)

type taskServiceImpl struct {
	logger    zerolog.Logger
	tasks     storage.TaskRepository
	users     storage.UserRepository
	publisher Publisher
	now       func() time.Time
}

func NewTaskService(
	logger zerolog.Logger,
	tasks storage.TaskRepository,
	users storage.UserRepository,
	publisher Publisher,
) TaskService {
	return &taskServiceImpl{
		logger:    logger,
		tasks:     tasks,
		users:     users,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	status := models.StatusPending
	if params.Status != "" {
		var err error
		status, err = models.ParseTaskStatus(params.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTaskStatus, params.Status)
		}
	}

	now := s.now().UTC()
	task := &models.Task{
		OwnerID:     params.OwnerID,
		Title:       params.Title,
		Description: params.Description,
		Status:      status,
		DueDate:     params.DueDate,
		SharedWith:  []string{},
		Attachments: params.Attachments,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.tasks.CreateTask(ctx, task)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.OwnerID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) GetTasks(ctx context.Context, params GetTasksParams) ([]*models.Task, error) {
	filter := storage.TaskFilter{
		OwnerID: params.UserID,
		Offset:  int64(params.Offset),
		Limit:   int64(params.Limit),
	}
	if params.Status != "" {
		status, err := models.ParseTaskStatus(params.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTaskStatus, params.Status)
		}
		filter.Status = status
	}

	tasks, err := s.tasks.ListTasks(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("count", len(tasks)).
		Str("user_id", params.UserID).
		Msg("tasks found")
	return tasks, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, taskID, requesterID string) (*models.Task, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !task.CanView(requesterID) {
		s.logger.Warn().
			Str("task_id", taskID).
			Str("user_id", requesterID).
			Msg("task is not visible to user")
		return nil, ErrForbidden
	}
	return task, nil
}

func (s *taskServiceImpl) GetSharedTasks(ctx context.Context, userID string) ([]*models.Task, error) {
	tasks, err := s.tasks.ListTasksSharedWith(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("count", len(tasks)).
		Str("user_id", userID).
		Msg("shared tasks found")
	return tasks, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	update := storage.TaskUpdate{
		Title:        params.Title,
		Description:  params.Description,
		DueDate:      params.DueDate,
		ClearDueDate: params.ClearDueDate,
		Attachments:  params.Attachments,
		UpdatedAt:    s.now().UTC(),
	}
	if params.Status != nil {
		status, err := models.ParseTaskStatus(*params.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTaskStatus, *params.Status)
		}
		update.Status = &status
	}

	current, err := s.getOwnedTask(ctx, params.ID, params.UserID)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.UpdateTask(ctx, params.ID, params.UserID, update)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.OwnerID).
		Msg("updated task")

	if task.Status != current.Status {
		s.announceStatusChange(task)
	}
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, params DeleteTaskParams) error {
	_, err := s.getOwnedTask(ctx, params.ID, params.UserID)
	if err != nil {
		return err
	}

	err = s.tasks.DeleteTask(ctx, params.ID, params.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	s.logger.Info().
		Str("task_id", params.ID).
		Str("user_id", params.UserID).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) ShareTask(ctx context.Context, params ShareTaskParams) (*ShareTaskResult, error) {
	task, err := s.getOwnedTask(ctx, params.TaskID, params.RequesterID)
	if err != nil {
		return nil, err
	}

	if params.TargetID == "" || task.IsOwner(params.TargetID) {
		return nil, ErrInvalidShareTarget
	}

	_, err = s.users.GetUserByID(ctx, params.TargetID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().
				Str("task_id", task.ID).
				Str("target_id", params.TargetID).
				Msg("share target not found")
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := s.now().UTC()
	task, added, err := s.tasks.AddSharedUser(ctx, task.ID, task.OwnerID, params.TargetID, now)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	result := &ShareTaskResult{Task: task, Added: added}
	if !added {
		s.logger.Info().
			Str("task_id", task.ID).
			Str("target_id", params.TargetID).
			Msg("task already shared with user")
		return result, nil
	}

	// The write above stands regardless of how many connections get this.
	result.Delivered = s.publisher.Publish(params.TargetID, notify.Event{
		Kind:    notify.KindTaskShared,
		TaskID:  task.ID,
		Message: fmt.Sprintf("Task %q has been shared with you", task.Title),
	})

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.OwnerID).
		Str("target_id", params.TargetID).
		Int("delivered", result.Delivered).
		Msg("shared task")
	return result, nil
}

func (s *taskServiceImpl) announceStatusChange(task *models.Task) {
	ev := notify.Event{
		Kind:    notify.KindStatusChanged,
		TaskID:  task.ID,
		Message: fmt.Sprintf("Task %q is now %s", task.Title, task.Status),
	}

	delivered := 0
	for _, userID := range task.SharedWith {
		delivered += s.publisher.Publish(userID, ev)
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Int("recipients", len(task.SharedWith)).
		Int("delivered", delivered).
		Msg("announced status change")
}

func (s *taskServiceImpl) getTask(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := s.tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Info().
				Str("task_id", taskID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// getOwnedTask returns ErrForbidden when the task exists but belongs
// to somebody else.
func (s *taskServiceImpl) getOwnedTask(ctx context.Context, taskID, userID string) (*models.Task, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !task.IsOwner(userID) {
		s.logger.Warn().
			Str("task_id", taskID).
			Str("user_id", userID).
			Msg("user is not the task owner")
		return nil, ErrForbidden
	}
	return task, nil
}
