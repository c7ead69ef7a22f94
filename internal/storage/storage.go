// Package storage declares the persistence ports used by the services.
//
// Users and sessions live in PostgreSQL (package postgres), task documents
// in MongoDB (package mongo).
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/adanyl0v/go-tasks/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type UserRepository interface {
	// CreateUser returns ErrAlreadyExists if the username is taken.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSessionByID(ctx context.Context, id string) (*models.Session, error)
	GetSessionByRefreshToken(ctx context.Context, refreshToken, fingerprint string) (*models.Session, error)
	UpdateSession(ctx context.Context, session *models.Session) error
	// DeleteSessionsByUserID returns the number of removed sessions.
	DeleteSessionsByUserID(ctx context.Context, userID string) (int64, error)
}

// IdentityStore groups the repositories that must change atomically
// on register and login.
type IdentityStore interface {
	UserRepository
	SessionRepository
	// WithinTx runs fn with repositories bound to a single transaction.
	// The transaction commits only if fn returns nil.
	WithinTx(ctx context.Context, fn func(IdentityStore) error) error
}

type TaskFilter struct {
	OwnerID string
	Status  models.TaskStatus
	Offset  int64
	Limit   int64
}

type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	DueDate     *time.Time
	// ClearDueDate unsets the due date, DueDate is ignored.
	ClearDueDate bool
	Attachments  *[]models.Attachment
	UpdatedAt    time.Time
}

type TaskRepository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]*models.Task, error)
	ListTasksSharedWith(ctx context.Context, userID string) ([]*models.Task, error)
	// UpdateTask applies the update to a task owned by ownerID and
	// returns the stored result.
	UpdateTask(ctx context.Context, id, ownerID string, update TaskUpdate) (*models.Task, error)
	DeleteTask(ctx context.Context, id, ownerID string) error
	// AddSharedUser puts userID into the task's shared-with set and
	// returns the stored task. It reports false when the user was
	// already there.
	AddSharedUser(ctx context.Context, id, ownerID, userID string, now time.Time) (*models.Task, bool, error)
}

type AnalyticsRepository interface {
	CountTasksByStatus(ctx context.Context, ownerID string) ([]models.StatusCount, error)
	CountTasksCreatedPerDay(ctx context.Context, ownerID string, since time.Time) ([]models.DailyCount, error)
}
