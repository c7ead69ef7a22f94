package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/notify"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionExpired       = errors.New("session expired")
	ErrTaskNotFound         = errors.New("task not found")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidTaskStatus    = errors.New("invalid task status")
	ErrInvalidShareTarget   = errors.New("task cannot be shared with its owner")
)

type AuthService interface {
	// Login authenticates the user by username and password.
	//
	// It deletes all sessions with the same user ID and creates
	// a new session and generates a new JWT token pair.
	//
	// It returns ErrUserNotFound if the user with the given
	// username doesn't exist or ErrUserPasswordMismatch if the
	// given password doesn't match the user's password.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Refresh updates the session with the given refresh token.
	//
	// It returns ErrSessionNotFound if the session with the
	// given refresh token doesn't exist or ErrSessionExpired
	// if the session is expired.
	Refresh(ctx context.Context, params RefreshParams) (*LoginResult, error)

	// Register a user with the given username and password.
	//
	// It hashes the password, generates a unique ID and creates a
	// session with the given fingerprint and a fresh JWT token pair.
	//
	// It returns ErrUserAlreadyExists if the username is taken.
	Register(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Logout invalidates all sessions with the given user ID.
	Logout(ctx context.Context, userID string) error

	// ParseJWTToken parses the given JWT token and returns the registered
	// claims or jwt.ErrTokenExpired if the token is expired.
	ParseJWTToken(token string) (*jwt.RegisteredClaims, error)
}

type SessionService interface {
	// GetSessionByID returns ErrSessionNotFound or ErrSessionExpired.
	GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error)
}

type UserService interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type TaskService interface {
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// GetTasks returns the tasks owned by the user, newest first.
	GetTasks(ctx context.Context, params GetTasksParams) ([]*models.Task, error)

	// GetTask returns a task the requester owns or that is shared with them.
	GetTask(ctx context.Context, taskID, requesterID string) (*models.Task, error)

	// GetSharedTasks returns the tasks whose shared-with set contains the user.
	GetSharedTasks(ctx context.Context, userID string) ([]*models.Task, error)

	// UpdateTask changes the fields set in params. Only the owner may do so.
	// A status change is announced to every shared user.
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	// DeleteTask removes the task. Only the owner may do so.
	DeleteTask(ctx context.Context, params DeleteTaskParams) error

	// ShareTask adds the target user to the task's shared-with set.
	//
	// It is a no-op if the user is already there. On an actual addition
	// exactly one notification is published to the target user; the write
	// is kept even if nobody receives it.
	//
	// It returns ErrTaskNotFound, ErrForbidden if the requester is not
	// the owner, ErrInvalidShareTarget or ErrUserNotFound for the target.
	ShareTask(ctx context.Context, params ShareTaskParams) (*ShareTaskResult, error)
}

type AnalyticsService interface {
	// Overview counts the user's tasks per status. Statuses without
	// tasks are left out.
	Overview(ctx context.Context, userID string) ([]models.StatusCount, error)

	// Trends counts the user's tasks created per UTC day over the
	// trailing TrendWindow, oldest day first.
	Trends(ctx context.Context, userID string) ([]models.DailyCount, error)
}

// Publisher is the best-effort side of the notification channel.
// Publish returns how many open connections accepted the event.
type Publisher interface {
	Publish(userID string, ev notify.Event) int
}

type LoginParams struct {
	Username    string
	Password    string
	Fingerprint string
}

type LoginResult struct {
	UserID                string
	SessionID             string
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

type RefreshParams struct {
	RefreshToken string
	Fingerprint  string
}

type CreateTaskParams struct {
	OwnerID     string
	Title       string
	Description string
	// Empty means models.StatusPending.
	Status      string
	DueDate     *time.Time
	Attachments []models.Attachment
}

type GetTasksParams struct {
	UserID string
	// Empty means any status.
	Status string
	Offset uint32
	Limit  uint32
}

type UpdateTaskParams struct {
	ID           string
	UserID       string
	Title        *string
	Description  *string
	Status       *string
	DueDate      *time.Time
	ClearDueDate bool
	Attachments  *[]models.Attachment
}

type DeleteTaskParams struct {
	ID     string
	UserID string
}

type ShareTaskParams struct {
	TaskID      string
	RequesterID string
	TargetID    string
}

type ShareTaskResult struct {
	Task *models.Task
	// Added is false when the target already had access.
	Added bool
	// Delivered counts the connections that accepted the notification.
	Delivered int
}
