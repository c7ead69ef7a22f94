package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

var ErrUnknownTaskStatus = errors.New("unknown task status")

// TaskStatus is closed: only the values declared below parse.
type TaskStatus string

const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

// TaskStatuses lists every status in workflow order.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}
}

func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTaskStatus, s)
	}
	return status, nil
}

func (s TaskStatus) Valid() bool {
	return slices.Contains(TaskStatuses(), s)
}

func (s TaskStatus) String() string {
	return string(s)
}

func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var raw string
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	status, err := ParseTaskStatus(raw)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

type Attachment struct {
	Name string
	URL  string
}

type Task struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Status      TaskStatus
	DueDate     *time.Time
	SharedWith  []string
	Attachments []Attachment
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Task) IsOwner(userID string) bool {
	return t.OwnerID == userID
}

func (t *Task) IsSharedWith(userID string) bool {
	return slices.Contains(t.SharedWith, userID)
}

// CanView reports whether the user owns the task or it is shared with them.
func (t *Task) CanView(userID string) bool {
	return t.IsOwner(userID) || t.IsSharedWith(userID)
}
