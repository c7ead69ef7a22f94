package services

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/notify"
	"github.com/adanyl0v/go-tasks/internal/storage"
)

type fakeIdentityStore struct {
	mu       sync.Mutex
	users    map[string]models.User
	sessions map[string]models.Session
}

var _ storage.IdentityStore = (*fakeIdentityStore)(nil)

func newFakeIdentityStore() *fakeIdentityStore {
	return &fakeIdentityStore{
		users:    make(map[string]models.User),
		sessions: make(map[string]models.Session),
	}
}

func (f *fakeIdentityStore) addUser(id, username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id] = models.User{ID: id, Username: username}
}

func (f *fakeIdentityStore) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username {
			return storage.ErrAlreadyExists
		}
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeIdentityStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (f *fakeIdentityStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeIdentityStore) CreateSession(_ context.Context, session *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.ID] = *session
	return nil
}

func (f *fakeIdentityStore) GetSessionByID(_ context.Context, id string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &s, nil
}

func (f *fakeIdentityStore) GetSessionByRefreshToken(_ context.Context, refreshToken, fingerprint string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.RefreshToken == refreshToken && s.Fingerprint == fingerprint {
			return &s, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeIdentityStore) UpdateSession(_ context.Context, session *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[session.ID]; !ok {
		return storage.ErrNotFound
	}
	f.sessions[session.ID] = *session
	return nil
}

func (f *fakeIdentityStore) DeleteSessionsByUserID(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeIdentityStore) sessionsOf(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.sessions {
		if s.UserID == userID {
			n++
		}
	}
	return n
}

// WithinTx restores the previous state when fn fails.
func (f *fakeIdentityStore) WithinTx(_ context.Context, fn func(storage.IdentityStore) error) error {
	f.mu.Lock()
	users := maps.Clone(f.users)
	sessions := maps.Clone(f.sessions)
	f.mu.Unlock()

	err := fn(f)
	if err != nil {
		f.mu.Lock()
		f.users = users
		f.sessions = sessions
		f.mu.Unlock()
	}
	return err
}

type fakeTaskStore struct {
	mu     sync.Mutex
	seq    int
	tasks  map[string]models.Task
	failOn string

	// beforeShare runs inside AddSharedUser ahead of the write, with the
	// lock held, and may change the stored task.
	beforeShare func(task *models.Task)
}

var (
	_ storage.TaskRepository      = (*fakeTaskStore)(nil)
	_ storage.AnalyticsRepository = (*fakeTaskStore)(nil)
)

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[string]models.Task)}
}

func (f *fakeTaskStore) fail(op string) error {
	if f.failOn == op {
		return fmt.Errorf("%s: store unavailable", op)
	}
	return nil
}

func cloneTask(t models.Task) *models.Task {
	t.SharedWith = slices.Clone(t.SharedWith)
	t.Attachments = slices.Clone(t.Attachments)
	return &t
}

// put stores a task as is, bypassing CreateTask.
func (f *fakeTaskStore) put(task models.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if task.SharedWith == nil {
		task.SharedWith = []string{}
	}
	f.tasks[task.ID] = task
}

func (f *fakeTaskStore) CreateTask(_ context.Context, task *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("create"); err != nil {
		return err
	}
	f.seq++
	task.ID = fmt.Sprintf("task-%d", f.seq)
	f.tasks[task.ID] = *cloneTask(*task)
	return nil
}

func (f *fakeTaskStore) GetTaskByID(_ context.Context, id string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("get"); err != nil {
		return nil, err
	}
	t, ok := f.tasks[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneTask(t), nil
}

func (f *fakeTaskStore) ListTasks(_ context.Context, filter storage.TaskFilter) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Task
	for _, t := range f.tasks {
		if t.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, cloneTask(t))
	}
	slices.SortFunc(out, func(a, b *models.Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (f *fakeTaskStore) ListTasksSharedWith(_ context.Context, userID string) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Task
	for _, t := range f.tasks {
		if slices.Contains(t.SharedWith, userID) {
			out = append(out, cloneTask(t))
		}
	}
	return out, nil
}

func (f *fakeTaskStore) UpdateTask(_ context.Context, id, ownerID string, update storage.TaskUpdate) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("update"); err != nil {
		return nil, err
	}
	t, ok := f.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, storage.ErrNotFound
	}
	if update.Title != nil {
		t.Title = *update.Title
	}
	if update.Description != nil {
		t.Description = *update.Description
	}
	if update.Status != nil {
		t.Status = *update.Status
	}
	if update.ClearDueDate {
		t.DueDate = nil
	} else if update.DueDate != nil {
		t.DueDate = update.DueDate
	}
	if update.Attachments != nil {
		t.Attachments = *update.Attachments
	}
	t.UpdatedAt = update.UpdatedAt
	f.tasks[id] = t
	return cloneTask(t), nil
}

func (f *fakeTaskStore) DeleteTask(_ context.Context, id, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return storage.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskStore) AddSharedUser(_ context.Context, id, ownerID, userID string, now time.Time) (*models.Task, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("share"); err != nil {
		return nil, false, err
	}
	t, ok := f.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, false, storage.ErrNotFound
	}
	if f.beforeShare != nil {
		f.beforeShare(&t)
	}
	if slices.Contains(t.SharedWith, userID) {
		f.tasks[id] = t
		return cloneTask(t), false, nil
	}
	t.SharedWith = append(slices.Clone(t.SharedWith), userID)
	t.UpdatedAt = now
	f.tasks[id] = t
	return cloneTask(t), true, nil
}

func (f *fakeTaskStore) CountTasksByStatus(_ context.Context, ownerID string) ([]models.StatusCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[models.TaskStatus]int64)
	for _, t := range f.tasks {
		if t.OwnerID == ownerID {
			counts[t.Status]++
		}
	}
	var out []models.StatusCount
	for status, n := range counts {
		out = append(out, models.StatusCount{Status: status, Count: n})
	}
	return out, nil
}

func (f *fakeTaskStore) CountTasksCreatedPerDay(_ context.Context, ownerID string, since time.Time) ([]models.DailyCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int64)
	for _, t := range f.tasks {
		if t.OwnerID == ownerID && !t.CreatedAt.Before(since) {
			counts[t.CreatedAt.UTC().Format(time.DateOnly)]++
		}
	}
	var out []models.DailyCount
	for day, n := range counts {
		out = append(out, models.DailyCount{Day: day, Count: n})
	}
	return out, nil
}

type published struct {
	UserID string
	Event  notify.Event
}

// fakePublisher pretends every recipient has `connections` open sockets.
type fakePublisher struct {
	mu          sync.Mutex
	connections int
	events      []published
}

func (f *fakePublisher) Publish(userID string, ev notify.Event) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{UserID: userID, Event: ev})
	return f.connections
}

func (f *fakePublisher) sent() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.events)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
