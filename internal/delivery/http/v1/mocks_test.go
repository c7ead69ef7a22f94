package v1

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/services"
)

var errUnexpectedCall = errors.New("unexpected call")

type mockAuthService struct {
	loginFn    func(ctx context.Context, params services.LoginParams) (*services.LoginResult, error)
	refreshFn  func(ctx context.Context, params services.RefreshParams) (*services.LoginResult, error)
	registerFn func(ctx context.Context, params services.LoginParams) (*services.LoginResult, error)
	logoutFn   func(ctx context.Context, userID string) error
	parseFn    func(token string) (*jwt.RegisteredClaims, error)
}

func (m *mockAuthService) Login(ctx context.Context, params services.LoginParams) (*services.LoginResult, error) {
	if m.loginFn == nil {
		return nil, errUnexpectedCall
	}
	return m.loginFn(ctx, params)
}

func (m *mockAuthService) Refresh(ctx context.Context, params services.RefreshParams) (*services.LoginResult, error) {
	if m.refreshFn == nil {
		return nil, errUnexpectedCall
	}
	return m.refreshFn(ctx, params)
}

func (m *mockAuthService) Register(ctx context.Context, params services.LoginParams) (*services.LoginResult, error) {
	if m.registerFn == nil {
		return nil, errUnexpectedCall
	}
	return m.registerFn(ctx, params)
}

func (m *mockAuthService) Logout(ctx context.Context, userID string) error {
	if m.logoutFn == nil {
		return errUnexpectedCall
	}
	return m.logoutFn(ctx, userID)
}

func (m *mockAuthService) ParseJWTToken(token string) (*jwt.RegisteredClaims, error) {
	if m.parseFn == nil {
		return nil, errUnexpectedCall
	}
	return m.parseFn(token)
}

type mockSessionService struct {
	getFn func(ctx context.Context, sessionID string) (*models.Session, error)
}

func (m *mockSessionService) GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error) {
	if m.getFn == nil {
		return nil, errUnexpectedCall
	}
	return m.getFn(ctx, sessionID)
}

type mockUserService struct {
	byIDFn       func(ctx context.Context, userID string) (*models.User, error)
	byUsernameFn func(ctx context.Context, username string) (*models.User, error)
}

func (m *mockUserService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	if m.byIDFn == nil {
		return nil, errUnexpectedCall
	}
	return m.byIDFn(ctx, userID)
}

func (m *mockUserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.byUsernameFn == nil {
		return nil, errUnexpectedCall
	}
	return m.byUsernameFn(ctx, username)
}

type mockTaskService struct {
	createFn    func(ctx context.Context, params services.CreateTaskParams) (*models.Task, error)
	listFn      func(ctx context.Context, params services.GetTasksParams) ([]*models.Task, error)
	getFn       func(ctx context.Context, taskID, requesterID string) (*models.Task, error)
	sharedFn    func(ctx context.Context, userID string) ([]*models.Task, error)
	updateFn    func(ctx context.Context, params services.UpdateTaskParams) (*models.Task, error)
	deleteFn    func(ctx context.Context, params services.DeleteTaskParams) error
	shareTaskFn func(ctx context.Context, params services.ShareTaskParams) (*services.ShareTaskResult, error)
}

func (m *mockTaskService) CreateTask(ctx context.Context, params services.CreateTaskParams) (*models.Task, error) {
	if m.createFn == nil {
		return nil, errUnexpectedCall
	}
	return m.createFn(ctx, params)
}

func (m *mockTaskService) GetTasks(ctx context.Context, params services.GetTasksParams) ([]*models.Task, error) {
	if m.listFn == nil {
		return nil, errUnexpectedCall
	}
	return m.listFn(ctx, params)
}

func (m *mockTaskService) GetTask(ctx context.Context, taskID, requesterID string) (*models.Task, error) {
	if m.getFn == nil {
		return nil, errUnexpectedCall
	}
	return m.getFn(ctx, taskID, requesterID)
}

func (m *mockTaskService) GetSharedTasks(ctx context.Context, userID string) ([]*models.Task, error) {
	if m.sharedFn == nil {
		return nil, errUnexpectedCall
	}
	return m.sharedFn(ctx, userID)
}

func (m *mockTaskService) UpdateTask(ctx context.Context, params services.UpdateTaskParams) (*models.Task, error) {
	if m.updateFn == nil {
		return nil, errUnexpectedCall
	}
	return m.updateFn(ctx, params)
}

func (m *mockTaskService) DeleteTask(ctx context.Context, params services.DeleteTaskParams) error {
	if m.deleteFn == nil {
		return errUnexpectedCall
	}
	return m.deleteFn(ctx, params)
}

func (m *mockTaskService) ShareTask(ctx context.Context, params services.ShareTaskParams) (*services.ShareTaskResult, error) {
	if m.shareTaskFn == nil {
		return nil, errUnexpectedCall
	}
	return m.shareTaskFn(ctx, params)
}

type mockAnalyticsService struct {
	overviewFn func(ctx context.Context, userID string) ([]models.StatusCount, error)
	trendsFn   func(ctx context.Context, userID string) ([]models.DailyCount, error)
}

func (m *mockAnalyticsService) Overview(ctx context.Context, userID string) ([]models.StatusCount, error) {
	if m.overviewFn == nil {
		return nil, errUnexpectedCall
	}
	return m.overviewFn(ctx, userID)
}

func (m *mockAnalyticsService) Trends(ctx context.Context, userID string) ([]models.DailyCount, error) {
	if m.trendsFn == nil {
		return nil, errUnexpectedCall
	}
	return m.trendsFn(ctx, userID)
}
