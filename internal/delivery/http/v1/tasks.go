package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/services"
)

type attachmentBody struct {
	Name string `json:"name" binding:"required,max=255"`
	URL  string `json:"url" binding:"required,url"`
}

type getTaskResponse struct {
	ID          string           `json:"id"`
	OwnerID     string           `json:"owner_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Status      string           `json:"status"`
	DueDate     *time.Time       `json:"due_date,omitempty"`
	SharedWith  []string         `json:"shared_with"`
	Attachments []attachmentBody `json:"attachments"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func newGetTaskResponse(task *models.Task) getTaskResponse {
	attachments := make([]attachmentBody, len(task.Attachments))
	for i, a := range task.Attachments {
		attachments[i] = attachmentBody{Name: a.Name, URL: a.URL}
	}
	sharedWith := task.SharedWith
	if sharedWith == nil {
		sharedWith = []string{}
	}

	return getTaskResponse{
		ID:          task.ID,
		OwnerID:     task.OwnerID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status.String(),
		DueDate:     task.DueDate,
		SharedWith:  sharedWith,
		Attachments: attachments,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func newGetTasksResponse(tasks []*models.Task) []getTaskResponse {
	response := make([]getTaskResponse, len(tasks))
	for i, task := range tasks {
		response[i] = newGetTaskResponse(task)
	}
	return response
}

func toAttachments(body []attachmentBody) []models.Attachment {
	if body == nil {
		return nil
	}
	attachments := make([]models.Attachment, len(body))
	for i, a := range body {
		attachments[i] = models.Attachment{Name: a.Name, URL: a.URL}
	}
	return attachments
}

type createTaskRequest struct {
	Title       string           `json:"title" binding:"required,max=255"`
	Description *string          `json:"description,omitempty"`
	Status      string           `json:"status,omitempty"`
	DueDate     *time.Time       `json:"due_date,omitempty"`
	Attachments []attachmentBody `json:"attachments,omitempty" binding:"omitempty,dive"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	userID := currentUserID(c)

	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	params := services.CreateTaskParams{
		OwnerID:     userID,
		Title:       req.Title,
		Status:      req.Status,
		DueDate:     req.DueDate,
		Attachments: toAttachments(req.Attachments),
	}
	if req.Description != nil {
		params.Description = *req.Description
	}

	task, err := h.tasks.CreateTask(c, params)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to create task")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusCreated, newGetTaskResponse(task))
}

type getTasksQuery struct {
	Status string `form:"status"`
	Offset uint32 `form:"offset"`
	Limit  uint32 `form:"limit" binding:"omitempty,max=256"`
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	userID := currentUserID(c)

	var query getTasksQuery
	err := c.ShouldBindQuery(&query)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind query")
		abort(c, newBadRequestError(errInvalidQuery.Error()))
		return
	}

	tasks, err := h.tasks.GetTasks(c, services.GetTasksParams{
		UserID: userID,
		Status: query.Status,
		Offset: query.Offset,
		Limit:  query.Limit,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to get tasks")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, newGetTasksResponse(tasks))
}

func (h *handlerImpl) HandleGetSharedTasks(c *gin.Context) {
	userID := currentUserID(c)

	tasks, err := h.tasks.GetSharedTasks(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to get shared tasks")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, newGetTasksResponse(tasks))
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	userID := currentUserID(c)
	taskID := c.Param("id")

	task, err := h.tasks.GetTask(c, taskID, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Str("user_id", userID).
			Msg("failed to get task")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, newGetTaskResponse(task))
}

type updateTaskRequest struct {
	Title        *string           `json:"title,omitempty" binding:"omitempty,min=1,max=255"`
	Description  *string           `json:"description,omitempty"`
	Status       *string           `json:"status,omitempty"`
	DueDate      *time.Time        `json:"due_date,omitempty"`
	ClearDueDate bool              `json:"clear_due_date,omitempty"`
	Attachments  *[]attachmentBody `json:"attachments,omitempty" binding:"omitempty,dive"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	userID := currentUserID(c)
	taskID := c.Param("id")

	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	params := services.UpdateTaskParams{
		ID:           taskID,
		UserID:       userID,
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
	}
	if req.Attachments != nil {
		attachments := toAttachments(*req.Attachments)
		if attachments == nil {
			attachments = []models.Attachment{}
		}
		params.Attachments = &attachments
	}

	task, err := h.tasks.UpdateTask(c, params)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Str("user_id", userID).
			Msg("failed to update task")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, newGetTaskResponse(task))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	userID := currentUserID(c)
	taskID := c.Param("id")

	err := h.tasks.DeleteTask(c, services.DeleteTaskParams{
		ID:     taskID,
		UserID: userID,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Str("user_id", userID).
			Msg("failed to delete task")
		abort(c, newServiceError(err))
		return
	}

	c.Status(http.StatusNoContent)
}

type shareTaskRequest struct {
	UserIDToShare string `json:"userIdToShare" binding:"required"`
}

func (h *handlerImpl) HandleShareTask(c *gin.Context) {
	userID := currentUserID(c)
	taskID := c.Param("id")

	var req shareTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	result, err := h.tasks.ShareTask(c, services.ShareTaskParams{
		TaskID:      taskID,
		RequesterID: userID,
		TargetID:    req.UserIDToShare,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Str("user_id", userID).
			Str("target_id", req.UserIDToShare).
			Msg("failed to share task")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, newGetTaskResponse(result.Task))
}
