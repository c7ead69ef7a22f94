package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-tasks/internal/models"
)

type getUserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func newGetUserResponse(user *models.User) getUserResponse {
	return getUserResponse{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
}

func (h *handlerImpl) HandleGetMe(c *gin.Context) {
	userID := currentUserID(c)

	user, err := h.users.GetUserByID(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to get current user")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, newGetUserResponse(user))
}

// HandleFindUser resolves ?username= to a user so clients can learn the id
// to share a task with.
func (h *handlerImpl) HandleFindUser(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		abort(c, newBadRequestError(errUsernameRequired.Error()))
		return
	}

	user, err := h.users.GetUserByUsername(c, username)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("username", username).
			Msg("failed to find user")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, newGetUserResponse(user))
}
