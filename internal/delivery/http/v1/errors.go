package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-tasks/internal/services"
)

var (
	errInvalidRequestBody      = errors.New("invalid request body")
	errInvalidQuery            = errors.New("invalid query parameters")
	errMandatoryCookieNotFound = errors.New("mandatory cookie not found")
	errAccessTokenRequired     = errors.New("access token required")
	errInvalidAccessToken      = errors.New("invalid access token")
	errFingerprintMismatch     = errors.New("fingerprint mismatch")
	errUsernameRequired        = errors.New("username is required")
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newForbiddenError(message string) apiError {
	return newAPIError(http.StatusForbidden, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newConflictError(message string) apiError {
	return newAPIError(http.StatusConflict, message)
}

// newServiceError maps a services sentinel onto its response. Anything
// unknown is a 500 without details.
func newServiceError(err error) apiError {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return newForbiddenError(services.ErrForbidden.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		return newNotFoundError(services.ErrTaskNotFound.Error())
	case errors.Is(err, services.ErrUserNotFound):
		return newNotFoundError(services.ErrUserNotFound.Error())
	case errors.Is(err, services.ErrInvalidTaskStatus):
		return newBadRequestError(services.ErrInvalidTaskStatus.Error())
	case errors.Is(err, services.ErrInvalidShareTarget):
		return newBadRequestError(services.ErrInvalidShareTarget.Error())
	case errors.Is(err, services.ErrUserAlreadyExists):
		return newConflictError(services.ErrUserAlreadyExists.Error())
	case errors.Is(err, services.ErrUserPasswordMismatch):
		return newUnauthorizedError(services.ErrUserPasswordMismatch.Error())
	case errors.Is(err, services.ErrSessionNotFound):
		return newUnauthorizedError(services.ErrSessionNotFound.Error())
	case errors.Is(err, services.ErrSessionExpired):
		return newUnauthorizedError(services.ErrSessionExpired.Error())
	default:
		return newStatusTextError(http.StatusInternalServerError)
	}
}
