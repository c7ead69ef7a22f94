package v1

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const (
	userIDCtxKey    = "user_id"
	sessionIDCtxKey = "session_id"
)

// accessTokenQuery carries the token for browser WebSocket clients,
// which cannot set an Authorization header.
const accessTokenQuery = "access_token"

func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	accessToken, err := extractAccessToken(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("no usable access token")
		abort(c, newUnauthorizedError(err.Error()))
		return
	}

	claims, err := h.auth.ParseJWTToken(accessToken)
	if err != nil {
		if !errors.Is(err, jwt.ErrTokenExpired) {
			h.logger.Error().
				Err(err).
				Msg("failed to parse token")
			abort(c, newUnauthorizedError(errInvalidAccessToken.Error()))
			return
		}

		result, ok := h.refresh(c)
		if !ok {
			return
		}

		claims, err = h.auth.ParseJWTToken(result.AccessToken)
		if err != nil {
			h.logger.Error().
				Err(err).
				Msg("failed to parse fresh token")
			abort(c, newUnauthorizedError(errInvalidAccessToken.Error()))
			return
		}
	}

	session, err := h.sessions.GetSessionByID(c, claims.Subject)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("session_id", claims.Subject).
			Msg("failed to get session")
		abort(c, newServiceError(err))
		return
	}

	browserFingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	if browserFingerprint != session.Fingerprint {
		h.logger.Error().
			Str("session_id", session.ID).
			Msg("fingerprint mismatch")
		abort(c, newUnauthorizedError(errFingerprintMismatch.Error()))
		return
	}

	c.Set(userIDCtxKey, session.UserID)
	c.Set(sessionIDCtxKey, session.ID)
	c.Next()
}

// extractAccessToken looks at the Authorization header first, then the
// access_token query parameter, then the access_token cookie.
func extractAccessToken(c *gin.Context) (string, error) {
	const authHeader = "Authorization"
	if header := c.GetHeader(authHeader); header != "" {
		const bearerPrefix = "Bearer"
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != bearerPrefix || parts[1] == "" {
			return "", errInvalidAccessToken
		}
		return parts[1], nil
	}

	if token := c.Query(accessTokenQuery); token != "" {
		return token, nil
	}

	if token, err := c.Cookie(accessTokenCookie); err == nil && token != "" {
		return token, nil
	}
	return "", errAccessTokenRequired
}

// RequestLogger writes one line per request, at warn level for client
// errors and error level for server errors.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("user_id", c.GetString(userIDCtxKey)).
			Msg("handled request")
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userIDCtxKey)
}
