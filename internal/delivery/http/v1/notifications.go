package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-tasks/internal/notify"
)

// HandleNotifications upgrades the request and keeps the socket subscribed
// to the caller's topic until either side closes it.
func (h *handlerImpl) HandleNotifications(c *gin.Context) {
	userID := currentUserID(c)

	// Upgrade ignores c.Writer's headers; forward cookies set by a refresh.
	var respHeader http.Header
	if cookies := c.Writer.Header().Values("Set-Cookie"); len(cookies) > 0 {
		respHeader = http.Header{"Set-Cookie": cookies}
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		// The upgrader has already replied with an HTTP error.
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to upgrade connection")
		c.Abort()
		return
	}

	client := notify.NewClient(h.logger, h.registry, conn, userID, h.cfg.SendBuffer)
	client.Serve()
}
