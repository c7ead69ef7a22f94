package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type trendResponse struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

func (h *handlerImpl) HandleAnalyticsOverview(c *gin.Context) {
	userID := currentUserID(c)

	counts, err := h.analytics.Overview(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to compute overview")
		abort(c, newServiceError(err))
		return
	}

	response := make(map[string]int64, len(counts))
	for _, sc := range counts {
		response[sc.Status.String()] = sc.Count
	}
	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleAnalyticsTrends(c *gin.Context) {
	userID := currentUserID(c)

	days, err := h.analytics.Trends(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to compute trends")
		abort(c, newServiceError(err))
		return
	}

	response := make([]trendResponse, len(days))
	for i, d := range days {
		response[i] = trendResponse{Date: d.Day, Count: d.Count}
	}
	c.JSON(http.StatusOK, response)
}
