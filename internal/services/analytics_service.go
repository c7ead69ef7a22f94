package services

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/storage"
)

// TrendWindow is how far back Trends looks.
const TrendWindow = 7 * 24 * time.Hour

type analyticsServiceImpl struct {
	logger    zerolog.Logger
	analytics storage.AnalyticsRepository
	now       func() time.Time
}

func NewAnalyticsService(
	logger zerolog.Logger,
	analytics storage.AnalyticsRepository,
) AnalyticsService {
	return &analyticsServiceImpl{
		logger:    logger,
		analytics: analytics,
		now:       time.Now,
	}
}

func (s *analyticsServiceImpl) Overview(ctx context.Context, userID string) ([]models.StatusCount, error) {
	counts, err := s.analytics.CountTasksByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	counts = slices.DeleteFunc(counts, func(c models.StatusCount) bool {
		return c.Count <= 0
	})
	order := models.TaskStatuses()
	slices.SortStableFunc(counts, func(a, b models.StatusCount) int {
		return cmp.Compare(slices.Index(order, a.Status), slices.Index(order, b.Status))
	})

	s.logger.Debug().
		Str("user_id", userID).
		Int("statuses", len(counts)).
		Msg("computed overview")
	return counts, nil
}

func (s *analyticsServiceImpl) Trends(ctx context.Context, userID string) ([]models.DailyCount, error) {
	since := s.now().UTC().Add(-TrendWindow)

	counts, err := s.analytics.CountTasksCreatedPerDay(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(counts, func(a, b models.DailyCount) int {
		return cmp.Compare(a.Day, b.Day)
	})

	s.logger.Debug().
		Str("user_id", userID).
		Time("since", since).
		Int("days", len(counts)).
		Msg("computed trends")
	return counts, nil
}
