package service

import (
	"context"

	"github.com/dibasaye/finance-manager/internal/models"
)

const dashboardCacheKey = "dashboard:stats"

// Dashboard computes portfolio aggregates for the dashboard view. When a
// view cache is attached the figures are served from Redis for its TTL, so
// they may lag behind the latest writes.
func (s *Service) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	if s.dashView != nil {
		if stats, ok := s.dashView.Get(ctx, dashboardCacheKey); ok {
			return stats, nil
		}
	}

	stats, err := s.repo.DashboardStats(ctx, s.now(), s.config.Settings.AlertWindowDays)
	if err != nil {
		return nil, err
	}

	if s.dashView != nil {
		s.dashView.Set(ctx, dashboardCacheKey, stats)
	}
	return stats, nil
}
