package service

import (
	"context"

	"alerthub/internal/repository"
)

// AnalyticsService reads aggregate delivery and read-state counters. It only
// ever reads; the ledger stays append-only.
type AnalyticsService struct {
	repo repository.AnalyticsRepository
}

func NewAnalyticsService(repo repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

func (s *AnalyticsService) SystemMetrics(ctx context.Context) (*repository.SystemMetrics, error) {
	return s.repo.GetSystemMetrics(ctx)
}

func (s *AnalyticsService) AlertMetrics(ctx context.Context, alertID string) (*repository.AlertMetrics, error) {
	return s.repo.GetAlertMetrics(ctx, alertID)
}
