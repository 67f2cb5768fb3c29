package repository

import (
	"context"

	"nexus_dashboard/internal/models"
	"nexus_dashboard/pkg/nexusapi"
)

type AnalyticsRepository interface {
	GetSummary(ctx context.Context) (*models.AnalyticsSummary, error)
}

type analyticsRepository struct {
	client *nexusapi.Client
}

func NewAnalyticsRepository(client *nexusapi.Client) AnalyticsRepository {
	return &analyticsRepository{client: client}
}

func (r *analyticsRepository) GetSummary(ctx context.Context) (*models.AnalyticsSummary, error) {
	return r.client.AnalyticsSummary(ctx)
}
