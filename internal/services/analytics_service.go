package services

import (
	"context"
	"log/slog"
	"time"

	"nexus_dashboard/internal/cache"
	"nexus_dashboard/internal/events"
	"nexus_dashboard/internal/models"
	"nexus_dashboard/internal/repository"
)

// Summary sources.
const (
	SourceBackend = "backend"
	SourceLocal   = "local"
)

// AnalyticsReport is a summary together with where it was computed.
type AnalyticsReport struct {
	Summary models.AnalyticsSummary `json:"summary"`
	Source  string                  `json:"source"`
}

type AnalyticsService interface {
	Summary(ctx context.Context) (*AnalyticsReport, error)
}

type analyticsService struct {
	summary *cache.Resource[AnalyticsReport]
	repo    repository.AnalyticsRepository
	refresh RefreshService
	logger  *slog.Logger
}

// NewAnalyticsService returns a service that asks the backend first and
// falls back to summarizing the cached inventory and orders itself.
func NewAnalyticsService(
	repo repository.AnalyticsRepository,
	refresh RefreshService,
	ttl time.Duration,
	bus *events.Bus,
	logger *slog.Logger,
) AnalyticsService {
	s := &analyticsService{repo: repo, refresh: refresh, logger: logger}
	s.summary = cache.NewResource("analytics", ttl, s.load, cache.WithLogger[AnalyticsReport](logger))

	if bus != nil {
		bus.Subscribe(func(e events.Event) {
			s.summary.Invalidate(context.Background())
		}, events.AnalyticsUpdated, events.InventoryUpdated, events.OrdersUpdated)
	}
	return s
}

func (s *analyticsService) Summary(ctx context.Context) (*AnalyticsReport, error) {
	report, err := s.summary.Get(ctx, false)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *analyticsService) load(ctx context.Context) (AnalyticsReport, error) {
	summary, err := s.repo.GetSummary(ctx)
	if err == nil {
		return AnalyticsReport{Summary: *summary, Source: SourceBackend}, nil
	}
	s.logger.Warn("analytics summary unavailable, computing locally", "error", err)

	inventory, ok := s.refresh.RefreshInventory(ctx, false)
	if !ok {
		return AnalyticsReport{}, err
	}
	// Orders only feed the backorder count; a summary without them is still useful.
	orders, _ := s.refresh.RefreshOrders(ctx, false)
	return AnalyticsReport{Summary: models.Summarize(inventory, orders), Source: SourceLocal}, nil
}
