package services

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"nexus_dashboard/internal/cache"
	"nexus_dashboard/internal/events"
	"nexus_dashboard/internal/models"
	"nexus_dashboard/internal/repository"
)

const (
	inventoryRefreshError = "Failed to refresh inventory data"
	ordersRefreshError    = "Failed to refresh orders data"
)

// RefreshService hands out inventory and orders, reusing a fetch for the
// cache TTL. A false ok means no data is available, which is different from
// an empty list.
type RefreshService interface {
	RefreshInventory(ctx context.Context, force bool) ([]models.InventoryItem, bool)
	RefreshOrders(ctx context.Context, force bool) ([]models.Order, bool)
	IsRefreshing() bool
	Err() string
}

type refreshService struct {
	inventory *cache.Resource[[]models.InventoryItem]
	orders    *cache.Resource[[]models.Order]
	logger    *slog.Logger

	refreshing atomic.Int32
	mu         sync.Mutex
	err        string
}

// NewRefreshService wires both caches. store may be nil for a process-local
// cache only. When bus is non-nil, upload events drop the matching entry.
func NewRefreshService(
	inventoryRepo repository.InventoryRepository,
	orderRepo repository.OrderRepository,
	ttl time.Duration,
	store cache.Store,
	bus *events.Bus,
	logger *slog.Logger,
) RefreshService {
	invOpts := []cache.Option[[]models.InventoryItem]{cache.WithLogger[[]models.InventoryItem](logger)}
	ordOpts := []cache.Option[[]models.Order]{cache.WithLogger[[]models.Order](logger)}
	if store != nil {
		invOpts = append(invOpts, cache.WithStore[[]models.InventoryItem](store))
		ordOpts = append(ordOpts, cache.WithStore[[]models.Order](store))
	}

	s := &refreshService{
		inventory: cache.NewResource("inventory", ttl, inventoryRepo.GetAll, invOpts...),
		orders:    cache.NewResource("orders", ttl, orderRepo.GetAll, ordOpts...),
		logger:    logger,
	}

	if bus != nil {
		bus.Subscribe(func(e events.Event) {
			switch e.Type {
			case events.InventoryUpdated:
				s.inventory.Invalidate(context.Background())
			case events.OrdersUpdated:
				s.orders.Invalidate(context.Background())
			}
		}, events.InventoryUpdated, events.OrdersUpdated)
	}
	return s
}

func (s *refreshService) RefreshInventory(ctx context.Context, force bool) ([]models.InventoryItem, bool) {
	return refresh(s, ctx, s.inventory, force, inventoryRefreshError)
}

func (s *refreshService) RefreshOrders(ctx context.Context, force bool) ([]models.Order, bool) {
	return refresh(s, ctx, s.orders, force, ordersRefreshError)
}

func refresh[T any](s *refreshService, ctx context.Context, r *cache.Resource[T], force bool, failure string) (T, bool) {
	s.refreshing.Add(1)
	defer s.refreshing.Add(-1)
	s.setErr("")

	v, err := r.Get(ctx, force)
	if err != nil {
		s.setErr(failure)
		s.logger.Error("refresh error", "resource", r.Key(), "force", force, "error", err)
		var zero T
		return zero, false
	}
	return v, true
}

func (s *refreshService) IsRefreshing() bool {
	return s.refreshing.Load() > 0
}

func (s *refreshService) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *refreshService) setErr(msg string) {
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()
}
