package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus_dashboard/internal/events"
	"nexus_dashboard/internal/models"
)

func newRefresh(inv *stubInventoryRepo, ord *stubOrderRepo, bus *events.Bus) RefreshService {
	return NewRefreshService(inv, ord, time.Minute, nil, bus, testLogger())
}

func TestRefreshInventoryReusesFetchWithinTTL(t *testing.T) {
	inv := &stubInventoryRepo{items: []models.InventoryItem{{PartNumber: "AP-001", InStock: 4}}}
	svc := newRefresh(inv, &stubOrderRepo{}, nil)

	items, ok := svc.RefreshInventory(context.Background(), false)
	require.True(t, ok)
	assert.Len(t, items, 1)

	_, ok = svc.RefreshInventory(context.Background(), false)
	require.True(t, ok)
	assert.Equal(t, 1, inv.callCount())

	_, ok = svc.RefreshInventory(context.Background(), true)
	require.True(t, ok)
	assert.Equal(t, 2, inv.callCount())
}

func TestRefreshFailureSetsMessageAndClearsOnSuccess(t *testing.T) {
	inv := &stubInventoryRepo{err: errBackend}
	ord := &stubOrderRepo{err: errBackend}
	svc := newRefresh(inv, ord, nil)

	items, ok := svc.RefreshInventory(context.Background(), false)
	assert.False(t, ok)
	assert.Nil(t, items)
	assert.Equal(t, "Failed to refresh inventory data", svc.Err())

	_, ok = svc.RefreshOrders(context.Background(), false)
	assert.False(t, ok)
	assert.Equal(t, "Failed to refresh orders data", svc.Err())

	inv.mu.Lock()
	inv.err = nil
	inv.items = []models.InventoryItem{}
	inv.mu.Unlock()

	items, ok = svc.RefreshInventory(context.Background(), false)
	assert.True(t, ok)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Empty(t, svc.Err())
	assert.False(t, svc.IsRefreshing())
}

func TestRefreshEmptyListIsNotFailure(t *testing.T) {
	svc := newRefresh(&stubInventoryRepo{}, &stubOrderRepo{orders: []models.Order{}}, nil)

	orders, ok := svc.RefreshOrders(context.Background(), false)
	assert.True(t, ok)
	assert.Empty(t, orders)
	assert.Empty(t, svc.Err())
}

func TestIsRefreshingWhileFetchInFlight(t *testing.T) {
	inv := &stubInventoryRepo{
		items:   []models.InventoryItem{},
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	svc := newRefresh(inv, &stubOrderRepo{}, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.RefreshInventory(context.Background(), true)
	}()

	<-inv.started
	assert.True(t, svc.IsRefreshing())
	close(inv.block)
	wg.Wait()
	assert.False(t, svc.IsRefreshing())
}

func TestUploadEventInvalidatesInventory(t *testing.T) {
	bus := events.NewBus(testLogger())
	inv := &stubInventoryRepo{items: []models.InventoryItem{}}
	ord := &stubOrderRepo{orders: []models.Order{}}
	svc := newRefresh(inv, ord, bus)

	svc.RefreshInventory(context.Background(), false)
	svc.RefreshOrders(context.Background(), false)
	bus.Publish("test", events.InventoryUpdated)

	svc.RefreshInventory(context.Background(), false)
	svc.RefreshOrders(context.Background(), false)
	assert.Equal(t, 2, inv.callCount())
	assert.Equal(t, 1, ord.calls)
}
