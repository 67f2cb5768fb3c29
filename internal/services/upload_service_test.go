package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus_dashboard/internal/events"
	"nexus_dashboard/internal/models"
)

func TestCheckUploadName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"stock.csv", false},
		{"Stock.XLSX", false},
		{"legacy.xls", false},
		{"notes.txt", true},
		{"noextension", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckUploadName(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUploadInventoryRejectsBadExtensionWithoutCallingBackend(t *testing.T) {
	inv := &stubInventoryRepo{}
	svc := NewUploadService(inv, &stubOrderRepo{}, nil, testLogger())

	_, err := svc.UploadInventory(context.Background(), "photo.png", strings.NewReader("x"))
	require.ErrorIs(t, err, models.ErrValidation)
	assert.Empty(t, inv.uploads)
}

func TestUploadPublishesChangeEvents(t *testing.T) {
	bus := events.NewBus(testLogger())
	var got []events.Type
	bus.Subscribe(func(e events.Event) { got = append(got, e.Type) },
		events.InventoryUpdated, events.OrdersUpdated, events.AnalyticsUpdated)

	inv := &stubInventoryRepo{}
	ord := &stubOrderRepo{}
	svc := NewUploadService(inv, ord, bus, testLogger())

	result, err := svc.UploadInventory(context.Background(), "stock.csv", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count)

	_, err = svc.UploadOrders(context.Background(), "orders.xlsx", strings.NewReader("x"))
	require.NoError(t, err)

	assert.Equal(t, []events.Type{
		events.InventoryUpdated, events.AnalyticsUpdated,
		events.OrdersUpdated, events.AnalyticsUpdated,
	}, got)
	assert.Equal(t, []string{"orders.xlsx"}, ord.uploads)
}

func TestUploadFailureDoesNotPublish(t *testing.T) {
	bus := events.NewBus(testLogger())
	published := 0
	bus.Subscribe(func(e events.Event) { published++ }, events.InventoryUpdated)

	inv := &stubInventoryRepo{uploadErr: errBackend}
	svc := NewUploadService(inv, &stubOrderRepo{}, bus, testLogger())

	result, err := svc.UploadInventory(context.Background(), "stock.csv", strings.NewReader("x"))
	require.Error(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, 0, published)
}
