package services

import (
	"context"
	"testing"
	"time"

	"github.com/dentalis/clinica-api/internal/events"
	"github.com/dentalis/clinica-api/internal/models"
	"github.com/dentalis/clinica-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scanInventoryRepo struct {
	repository.InventoryRepository
	items []models.InventoryItem
}

func (m *scanInventoryRepo) FindAll(ctx context.Context) ([]models.InventoryItem, error) {
	return m.items, nil
}

func TestScanAlerts(t *testing.T) {
	past := time.Now().AddDate(0, 0, -1)
	soon := time.Now().AddDate(0, 0, 10)
	far := time.Now().AddDate(1, 0, 0)

	repo := &scanInventoryRepo{items: []models.InventoryItem{
		{ID: 1, Name: "Guantes", Quantity: 0, MinimumStock: 5},
		{ID: 2, Name: "Resina", Quantity: 3, MinimumStock: 5},
		{ID: 3, Name: "Anestesia", Quantity: 50, MinimumStock: 5, ExpiryDate: &past},
		{ID: 4, Name: "Sellador", Quantity: 50, MinimumStock: 5, ExpiryDate: &soon},
		{ID: 5, Name: "Cemento", Quantity: 50, MinimumStock: 5, ExpiryDate: &far},
	}}
	svc := NewInventoryService(repo, nil, events.NewBus())

	alerts, err := svc.ScanAlerts(context.Background())

	require.NoError(t, err)
	require.Len(t, alerts.OutOfStock, 1)
	assert.Equal(t, "Guantes", alerts.OutOfStock[0].Name)
	require.Len(t, alerts.LowStock, 1)
	assert.Equal(t, "Resina", alerts.LowStock[0].Name)
	require.Len(t, alerts.Expired, 1)
	assert.Equal(t, "Anestesia", alerts.Expired[0].Name)
	require.Len(t, alerts.ExpiringSoon, 1)
	assert.Equal(t, "Sellador", alerts.ExpiringSoon[0].Name)
	assert.True(t, alerts.HasAlerts())
}

func TestScanAlertsEmptyInventory(t *testing.T) {
	svc := NewInventoryService(&scanInventoryRepo{}, nil, events.NewBus())

	alerts, err := svc.ScanAlerts(context.Background())

	require.NoError(t, err)
	assert.False(t, alerts.HasAlerts())
}

func TestInventoryDerivedStates(t *testing.T) {
	item := models.InventoryItem{Quantity: 4, MinimumStock: 4, CostPerUnit: 2.5}

	assert.True(t, item.IsLowStock())
	assert.False(t, item.IsOutOfStock())
	assert.Equal(t, 10.0, item.StockValue())

	item.Quantity = 0
	assert.True(t, item.IsOutOfStock())
	assert.False(t, item.IsLowStock())
}
