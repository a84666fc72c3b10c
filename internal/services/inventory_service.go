package services

import (
	"context"
	"fmt"

	"github.com/dentalis/clinica-api/internal/events"
	"github.com/dentalis/clinica-api/internal/models"
	"github.com/dentalis/clinica-api/internal/repository"
)

// InventoryService owns the inventory and clinic-need collections. Alert
// states are always re-derived from the full item list.
type InventoryService struct {
	repo     repository.InventoryRepository
	needRepo repository.ClinicNeedRepository
	bus      *events.Bus
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	repo repository.InventoryRepository,
	needRepo repository.ClinicNeedRepository,
	bus *events.Bus,
) *InventoryService {
	return &InventoryService{repo: repo, needRepo: needRepo, bus: bus}
}

// GetItem returns one inventory item by id
func (s *InventoryService) GetItem(ctx context.Context, id uint) (*models.InventoryItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// ListItems returns a filtered page of inventory items
func (s *InventoryService) ListItems(ctx context.Context, query *repository.ListQuery) ([]models.InventoryItem, int64, error) {
	return s.repo.List(ctx, query)
}

// CreateItem persists a new inventory item and broadcasts the change
func (s *InventoryService) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	if item.Name == "" {
		return fmt.Errorf("el nombre del artículo es requerido")
	}
	if item.Quantity < 0 {
		return fmt.Errorf("la cantidad no puede ser negativa")
	}
	item.CostPerUnit = SanitizeAmount(item.CostPerUnit)

	if err := s.repo.Create(ctx, item); err != nil {
		return fmt.Errorf("failed to create inventory item: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.InventoryChanged,
		Type:     events.ChangeCreated,
		EntityID: item.ID,
		Entity:   item,
	})
	return nil
}

// UpdateItem persists item changes and broadcasts the change
func (s *InventoryService) UpdateItem(ctx context.Context, item *models.InventoryItem) error {
	if _, err := s.repo.FindByID(ctx, item.ID); err != nil {
		return ErrNotFound
	}
	if item.Quantity < 0 {
		return fmt.Errorf("la cantidad no puede ser negativa")
	}
	item.CostPerUnit = SanitizeAmount(item.CostPerUnit)

	if err := s.repo.Update(ctx, item); err != nil {
		return fmt.Errorf("failed to update inventory item: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.InventoryChanged,
		Type:     events.ChangeUpdated,
		EntityID: item.ID,
		Entity:   item,
	})
	return nil
}

// AdjustStock applies a stock delta (consumption or restock) and broadcasts
// the change
func (s *InventoryService) AdjustStock(ctx context.Context, id uint, delta int) (*models.InventoryItem, error) {
	item, err := s.repo.AdjustQuantity(ctx, id, delta)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.InventoryChanged,
		Type:     events.ChangeUpdated,
		EntityID: item.ID,
		Entity:   item,
	})
	return item, nil
}

// DeleteItem removes an inventory item and broadcasts the change
func (s *InventoryService) DeleteItem(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.InventoryChanged,
		Type:     events.ChangeDeleted,
		EntityID: id,
	})
	return nil
}

// ScanAlerts derives the alert buckets over the full inventory
func (s *InventoryService) ScanAlerts(ctx context.Context) (*models.StockAlerts, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	alerts := &models.StockAlerts{}
	for i := range items {
		item := &items[i]
		resp := item.ToResponse()
		switch {
		case item.IsOutOfStock():
			alerts.OutOfStock = append(alerts.OutOfStock, resp)
		case item.IsLowStock():
			alerts.LowStock = append(alerts.LowStock, resp)
		}
		// Expiry alerts are independent of stock level
		if item.IsExpired() {
			alerts.Expired = append(alerts.Expired, resp)
		} else if item.IsExpiringSoon() {
			alerts.ExpiringSoon = append(alerts.ExpiringSoon, resp)
		}
	}
	return alerts, nil
}

// GetNeed returns one clinic need by id
func (s *InventoryService) GetNeed(ctx context.Context, id uint) (*models.ClinicNeed, error) {
	need, err := s.needRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return need, nil
}

// ListNeeds returns all clinic needs
func (s *InventoryService) ListNeeds(ctx context.Context) ([]models.ClinicNeed, error) {
	return s.needRepo.FindAll(ctx)
}

// CreateNeed persists a new clinic need
func (s *InventoryService) CreateNeed(ctx context.Context, need *models.ClinicNeed) error {
	if need.NeedName == "" {
		return fmt.Errorf("el nombre de la necesidad es requerido")
	}
	if need.Quantity <= 0 {
		need.Quantity = 1
	}
	need.Price = SanitizeAmount(need.Price)
	if need.Status == "" {
		need.Status = models.NeedStatusPending
	}

	if err := s.needRepo.Create(ctx, need); err != nil {
		return fmt.Errorf("failed to create clinic need: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.ExpenseChanged,
		Type:     events.ChangeCreated,
		EntityID: need.ID,
		Entity:   need,
	})
	return nil
}

// UpdateNeed persists clinic need changes
func (s *InventoryService) UpdateNeed(ctx context.Context, need *models.ClinicNeed) error {
	if _, err := s.needRepo.FindByID(ctx, need.ID); err != nil {
		return ErrNotFound
	}
	need.Price = SanitizeAmount(need.Price)

	if err := s.needRepo.Update(ctx, need); err != nil {
		return fmt.Errorf("failed to update clinic need: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.ExpenseChanged,
		Type:     events.ChangeUpdated,
		EntityID: need.ID,
		Entity:   need,
	})
	return nil
}

// DeleteNeed removes a clinic need
func (s *InventoryService) DeleteNeed(ctx context.Context, id uint) error {
	if _, err := s.needRepo.FindByID(ctx, id); err != nil {
		return ErrNotFound
	}

	if err := s.needRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete clinic need: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.ExpenseChanged,
		Type:     events.ChangeDeleted,
		EntityID: id,
	})
	return nil
}
