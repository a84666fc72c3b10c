package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dentalis/clinica-api/internal/events"
	"github.com/dentalis/clinica-api/internal/models"
	"github.com/dentalis/clinica-api/internal/repository"
)

// LabOrderService owns the lab order collection. Paid amounts feed the
// expense side of the financial report.
type LabOrderService struct {
	repo repository.LabOrderRepository
	bus  *events.Bus
}

// NewLabOrderService creates a new lab order service
func NewLabOrderService(repo repository.LabOrderRepository, bus *events.Bus) *LabOrderService {
	return &LabOrderService{repo: repo, bus: bus}
}

// GetOrder returns one lab order by id
func (s *LabOrderService) GetOrder(ctx context.Context, id uint) (*models.LabOrder, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return order, nil
}

// ListOrders returns a filtered page of lab orders
func (s *LabOrderService) ListOrders(ctx context.Context, query *repository.ListQuery) ([]models.LabOrder, int64, error) {
	return s.repo.List(ctx, query)
}

// CreateOrder persists a new lab order
func (s *LabOrderService) CreateOrder(ctx context.Context, order *models.LabOrder) error {
	if order.LabName == "" || order.ServiceName == "" {
		return fmt.Errorf("el laboratorio y el servicio son requeridos")
	}
	order.Cost = SanitizeAmount(order.Cost)
	order.PaidAmount = SanitizeAmount(order.PaidAmount)
	if order.Status == "" {
		order.Status = models.LabOrderStatusPending
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now()
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return fmt.Errorf("failed to create lab order: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.ExpenseChanged,
		Type:     events.ChangeCreated,
		EntityID: order.ID,
		Entity:   order,
	})
	return nil
}

// UpdateOrder persists lab order changes
func (s *LabOrderService) UpdateOrder(ctx context.Context, order *models.LabOrder) error {
	if _, err := s.repo.FindByID(ctx, order.ID); err != nil {
		return ErrNotFound
	}
	order.Cost = SanitizeAmount(order.Cost)
	order.PaidAmount = SanitizeAmount(order.PaidAmount)

	if err := s.repo.Update(ctx, order); err != nil {
		return fmt.Errorf("failed to update lab order: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.ExpenseChanged,
		Type:     events.ChangeUpdated,
		EntityID: order.ID,
		Entity:   order,
	})
	return nil
}

// RegisterPayment adds an amount to the order's paid total. The paid amount
// never exceeds the order cost.
func (s *LabOrderService) RegisterPayment(ctx context.Context, id uint, amount float64) (*models.LabOrder, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	amount = SanitizeAmount(amount)
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if amount > order.Remaining() {
		return nil, ErrInvalidAmount
	}

	order.PaidAmount += amount
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update lab order: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.ExpenseChanged,
		Type:     events.ChangeUpdated,
		EntityID: order.ID,
		Entity:   order,
	})
	return order, nil
}

// MarkDelivered transitions the order to delivered and stamps the delivery
// time
func (s *LabOrderService) MarkDelivered(ctx context.Context, id uint) (*models.LabOrder, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if order.Status == models.LabOrderStatusCancelled {
		return nil, ErrInvalidState
	}

	now := time.Now()
	order.Status = models.LabOrderStatusDelivered
	order.DeliveredAt = &now

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update lab order: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.ExpenseChanged,
		Type:     events.ChangeUpdated,
		EntityID: order.ID,
		Entity:   order,
	})
	return order, nil
}

// DeleteOrder removes a lab order
func (s *LabOrderService) DeleteOrder(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete lab order: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.ExpenseChanged,
		Type:     events.ChangeDeleted,
		EntityID: id,
	})
	return nil
}
