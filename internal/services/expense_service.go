package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dentalis/clinica-api/internal/events"
	"github.com/dentalis/clinica-api/internal/models"
	"github.com/dentalis/clinica-api/internal/repository"
)

// ExpenseService owns the direct clinic expense collection
type ExpenseService struct {
	repo repository.ExpenseRepository
	bus  *events.Bus
}

// NewExpenseService creates a new expense service
func NewExpenseService(repo repository.ExpenseRepository, bus *events.Bus) *ExpenseService {
	return &ExpenseService{repo: repo, bus: bus}
}

// GetExpense returns one expense by id
func (s *ExpenseService) GetExpense(ctx context.Context, id uint) (*models.ClinicExpense, error) {
	expense, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return expense, nil
}

// ListExpenses returns a filtered page of expenses
func (s *ExpenseService) ListExpenses(ctx context.Context, query *repository.ListQuery) ([]models.ClinicExpense, int64, error) {
	return s.repo.List(ctx, query)
}

// CreateExpense persists a new expense
func (s *ExpenseService) CreateExpense(ctx context.Context, expense *models.ClinicExpense) error {
	if expense.ExpenseName == "" {
		return fmt.Errorf("el nombre del gasto es requerido")
	}
	expense.Amount = SanitizeAmount(expense.Amount)
	if expense.Amount <= 0 {
		return ErrInvalidAmount
	}
	if expense.Status == "" {
		expense.Status = models.ExpenseStatusPending
	}
	if expense.ExpenseType == "" {
		expense.ExpenseType = models.ExpenseTypeOther
	}
	if expense.ExpenseDate.IsZero() {
		expense.ExpenseDate = time.Now()
	}

	if err := s.repo.Create(ctx, expense); err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.ExpenseChanged,
		Type:     events.ChangeCreated,
		EntityID: expense.ID,
		Entity:   expense,
	})
	return nil
}

// UpdateExpense persists expense changes
func (s *ExpenseService) UpdateExpense(ctx context.Context, expense *models.ClinicExpense) error {
	if _, err := s.repo.FindByID(ctx, expense.ID); err != nil {
		return ErrNotFound
	}
	expense.Amount = SanitizeAmount(expense.Amount)

	if err := s.repo.Update(ctx, expense); err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.ExpenseChanged,
		Type:     events.ChangeUpdated,
		EntityID: expense.ID,
		Entity:   expense,
	})
	return nil
}

// MarkPaid transitions an expense to paid
func (s *ExpenseService) MarkPaid(ctx context.Context, id uint) (*models.ClinicExpense, error) {
	expense, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if expense.IsPaid() {
		return expense, nil
	}

	expense.Status = models.ExpenseStatusPaid
	if err := s.repo.Update(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.ExpenseChanged,
		Type:     events.ChangeUpdated,
		EntityID: expense.ID,
		Entity:   expense,
	})
	return expense, nil
}

// DeleteExpense removes an expense
func (s *ExpenseService) DeleteExpense(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.ExpenseChanged,
		Type:     events.ChangeDeleted,
		EntityID: id,
	})
	return nil
}
