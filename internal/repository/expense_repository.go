package repository

import (
	"context"
	"time"

	"github.com/dentalis/clinica-api/internal/models"
	"gorm.io/gorm"
)

// ExpenseRepository defines the interface for clinic expense data access
type ExpenseRepository interface {
	FindByID(ctx context.Context, id uint) (*models.ClinicExpense, error)
	FindAll(ctx context.Context) ([]models.ClinicExpense, error)
	FindBetween(ctx context.Context, from, to time.Time) ([]models.ClinicExpense, error)
	Create(ctx context.Context, expense *models.ClinicExpense) error
	Update(ctx context.Context, expense *models.ClinicExpense) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.ClinicExpense, int64, error)
}

type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) FindByID(ctx context.Context, id uint) (*models.ClinicExpense, error) {
	var expense models.ClinicExpense
	err := r.db.WithContext(ctx).First(&expense, id).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepository) FindAll(ctx context.Context) ([]models.ClinicExpense, error) {
	var expenses []models.ClinicExpense
	err := r.db.WithContext(ctx).Order("expense_date DESC").Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepository) FindBetween(ctx context.Context, from, to time.Time) ([]models.ClinicExpense, error) {
	var expenses []models.ClinicExpense
	err := r.db.WithContext(ctx).
		Where("expense_date >= ? AND expense_date < ?", from, to).
		Order("expense_date").
		Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepository) Create(ctx context.Context, expense *models.ClinicExpense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *expenseRepository) Update(ctx context.Context, expense *models.ClinicExpense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}

func (r *expenseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.ClinicExpense{}, id).Error
}

func (r *expenseRepository) List(ctx context.Context, query *ListQuery) ([]models.ClinicExpense, int64, error) {
	var expenses []models.ClinicExpense
	var total int64

	db := r.db.WithContext(ctx).Model(&models.ClinicExpense{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("expense_name ILIKE ?", search)
	}

	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}

	if query.Filters["expense_type"] != "" {
		db = db.Where("expense_type = ?", query.Filters["expense_type"])
	}

	db.Count(&total)

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("expense_date DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&expenses).Error
	return expenses, total, err
}
