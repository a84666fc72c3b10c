package repository

import (
	"context"
	"time"

	"github.com/dentalis/clinica-api/internal/models"
	"gorm.io/gorm"
)

// LabOrderRepository defines the interface for lab order data access
type LabOrderRepository interface {
	FindByID(ctx context.Context, id uint) (*models.LabOrder, error)
	FindAll(ctx context.Context) ([]models.LabOrder, error)
	FindBetween(ctx context.Context, from, to time.Time) ([]models.LabOrder, error)
	Create(ctx context.Context, order *models.LabOrder) error
	Update(ctx context.Context, order *models.LabOrder) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.LabOrder, int64, error)
}

type labOrderRepository struct {
	db *gorm.DB
}

// NewLabOrderRepository creates a new lab order repository
func NewLabOrderRepository(db *gorm.DB) LabOrderRepository {
	return &labOrderRepository{db: db}
}

func (r *labOrderRepository) FindByID(ctx context.Context, id uint) (*models.LabOrder, error) {
	var order models.LabOrder
	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *labOrderRepository) FindAll(ctx context.Context) ([]models.LabOrder, error) {
	var orders []models.LabOrder
	err := r.db.WithContext(ctx).Order("order_date DESC").Find(&orders).Error
	return orders, err
}

func (r *labOrderRepository) FindBetween(ctx context.Context, from, to time.Time) ([]models.LabOrder, error) {
	var orders []models.LabOrder
	err := r.db.WithContext(ctx).
		Where("order_date >= ? AND order_date < ?", from, to).
		Order("order_date").
		Find(&orders).Error
	return orders, err
}

func (r *labOrderRepository) Create(ctx context.Context, order *models.LabOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *labOrderRepository) Update(ctx context.Context, order *models.LabOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *labOrderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.LabOrder{}, id).Error
}

func (r *labOrderRepository) List(ctx context.Context, query *ListQuery) ([]models.LabOrder, int64, error) {
	var orders []models.LabOrder
	var total int64

	db := r.db.WithContext(ctx).Model(&models.LabOrder{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("lab_name ILIKE ? OR service_name ILIKE ?", search, search)
	}

	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}

	db.Count(&total)

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("order_date DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&orders).Error
	return orders, total, err
}
