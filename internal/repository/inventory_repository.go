package repository

import (
	"context"
	"errors"

	"github.com/dentalis/clinica-api/internal/models"
	"gorm.io/gorm"
)

// InventoryRepository defines the interface for inventory item data access
type InventoryRepository interface {
	FindByID(ctx context.Context, id uint) (*models.InventoryItem, error)
	FindAll(ctx context.Context) ([]models.InventoryItem, error)
	Create(ctx context.Context, item *models.InventoryItem) error
	Update(ctx context.Context, item *models.InventoryItem) error
	AdjustQuantity(ctx context.Context, id uint, delta int) (*models.InventoryItem, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.InventoryItem, int64, error)
}

type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) FindByID(ctx context.Context, id uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) FindAll(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).Order("name").Find(&items).Error
	return items, err
}

func (r *inventoryRepository) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *inventoryRepository) Update(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// AdjustQuantity applies a stock delta atomically and returns the updated
// item. The quantity is clamped at zero inside the transaction.
func (r *inventoryRepository) AdjustQuantity(ctx context.Context, id uint, delta int) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, id).Error; err != nil {
			return err
		}
		newQuantity := item.Quantity + delta
		if newQuantity < 0 {
			return errors.New("No hay suficiente stock disponible")
		}
		item.Quantity = newQuantity
		return tx.Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.InventoryItem{}, id).Error
}

func (r *inventoryRepository) List(ctx context.Context, query *ListQuery) ([]models.InventoryItem, int64, error) {
	var items []models.InventoryItem
	var total int64

	db := r.db.WithContext(ctx).Model(&models.InventoryItem{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("name ILIKE ? OR supplier ILIKE ?", search, search)
	}

	if query.Filters["category"] != "" {
		db = db.Where("category = ?", query.Filters["category"])
	}

	db.Count(&total)

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("name")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&items).Error
	return items, total, err
}

// ClinicNeedRepository defines the interface for clinic need data access
type ClinicNeedRepository interface {
	FindByID(ctx context.Context, id uint) (*models.ClinicNeed, error)
	FindAll(ctx context.Context) ([]models.ClinicNeed, error)
	FindByStatus(ctx context.Context, statuses ...string) ([]models.ClinicNeed, error)
	Create(ctx context.Context, need *models.ClinicNeed) error
	Update(ctx context.Context, need *models.ClinicNeed) error
	Delete(ctx context.Context, id uint) error
}

type clinicNeedRepository struct {
	db *gorm.DB
}

// NewClinicNeedRepository creates a new clinic need repository
func NewClinicNeedRepository(db *gorm.DB) ClinicNeedRepository {
	return &clinicNeedRepository{db: db}
}

func (r *clinicNeedRepository) FindByID(ctx context.Context, id uint) (*models.ClinicNeed, error) {
	var need models.ClinicNeed
	err := r.db.WithContext(ctx).First(&need, id).Error
	if err != nil {
		return nil, err
	}
	return &need, nil
}

func (r *clinicNeedRepository) FindAll(ctx context.Context) ([]models.ClinicNeed, error) {
	var needs []models.ClinicNeed
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&needs).Error
	return needs, err
}

func (r *clinicNeedRepository) FindByStatus(ctx context.Context, statuses ...string) ([]models.ClinicNeed, error) {
	var needs []models.ClinicNeed
	err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("created_at DESC").
		Find(&needs).Error
	return needs, err
}

func (r *clinicNeedRepository) Create(ctx context.Context, need *models.ClinicNeed) error {
	return r.db.WithContext(ctx).Create(need).Error
}

func (r *clinicNeedRepository) Update(ctx context.Context, need *models.ClinicNeed) error {
	return r.db.WithContext(ctx).Save(need).Error
}

func (r *clinicNeedRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.ClinicNeed{}, id).Error
}
