package repository

import (
	"context"

	"github.com/dentalis/clinica-api/internal/models"
	"gorm.io/gorm"
)

// TreatmentRepository defines the interface for tooth treatment data access
type TreatmentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.ToothTreatment, error)
	FindByPatient(ctx context.Context, patientID uint) ([]models.ToothTreatment, error)
	FindAll(ctx context.Context) ([]models.ToothTreatment, error)
	Create(ctx context.Context, treatment *models.ToothTreatment) error
	Update(ctx context.Context, treatment *models.ToothTreatment) error
	Delete(ctx context.Context, id uint) error
	DeleteByPatient(ctx context.Context, patientID uint) error
	List(ctx context.Context, query *ListQuery) ([]models.ToothTreatment, int64, error)
}

type treatmentRepository struct {
	db *gorm.DB
}

// NewTreatmentRepository creates a new treatment repository
func NewTreatmentRepository(db *gorm.DB) TreatmentRepository {
	return &treatmentRepository{db: db}
}

func (r *treatmentRepository) FindByID(ctx context.Context, id uint) (*models.ToothTreatment, error) {
	var treatment models.ToothTreatment
	err := r.db.WithContext(ctx).
		Preload("Patient").
		First(&treatment, id).Error
	if err != nil {
		return nil, err
	}
	return &treatment, nil
}

func (r *treatmentRepository) FindByPatient(ctx context.Context, patientID uint) ([]models.ToothTreatment, error) {
	var treatments []models.ToothTreatment
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at").
		Find(&treatments).Error
	return treatments, err
}

func (r *treatmentRepository) FindAll(ctx context.Context) ([]models.ToothTreatment, error) {
	var treatments []models.ToothTreatment
	err := r.db.WithContext(ctx).Find(&treatments).Error
	return treatments, err
}

func (r *treatmentRepository) Create(ctx context.Context, treatment *models.ToothTreatment) error {
	return r.db.WithContext(ctx).Create(treatment).Error
}

func (r *treatmentRepository) Update(ctx context.Context, treatment *models.ToothTreatment) error {
	return r.db.WithContext(ctx).Save(treatment).Error
}

func (r *treatmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.ToothTreatment{}, id).Error
}

func (r *treatmentRepository) DeleteByPatient(ctx context.Context, patientID uint) error {
	return r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Delete(&models.ToothTreatment{}).Error
}

func (r *treatmentRepository) List(ctx context.Context, query *ListQuery) ([]models.ToothTreatment, int64, error) {
	var treatments []models.ToothTreatment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.ToothTreatment{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("treatment_type ILIKE ?", search)
	}

	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}

	if query.Filters["treatment_category"] != "" {
		db = db.Where("treatment_category = ?", query.Filters["treatment_category"])
	}

	if query.Filters["patient_id"] != "" {
		db = db.Where("patient_id = ?", query.Filters["patient_id"])
	}

	db.Count(&total)

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("created_at DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Patient").Find(&treatments).Error
	return treatments, total, err
}
