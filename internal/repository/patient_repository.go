package repository

import (
	"context"

	"github.com/dentalis/clinica-api/internal/models"
	"gorm.io/gorm"
)

// PatientRepository defines the interface for patient data access
type PatientRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Patient, error)
	Create(ctx context.Context, patient *models.Patient) error
	Update(ctx context.Context, patient *models.Patient) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Patient, int64, error)
	FindAll(ctx context.Context) ([]models.Patient, error)
	Count(ctx context.Context) (int64, error)
}

type patientRepository struct {
	db *gorm.DB
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(db *gorm.DB) PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) FindByID(ctx context.Context, id uint) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.WithContext(ctx).First(&patient, id).Error
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) Create(ctx context.Context, patient *models.Patient) error {
	return r.db.WithContext(ctx).Create(patient).Error
}

func (r *patientRepository) Update(ctx context.Context, patient *models.Patient) error {
	return r.db.WithContext(ctx).Save(patient).Error
}

// Delete removes only the patient row. Dependent appointments, payments and
// treatments are removed by the patient-deleted event handlers, not by the
// database.
func (r *patientRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Patient{}, id).Error
}

func (r *patientRepository) List(ctx context.Context, query *ListQuery) ([]models.Patient, int64, error) {
	var patients []models.Patient
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Patient{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("full_name ILIKE ? OR phone ILIKE ? OR email ILIKE ?",
			search, search, search)
	}

	if query.Filters["gender"] != "" {
		db = db.Where("gender = ?", query.Filters["gender"])
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

	err := db.Find(&patients).Error
	return patients, total, err
}

func (r *patientRepository) FindAll(ctx context.Context) ([]models.Patient, error) {
	var patients []models.Patient
	err := r.db.WithContext(ctx).Order("full_name").Find(&patients).Error
	return patients, err
}

func (r *patientRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Patient{}).Count(&total).Error
	return total, err
}
