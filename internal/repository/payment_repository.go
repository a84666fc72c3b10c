package repository

import (
	"context"
	"time"

	"github.com/dentalis/clinica-api/internal/models"
	"gorm.io/gorm"
)

// PaymentRepository defines the interface for payment data access
type PaymentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Payment, error)
	FindByPatient(ctx context.Context, patientID uint) ([]models.Payment, error)
	FindByAppointment(ctx context.Context, appointmentID uint) ([]models.Payment, error)
	FindByTreatment(ctx context.Context, treatmentID uint) ([]models.Payment, error)
	FindBetween(ctx context.Context, from, to time.Time) ([]models.Payment, error)
	FindAll(ctx context.Context) ([]models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id uint) error
	DeleteByPatient(ctx context.Context, patientID uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Payment, int64, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Appointment").
		Preload("ToothTreatment").
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByPatient(ctx context.Context, patientID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("payment_date, id").
		Find(&payments).Error
	return payments, err
}

// FindByAppointment returns the payments of one appointment in replay order:
// payment date first, insertion order as tie-breaker.
func (r *paymentRepository) FindByAppointment(ctx context.Context, appointmentID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("payment_date, id").
		Find(&payments).Error
	return payments, err
}

// FindByTreatment returns the payments of one treatment in replay order.
func (r *paymentRepository) FindByTreatment(ctx context.Context, treatmentID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("tooth_treatment_id = ?", treatmentID).
		Order("payment_date, id").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) FindBetween(ctx context.Context, from, to time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("payment_date >= ? AND payment_date < ?", from, to).
		Order("payment_date, id").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) FindAll(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Order("payment_date, id").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *paymentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Payment{}, id).Error
}

func (r *paymentRepository) DeleteByPatient(ctx context.Context, patientID uint) error {
	return r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Delete(&models.Payment{}).Error
}

func (r *paymentRepository) List(ctx context.Context, query *ListQuery) ([]models.Payment, int64, error) {
	var payments []models.Payment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Payment{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("receipt_number ILIKE ? OR description ILIKE ?", search, search)
	}

	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}

	if query.Filters["payment_method"] != "" {
		db = db.Where("payment_method = ?", query.Filters["payment_method"])
	}

	if query.Filters["patient_id"] != "" {
		db = db.Where("patient_id = ?", query.Filters["patient_id"])
	}

	if query.Filters["from"] != "" {
		db = db.Where("payment_date >= ?", query.Filters["from"])
	}

	if query.Filters["to"] != "" {
		db = db.Where("payment_date <= ?", query.Filters["to"])
	}

	db.Count(&total)

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("payment_date DESC, id DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Patient").Find(&payments).Error
	return payments, total, err
}
