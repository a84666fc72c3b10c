package repository

import (
	"context"
	"time"

	"github.com/dentalis/clinica-api/internal/models"
	"gorm.io/gorm"
)

// AppointmentRepository defines the interface for appointment data access
type AppointmentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Appointment, error)
	FindByPatient(ctx context.Context, patientID uint) ([]models.Appointment, error)
	FindBetween(ctx context.Context, from, to time.Time) ([]models.Appointment, error)
	FindUpcoming(ctx context.Context, within time.Duration) ([]models.Appointment, error)
	Create(ctx context.Context, appointment *models.Appointment) error
	Update(ctx context.Context, appointment *models.Appointment) error
	Delete(ctx context.Context, id uint) error
	DeleteByPatient(ctx context.Context, patientID uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Appointment, int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type appointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uint) (*models.Appointment, error) {
	var appointment models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Patient").
		First(&appointment, id).Error
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByPatient(ctx context.Context, patientID uint) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("start_time DESC").
		Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) FindBetween(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Patient").
		Where("start_time >= ? AND start_time < ?", from, to).
		Order("start_time").
		Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) FindUpcoming(ctx context.Context, within time.Duration) ([]models.Appointment, error) {
	now := time.Now()
	var appointments []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Patient").
		Where("status = ? AND start_time >= ? AND start_time < ?",
			models.AppointmentStatusScheduled, now, now.Add(within)).
		Order("start_time").
		Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	return r.db.WithContext(ctx).Create(appointment).Error
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *models.Appointment) error {
	return r.db.WithContext(ctx).Save(appointment).Error
}

func (r *appointmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Appointment{}, id).Error
}

func (r *appointmentRepository) DeleteByPatient(ctx context.Context, patientID uint) error {
	return r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Delete(&models.Appointment{}).Error
}

func (r *appointmentRepository) List(ctx context.Context, query *ListQuery) ([]models.Appointment, int64, error) {
	var appointments []models.Appointment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Appointment{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("title ILIKE ?", search)
	}

	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
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
		db = db.Order("start_time DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Patient").Find(&appointments).Error
	return appointments, total, err
}

func (r *appointmentRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("status = ?", status).
		Count(&total).Error
	return total, err
}
