package models

import (
	"time"
)

// Appointment represents a scheduled visit. Payments reference appointments
// weakly via appointment_id: deleting the appointment does not delete its
// payments, only the patient-deletion cascade removes them.
type Appointment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PatientID uint      `gorm:"not null;index" json:"patient_id"`
	Title     string    `gorm:"not null" json:"title"`
	Cost      *float64  `gorm:"type:decimal(10,2)" json:"cost"`
	Status    string    `gorm:"default:scheduled;not null;index" json:"status"`
	StartTime time.Time `gorm:"not null;index" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	Notes     *string   `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Patient Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

// TableName specifies the table name for Appointment
func (Appointment) TableName() string {
	return "appointments"
}

// Appointment status constants
const (
	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
	AppointmentStatusNoShow    = "no_show"
)

// CostValue returns the appointment cost, 0 when unset
func (a *Appointment) CostValue() float64 {
	if a.Cost == nil {
		return 0
	}
	return *a.Cost
}

// IsToday returns true if the appointment starts today
func (a *Appointment) IsToday() bool {
	now := time.Now()
	return a.StartTime.Year() == now.Year() && a.StartTime.YearDay() == now.YearDay()
}

// AppointmentResponse is the JSON response format for appointments
type AppointmentResponse struct {
	ID          uint      `json:"id"`
	PatientID   uint      `json:"patient_id"`
	PatientName string    `json:"patient_name,omitempty"`
	Title       string    `json:"title"`
	Cost        float64   `json:"cost"`
	Status      string    `json:"status"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	// Derived payment facts, filled by the calculation engine
	TotalPaid        float64 `json:"total_paid"`
	RemainingBalance float64 `json:"remaining_balance"`
	PaymentStatus    string  `json:"payment_status"`
}

// ToResponse converts Appointment to AppointmentResponse
func (a *Appointment) ToResponse() AppointmentResponse {
	resp := AppointmentResponse{
		ID:        a.ID,
		PatientID: a.PatientID,
		Title:     a.Title,
		Cost:      a.CostValue(),
		Status:    a.Status,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt,
	}
	if a.Patient.ID != 0 {
		resp.PatientName = a.Patient.FullName
	}
	return resp
}
