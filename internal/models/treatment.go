package models

import (
	"time"
)

// ToothTreatment represents dental work on a specific tooth.
// Payments reference treatments via tooth_treatment_id.
type ToothTreatment struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	PatientID         uint      `gorm:"not null;index" json:"patient_id"`
	ToothNumber       int       `gorm:"index" json:"tooth_number"`
	TreatmentType     string    `gorm:"not null" json:"treatment_type"`
	TreatmentCategory string    `gorm:"index" json:"treatment_category"`
	Status            string    `gorm:"default:planned;not null;index" json:"status"`
	Cost              float64   `gorm:"type:decimal(10,2);not null" json:"cost"`
	Notes             *string   `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Associations
	Patient Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

// TableName specifies the table name for ToothTreatment
func (ToothTreatment) TableName() string {
	return "tooth_treatments"
}

// Treatment status constants
const (
	TreatmentStatusPlanned    = "planned"
	TreatmentStatusInProgress = "in_progress"
	TreatmentStatusCompleted  = "completed"
	TreatmentStatusCancelled  = "cancelled"
)

// Treatment category constants
const (
	TreatmentCategoryPreventive  = "preventive"
	TreatmentCategoryRestorative = "restorative"
	TreatmentCategoryEndodontic  = "endodontic"
	TreatmentCategorySurgical    = "surgical"
	TreatmentCategoryCosmetic    = "cosmetic"
	TreatmentCategoryOrthodontic = "orthodontic"
)

// ToothTreatmentResponse is the JSON response format for treatments
type ToothTreatmentResponse struct {
	ID                uint      `json:"id"`
	PatientID         uint      `json:"patient_id"`
	PatientName       string    `json:"patient_name,omitempty"`
	ToothNumber       int       `json:"tooth_number"`
	TreatmentType     string    `json:"treatment_type"`
	TreatmentCategory string    `json:"treatment_category"`
	Status            string    `json:"status"`
	Cost              float64   `json:"cost"`
	Notes             *string   `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`

	// Derived payment facts, filled by the calculation engine
	TotalPaid        float64 `json:"total_paid"`
	RemainingBalance float64 `json:"remaining_balance"`
	PaymentStatus    string  `json:"payment_status"`
}

// ToResponse converts ToothTreatment to ToothTreatmentResponse
func (t *ToothTreatment) ToResponse() ToothTreatmentResponse {
	resp := ToothTreatmentResponse{
		ID:                t.ID,
		PatientID:         t.PatientID,
		ToothNumber:       t.ToothNumber,
		TreatmentType:     t.TreatmentType,
		TreatmentCategory: t.TreatmentCategory,
		Status:            t.Status,
		Cost:              t.Cost,
		Notes:             t.Notes,
		CreatedAt:         t.CreatedAt,
	}
	if t.Patient.ID != 0 {
		resp.PatientName = t.Patient.FullName
	}
	return resp
}

// ToothTreatmentSummary aggregates a patient's treatments with payment facts
type ToothTreatmentSummary struct {
	PatientID        uint           `json:"patient_id"`
	TotalTreatments  int            `json:"total_treatments"`
	ByStatus         map[string]int `json:"by_status"`
	TotalCost        float64        `json:"total_cost"`
	TotalPaid        float64        `json:"total_paid"`
	TotalRemaining   float64        `json:"total_remaining"`
}
