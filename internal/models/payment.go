package models

import (
	"time"
)

// Payment represents a single payment transaction for a patient.
// Amount is always the value of this specific transaction, never a
// cumulative total; cumulative facts live in the derived fields
// (AmountPaid, RemainingBalance, ...) recomputed by the calculation engine.
type Payment struct {
	ID                        uint       `gorm:"primaryKey" json:"id"`
	PatientID                 uint       `gorm:"not null;index" json:"patient_id"`
	AppointmentID             *uint      `gorm:"index" json:"appointment_id"`
	ToothTreatmentID          *uint      `gorm:"index" json:"tooth_treatment_id"`
	Amount                    float64    `gorm:"type:decimal(10,2);not null" json:"amount"`
	AmountPaid                *float64   `gorm:"type:decimal(15,2)" json:"amount_paid"`
	TotalAmountDue            *float64   `gorm:"type:decimal(15,2)" json:"total_amount_due"`
	RemainingBalance          *float64   `gorm:"type:decimal(15,2)" json:"remaining_balance"`
	TreatmentTotalCost        *float64   `gorm:"type:decimal(15,2)" json:"treatment_total_cost"`
	TreatmentRemainingBalance *float64   `gorm:"type:decimal(15,2)" json:"treatment_remaining_balance"`
	PaymentMethod             string     `gorm:"default:cash;not null" json:"payment_method"`
	Status                    string     `gorm:"default:pending;not null;index" json:"status"`
	PaymentDate               time.Time  `gorm:"type:date;not null;index" json:"payment_date"`
	ReceiptNumber             *string    `gorm:"index" json:"receipt_number"`
	ReceiptPath               *string    `json:"-"` // Uploaded receipt file path
	Description               *string    `json:"description"`
	Notes                     *string    `gorm:"type:text" json:"notes"`
	RefundedAt                *time.Time `json:"refunded_at"`
	CreatedAt                 time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`

	// Associations
	Patient        Patient         `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Appointment    *Appointment    `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
	ToothTreatment *ToothTreatment `gorm:"foreignKey:ToothTreatmentID" json:"tooth_treatment,omitempty"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// Payment status constants
const (
	PaymentStatusPending   = "pending"
	PaymentStatusPartial   = "partial"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Payment method constants
const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
	PaymentMethodCheck    = "check"
)

// IsLinked returns true if the payment references an appointment or treatment
func (p *Payment) IsLinked() bool {
	return p.AppointmentID != nil || p.ToothTreatmentID != nil
}

// CountsAsRevenue returns true if the payment contributes to totals.
// Pending, failed and refunded payments never contribute.
func (p *Payment) CountsAsRevenue() bool {
	return p.Status == PaymentStatusPartial || p.Status == PaymentStatusCompleted
}

// MayComplete returns true if the payment can transition to completed
func (p *Payment) MayComplete() bool {
	return p.Status == PaymentStatusPending || p.Status == PaymentStatusPartial
}

// MayFail returns true if the payment can be marked failed
func (p *Payment) MayFail() bool {
	return p.Status == PaymentStatusPending || p.Status == PaymentStatusPartial
}

// MayRefund returns true if the payment can be refunded
func (p *Payment) MayRefund() bool {
	return p.Status == PaymentStatusCompleted || p.Status == PaymentStatusPartial
}

// PaymentResponse is the JSON response format for payments
type PaymentResponse struct {
	ID                        uint       `json:"id"`
	PatientID                 uint       `json:"patient_id"`
	AppointmentID             *uint      `json:"appointment_id,omitempty"`
	ToothTreatmentID          *uint      `json:"tooth_treatment_id,omitempty"`
	Amount                    float64    `json:"amount"`
	AmountPaid                float64    `json:"amount_paid"`
	TotalAmountDue            float64    `json:"total_amount_due"`
	RemainingBalance          float64    `json:"remaining_balance"`
	TreatmentTotalCost        *float64   `json:"treatment_total_cost,omitempty"`
	TreatmentRemainingBalance *float64   `json:"treatment_remaining_balance,omitempty"`
	PaymentMethod             string     `json:"payment_method"`
	Status                    string     `json:"status"`
	PaymentDate               time.Time  `json:"payment_date"`
	ReceiptNumber             *string    `json:"receipt_number,omitempty"`
	HasReceipt                bool       `json:"has_receipt"`
	Description               *string    `json:"description,omitempty"`
	Notes                     *string    `json:"notes,omitempty"`
	RefundedAt                *time.Time `json:"refunded_at,omitempty"`
	CreatedAt                 time.Time  `json:"created_at"`

	// Patient details
	PatientName string `json:"patient_name,omitempty"`

	// Linked entity details
	AppointmentTitle string `json:"appointment_title,omitempty"`
	TreatmentType    string `json:"treatment_type,omitempty"`
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	resp := PaymentResponse{
		ID:                        p.ID,
		PatientID:                 p.PatientID,
		AppointmentID:             p.AppointmentID,
		ToothTreatmentID:          p.ToothTreatmentID,
		Amount:                    p.Amount,
		TreatmentTotalCost:        p.TreatmentTotalCost,
		TreatmentRemainingBalance: p.TreatmentRemainingBalance,
		PaymentMethod:             p.PaymentMethod,
		Status:                    p.Status,
		PaymentDate:               p.PaymentDate,
		ReceiptNumber:             p.ReceiptNumber,
		HasReceipt:                p.ReceiptPath != nil && *p.ReceiptPath != "",
		Description:               p.Description,
		Notes:                     p.Notes,
		RefundedAt:                p.RefundedAt,
		CreatedAt:                 p.CreatedAt,
	}

	if p.AmountPaid != nil {
		resp.AmountPaid = *p.AmountPaid
	}
	if p.TotalAmountDue != nil {
		resp.TotalAmountDue = *p.TotalAmountDue
	}
	if p.RemainingBalance != nil {
		resp.RemainingBalance = *p.RemainingBalance
	}

	if p.Patient.ID != 0 {
		resp.PatientName = p.Patient.FullName
	}
	if p.Appointment != nil && p.Appointment.ID != 0 {
		resp.AppointmentTitle = p.Appointment.Title
	}
	if p.ToothTreatment != nil && p.ToothTreatment.ID != 0 {
		resp.TreatmentType = p.ToothTreatment.TreatmentType
	}

	return resp
}
