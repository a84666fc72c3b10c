package models

import (
	"time"
)

// LabOrder represents work sent to an external dental laboratory.
// The paid/remaining split contributes to the expense side of profit/loss.
type LabOrder struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PatientID   *uint      `gorm:"index" json:"patient_id"`
	LabName     string     `gorm:"not null" json:"lab_name"`
	ServiceName string     `gorm:"not null" json:"service_name"`
	Cost        float64    `gorm:"type:decimal(10,2);not null" json:"cost"`
	PaidAmount  float64    `gorm:"type:decimal(10,2);not null;default:0" json:"paid_amount"`
	Status      string     `gorm:"default:pending;not null;index" json:"status"`
	OrderDate   time.Time  `gorm:"type:date;not null;index" json:"order_date"`
	DeliveredAt *time.Time `json:"delivered_at"`
	Notes       *string    `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for LabOrder
func (LabOrder) TableName() string {
	return "lab_orders"
}

// Lab order status constants
const (
	LabOrderStatusPending   = "pending"
	LabOrderStatusSent      = "sent"
	LabOrderStatusDelivered = "delivered"
	LabOrderStatusCancelled = "cancelled"
)

// Remaining returns the unpaid part of the order cost, never negative
func (o *LabOrder) Remaining() float64 {
	remaining := o.Cost - o.PaidAmount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// LabOrderResponse is the JSON response format for lab orders
type LabOrderResponse struct {
	ID          uint       `json:"id"`
	PatientID   *uint      `json:"patient_id,omitempty"`
	LabName     string     `json:"lab_name"`
	ServiceName string     `json:"service_name"`
	Cost        float64    `json:"cost"`
	PaidAmount  float64    `json:"paid_amount"`
	Remaining   float64    `json:"remaining"`
	Status      string     `json:"status"`
	OrderDate   time.Time  `json:"order_date"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToResponse converts LabOrder to LabOrderResponse
func (o *LabOrder) ToResponse() LabOrderResponse {
	return LabOrderResponse{
		ID:          o.ID,
		PatientID:   o.PatientID,
		LabName:     o.LabName,
		ServiceName: o.ServiceName,
		Cost:        o.Cost,
		PaidAmount:  o.PaidAmount,
		Remaining:   o.Remaining(),
		Status:      o.Status,
		OrderDate:   o.OrderDate,
		DeliveredAt: o.DeliveredAt,
		Notes:       o.Notes,
		CreatedAt:   o.CreatedAt,
	}
}
