package models

import (
	"time"
)

// ClinicNeed represents a supply request raised by the clinic staff.
// Ordered and received needs contribute quantity × price to expenses.
type ClinicNeed struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	NeedName  string    `gorm:"not null" json:"need_name"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	Price     float64   `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	Status    string    `gorm:"default:pending;not null;index" json:"status"`
	Notes     *string   `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for ClinicNeed
func (ClinicNeed) TableName() string {
	return "clinic_needs"
}

// Clinic need status constants
const (
	NeedStatusPending  = "pending"
	NeedStatusOrdered  = "ordered"
	NeedStatusReceived = "received"
)

// Total returns quantity × price
func (n *ClinicNeed) Total() float64 {
	return float64(n.Quantity) * n.Price
}

// CountsAsExpense returns true when the need contributes to the expense side
func (n *ClinicNeed) CountsAsExpense() bool {
	return n.Status == NeedStatusOrdered || n.Status == NeedStatusReceived
}

// ClinicExpense represents a direct operating expense (rent, salaries, ...).
// Only paid expenses contribute to the expense side of profit/loss.
type ClinicExpense struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ExpenseName   string    `gorm:"not null" json:"expense_name"`
	Amount        float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	ExpenseType   string    `gorm:"index" json:"expense_type"`
	Status        string    `gorm:"default:pending;not null;index" json:"status"`
	PaymentMethod string    `gorm:"default:cash" json:"payment_method"`
	ExpenseDate   time.Time `gorm:"type:date;not null;index" json:"expense_date"`
	Notes         *string   `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for ClinicExpense
func (ClinicExpense) TableName() string {
	return "clinic_expenses"
}

// Expense status constants
const (
	ExpenseStatusPending = "pending"
	ExpenseStatusPaid    = "paid"
)

// Expense type constants
const (
	ExpenseTypeRent      = "rent"
	ExpenseTypeSalaries  = "salaries"
	ExpenseTypeUtilities = "utilities"
	ExpenseTypeSupplies  = "supplies"
	ExpenseTypeEquipment = "equipment"
	ExpenseTypeOther     = "other"
)

// IsPaid returns true when the expense has been paid
func (e *ClinicExpense) IsPaid() bool {
	return e.Status == ExpenseStatusPaid
}
