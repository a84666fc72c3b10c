package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	RefreshToken RefreshTokenRepository
	Patient      PatientRepository
	Appointment  AppointmentRepository
	Treatment    TreatmentRepository
	Payment      PaymentRepository
	Inventory    InventoryRepository
	ClinicNeed   ClinicNeedRepository
	LabOrder     LabOrderRepository
	Expense      ExpenseRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
		Patient:      NewPatientRepository(db),
		Appointment:  NewAppointmentRepository(db),
		Treatment:    NewTreatmentRepository(db),
		Payment:      NewPaymentRepository(db),
		Inventory:    NewInventoryRepository(db),
		ClinicNeed:   NewClinicNeedRepository(db),
		LabOrder:     NewLabOrderRepository(db),
		Expense:      NewExpenseRepository(db),
	}
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}
