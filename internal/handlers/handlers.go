package handlers

import (
	"github.com/dentalis/clinica-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health      *HealthHandler
	Auth        *AuthHandler
	User        *UserHandler
	Patient     *PatientHandler
	Appointment *AppointmentHandler
	Treatment   *TreatmentHandler
	Payment     *PaymentHandler
	Inventory   *InventoryHandler
	LabOrder    *LabOrderHandler
	Expense     *ExpenseHandler
	Report      *ReportHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(),
		Auth:        NewAuthHandler(svcs.Auth),
		User:        NewUserHandler(svcs.User),
		Patient:     NewPatientHandler(svcs.Patient, svcs.Payment, svcs.Appointment, svcs.Treatment),
		Appointment: NewAppointmentHandler(svcs.Appointment),
		Treatment:   NewTreatmentHandler(svcs.Treatment),
		Payment:     NewPaymentHandler(svcs.Payment),
		Inventory:   NewInventoryHandler(svcs.Inventory),
		LabOrder:    NewLabOrderHandler(svcs.LabOrder),
		Expense:     NewExpenseHandler(svcs.Expense),
		Report:      NewReportHandler(svcs.Report, svcs.Dashboard),
	}
}
