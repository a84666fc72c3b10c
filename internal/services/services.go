package services

import (
	"context"
	"fmt"

	"github.com/dentalis/clinica-api/internal/config"
	"github.com/dentalis/clinica-api/internal/events"
	"github.com/dentalis/clinica-api/internal/repository"
	"github.com/dentalis/clinica-api/internal/storage"
	"github.com/dentalis/clinica-api/pkg/logger"
)

// Services holds all service instances
type Services struct {
	Auth        *AuthService
	User        *UserService
	Patient     *PatientService
	Appointment *AppointmentService
	Treatment   *TreatmentService
	Payment     *PaymentService
	Inventory   *InventoryService
	LabOrder    *LabOrderService
	Expense     *ExpenseService
	Report      *ReportService
	Dashboard   *DashboardService
	Email       *EmailService
}

// NewServices creates all service instances and wires the cross-store event
// subscriptions
func NewServices(
	repos *repository.Repositories,
	cfg *config.Config,
	store *storage.LocalStorage,
	bus *events.Bus,
) *Services {
	reportSvc := NewReportService(repos.Payment, repos.LabOrder, repos.ClinicNeed, repos.Inventory, repos.Expense)
	inventorySvc := NewInventoryService(repos.Inventory, repos.ClinicNeed, bus)

	s := &Services{
		Auth:        NewAuthService(repos.User, repos.RefreshToken, cfg),
		User:        NewUserService(repos.User),
		Patient:     NewPatientService(repos.Patient, bus),
		Appointment: NewAppointmentService(repos.Appointment, repos.Payment, repos.Patient, bus),
		Treatment:   NewTreatmentService(repos.Treatment, repos.Payment, repos.Patient, bus),
		Payment:     NewPaymentService(repos.Payment, repos.Appointment, repos.Treatment, repos.Patient, store, bus),
		Inventory:   inventorySvc,
		LabOrder:    NewLabOrderService(repos.LabOrder, bus),
		Expense:     NewExpenseService(repos.Expense, bus),
		Report:      reportSvc,
		Dashboard:   NewDashboardService(repos.Patient, repos.Appointment, repos.Payment, reportSvc, inventorySvc, bus),
		Email:       NewEmailService(cfg),
	}

	registerPatientCascade(repos, bus)

	return s
}

// registerPatientCascade wires the patient-deletion cascade. Dependent rows
// are removed through independent mutations reacting to the broadcast, not
// through database constraints, so the cascade is eventual rather than
// atomic. Deleting by patient id is idempotent, which makes duplicate event
// delivery harmless.
func registerPatientCascade(repos *repository.Repositories, bus *events.Bus) {
	bus.Subscribe(events.PatientDeleted, func(ctx context.Context, e events.Event) {
		if err := repos.Payment.DeleteByPatient(ctx, e.EntityID); err != nil {
			logger.Error(fmt.Sprintf("[Cascade] Failed to delete payments of patient %d: %v", e.EntityID, err))
		}
		if err := repos.Appointment.DeleteByPatient(ctx, e.EntityID); err != nil {
			logger.Error(fmt.Sprintf("[Cascade] Failed to delete appointments of patient %d: %v", e.EntityID, err))
		}
		if err := repos.Treatment.DeleteByPatient(ctx, e.EntityID); err != nil {
			logger.Error(fmt.Sprintf("[Cascade] Failed to delete treatments of patient %d: %v", e.EntityID, err))
		}
	})
}
