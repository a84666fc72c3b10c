package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dentalis/clinica-api/internal/events"
	"github.com/dentalis/clinica-api/internal/models"
	"github.com/dentalis/clinica-api/internal/repository"
	"github.com/dentalis/clinica-api/pkg/logger"
)

// AppointmentService owns the appointment collection. A cost change triggers
// a full replay of the appointment's payment rows so their derived fields
// track the new base cost.
type AppointmentService struct {
	repo        repository.AppointmentRepository
	paymentRepo repository.PaymentRepository
	patientRepo repository.PatientRepository
	bus         *events.Bus
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(
	repo repository.AppointmentRepository,
	paymentRepo repository.PaymentRepository,
	patientRepo repository.PatientRepository,
	bus *events.Bus,
) *AppointmentService {
	return &AppointmentService{
		repo:        repo,
		paymentRepo: paymentRepo,
		patientRepo: patientRepo,
		bus:         bus,
	}
}

// GetAppointment returns one appointment by id
func (s *AppointmentService) GetAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return appointment, nil
}

// ListAppointments returns a filtered page of appointments
func (s *AppointmentService) ListAppointments(ctx context.Context, query *repository.ListQuery) ([]models.Appointment, int64, error) {
	return s.repo.List(ctx, query)
}

// GetPatientAppointments returns all appointments of one patient
func (s *AppointmentService) GetPatientAppointments(ctx context.Context, patientID uint) ([]models.Appointment, error) {
	return s.repo.FindByPatient(ctx, patientID)
}

// GetAppointmentsBetween returns appointments starting inside a window
func (s *AppointmentService) GetAppointmentsBetween(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	return s.repo.FindBetween(ctx, from, to)
}

// CreateAppointment persists a new appointment and broadcasts the change
func (s *AppointmentService) CreateAppointment(ctx context.Context, appointment *models.Appointment) error {
	if _, err := s.patientRepo.FindByID(ctx, appointment.PatientID); err != nil {
		return ErrNotFound
	}
	if appointment.Title == "" {
		return fmt.Errorf("el título de la cita es requerido")
	}
	if appointment.EndTime.Before(appointment.StartTime) {
		return fmt.Errorf("la hora de fin debe ser posterior a la hora de inicio")
	}
	if appointment.Status == "" {
		appointment.Status = models.AppointmentStatusScheduled
	}
	if appointment.Cost != nil {
		cost := SanitizeAmount(*appointment.Cost)
		appointment.Cost = &cost
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.AppointmentChanged,
		Type:     events.ChangeCreated,
		EntityID: appointment.ID,
		Entity:   appointment,
	})
	return nil
}

// UpdateAppointment persists appointment changes. When the cost changed, the
// appointment's payments are replayed against the new cost before the change
// is broadcast.
func (s *AppointmentService) UpdateAppointment(ctx context.Context, appointment *models.Appointment) error {
	current, err := s.repo.FindByID(ctx, appointment.ID)
	if err != nil {
		return ErrNotFound
	}

	if appointment.Cost != nil {
		cost := SanitizeAmount(*appointment.Cost)
		appointment.Cost = &cost
	}
	costChanged := current.CostValue() != appointment.CostValue()

	if err := s.repo.Update(ctx, appointment); err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	if costChanged {
		if err := s.replayPayments(ctx, appointment); err != nil {
			return err
		}
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.AppointmentChanged,
		Type:     events.ChangeUpdated,
		EntityID: appointment.ID,
		Entity:   appointment,
	})
	return nil
}

func (s *AppointmentService) replayPayments(ctx context.Context, appointment *models.Appointment) error {
	payments, err := s.paymentRepo.FindByAppointment(ctx, appointment.ID)
	if err != nil {
		return fmt.Errorf("failed to load appointment payments: %w", err)
	}

	replayed := RecalculateAppointmentPayments(appointment.ID, appointment.CostValue(), payments)
	for i := range replayed {
		if err := s.paymentRepo.Update(ctx, &replayed[i]); err != nil {
			return fmt.Errorf("failed to update payment %d: %w", replayed[i].ID, err)
		}
	}
	return nil
}

// DeleteAppointment removes the appointment. Its payments stay: the
// reference is weak, only patient deletion cascades to payments.
func (s *AppointmentService) DeleteAppointment(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.AppointmentChanged,
		Type:     events.ChangeDeleted,
		EntityID: id,
	})
	return nil
}

// SendUpcomingReminders emails a reminder for every scheduled appointment
// starting inside the window. A failed send skips to the next appointment.
func (s *AppointmentService) SendUpcomingReminders(ctx context.Context, email *EmailService, within time.Duration) error {
	appointments, err := s.repo.FindUpcoming(ctx, within)
	if err != nil {
		return fmt.Errorf("failed to load upcoming appointments: %w", err)
	}

	for i := range appointments {
		if err := email.SendAppointmentReminder(ctx, &appointments[i]); err != nil {
			logger.Error("Failed to send appointment reminder", "appointment_id", appointments[i].ID, "error", err)
		}
	}
	return nil
}

// AppointmentWithPayments builds the response of one appointment with its
// derived payment facts filled in
func (s *AppointmentService) AppointmentWithPayments(ctx context.Context, id uint) (*models.AppointmentResponse, error) {
	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	payments, err := s.paymentRepo.FindByAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointment payments: %w", err)
	}

	resp := appointment.ToResponse()
	resp.TotalPaid = TotalPaid(id, payments, LinkAppointment)
	resp.RemainingBalance = RemainingBalance(id, appointment.CostValue(), payments, LinkAppointment)
	resp.PaymentStatus = PaymentStatus(id, appointment.CostValue(), payments, LinkAppointment)
	return &resp, nil
}
