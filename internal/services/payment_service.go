package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dentalis/clinica-api/internal/events"
	"github.com/dentalis/clinica-api/internal/models"
	"github.com/dentalis/clinica-api/internal/repository"
	"github.com/dentalis/clinica-api/internal/statemachine"
	"github.com/dentalis/clinica-api/internal/storage"
)

// PaymentService owns payment mutations. Every mutator persists first, then
// recomputes the derived fields of the linked entity's payment rows, then
// broadcasts the change. A failed persistence call aborts the mutation with
// no partial application.
type PaymentService struct {
	repo            repository.PaymentRepository
	appointmentRepo repository.AppointmentRepository
	treatmentRepo   repository.TreatmentRepository
	patientRepo     repository.PatientRepository
	storage         *storage.LocalStorage
	bus             *events.Bus
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	repo repository.PaymentRepository,
	appointmentRepo repository.AppointmentRepository,
	treatmentRepo repository.TreatmentRepository,
	patientRepo repository.PatientRepository,
	store *storage.LocalStorage,
	bus *events.Bus,
) *PaymentService {
	return &PaymentService{
		repo:            repo,
		appointmentRepo: appointmentRepo,
		treatmentRepo:   treatmentRepo,
		patientRepo:     patientRepo,
		storage:         store,
		bus:             bus,
	}
}

// generateReceiptNumber creates a short unique receipt reference
func generateReceiptNumber() string {
	return "REC-" + strings.ToUpper(uuid.New().String()[:8])
}

// CreatePayment validates and persists a new payment.
//
// Linked payments pass through the amount validation gate against the linked
// entity's remaining balance; a rejection comes back in the AmountValidation
// result with a nil error, so the caller can surface the max-allowed hint.
// Transport failures come back as errors.
func (s *PaymentService) CreatePayment(ctx context.Context, payment *models.Payment) (AmountValidation, error) {
	if _, err := s.patientRepo.FindByID(ctx, payment.PatientID); err != nil {
		return AmountValidation{}, ErrNotFound
	}

	payment.Amount = SanitizeAmount(payment.Amount)

	validation, err := s.validateLinkedAmount(ctx, payment)
	if err != nil {
		return AmountValidation{}, err
	}
	if !validation.IsValid {
		return validation, nil
	}

	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now()
	}
	if payment.PaymentMethod == "" {
		payment.PaymentMethod = models.PaymentMethodCash
	}
	if payment.ReceiptNumber == nil {
		number := generateReceiptNumber()
		payment.ReceiptNumber = &number
	}
	s.applyInitialStatus(payment)

	if err := s.repo.Create(ctx, payment); err != nil {
		return AmountValidation{}, fmt.Errorf("failed to create payment: %w", err)
	}

	if err := s.recalculateLinked(ctx, payment); err != nil {
		return AmountValidation{}, err
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.PaymentChanged,
		Type:     events.ChangeCreated,
		EntityID: payment.ID,
		Entity:   payment,
	})

	return validation, nil
}

// validateLinkedAmount runs the amount gate against the linked entity's
// remaining balance. Unlinked payments only reject non-positive amounts.
func (s *PaymentService) validateLinkedAmount(ctx context.Context, payment *models.Payment) (AmountValidation, error) {
	if payment.AppointmentID != nil {
		appointment, err := s.appointmentRepo.FindByID(ctx, *payment.AppointmentID)
		if err != nil {
			return AmountValidation{}, ErrNotFound
		}
		existing, err := s.repo.FindByAppointment(ctx, appointment.ID)
		if err != nil {
			return AmountValidation{}, fmt.Errorf("failed to load appointment payments: %w", err)
		}
		return ValidateNewPaymentAmount(appointment.ID, appointment.CostValue(), payment.Amount, existing, LinkAppointment), nil
	}

	if payment.ToothTreatmentID != nil {
		treatment, err := s.treatmentRepo.FindByID(ctx, *payment.ToothTreatmentID)
		if err != nil {
			return AmountValidation{}, ErrNotFound
		}
		existing, err := s.repo.FindByTreatment(ctx, treatment.ID)
		if err != nil {
			return AmountValidation{}, fmt.Errorf("failed to load treatment payments: %w", err)
		}
		return ValidateNewPaymentAmount(treatment.ID, treatment.Cost, payment.Amount, existing, LinkTreatment), nil
	}

	if payment.Amount <= 0 {
		return AmountValidation{
			Error: "el monto del pago debe ser mayor que cero",
		}, nil
	}
	return AmountValidation{IsValid: true, MaxAllowed: payment.Amount}, nil
}

// applyInitialStatus sets the derived fields of an unlinked payment. Linked
// payments get theirs from the replay after persistence.
func (s *PaymentService) applyInitialStatus(payment *models.Payment) {
	if payment.IsLinked() {
		if payment.Status == "" {
			payment.Status = models.PaymentStatusPending
		}
		return
	}

	amount := SanitizeAmount(payment.Amount)
	due := amount
	if payment.TotalAmountDue != nil {
		due = SanitizeAmount(*payment.TotalAmountDue)
	}
	remaining := due - amount
	if remaining < 0 {
		remaining = 0
	}

	payment.AmountPaid = &amount
	payment.TotalAmountDue = &due
	payment.RemainingBalance = &remaining

	if payment.Status == "" || payment.Status == models.PaymentStatusPending ||
		payment.Status == models.PaymentStatusPartial || payment.Status == models.PaymentStatusCompleted {
		payment.Status = statusForTotals(due, amount)
	}
}

// recalculateLinked replays every payment of the linked entity and persists
// the rows whose derived fields changed. Recomputation is always a full
// replay of the entity's payment list, never an incremental delta.
func (s *PaymentService) recalculateLinked(ctx context.Context, payment *models.Payment) error {
	if payment.AppointmentID != nil {
		return s.RecalculateAppointment(ctx, *payment.AppointmentID)
	}
	if payment.ToothTreatmentID != nil {
		return s.RecalculateTreatment(ctx, *payment.ToothTreatmentID)
	}
	return nil
}

// RecalculateAppointment replays an appointment's payments against its
// current cost and persists the updated rows
func (s *PaymentService) RecalculateAppointment(ctx context.Context, appointmentID uint) error {
	appointment, err := s.appointmentRepo.FindByID(ctx, appointmentID)
	if err != nil {
		return ErrNotFound
	}

	payments, err := s.repo.FindByAppointment(ctx, appointmentID)
	if err != nil {
		return fmt.Errorf("failed to load appointment payments: %w", err)
	}

	replayed := RecalculateAppointmentPayments(appointmentID, appointment.CostValue(), payments)
	for i := range replayed {
		if err := s.repo.Update(ctx, &replayed[i]); err != nil {
			return fmt.Errorf("failed to update payment %d: %w", replayed[i].ID, err)
		}
	}
	return nil
}

// RecalculateTreatment replays a treatment's payments against its current
// cost and persists the updated rows
func (s *PaymentService) RecalculateTreatment(ctx context.Context, treatmentID uint) error {
	treatment, err := s.treatmentRepo.FindByID(ctx, treatmentID)
	if err != nil {
		return ErrNotFound
	}

	payments, err := s.repo.FindByTreatment(ctx, treatmentID)
	if err != nil {
		return fmt.Errorf("failed to load treatment payments: %w", err)
	}

	replayed := RecalculateTreatmentPayments(treatmentID, treatment.Cost, payments)
	for i := range replayed {
		p := &replayed[i]
		p.TreatmentTotalCost = p.TotalAmountDue
		p.TreatmentRemainingBalance = p.RemainingBalance
		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("failed to update payment %d: %w", p.ID, err)
		}
	}
	return nil
}

// GetPayment returns one payment by id
func (s *PaymentService) GetPayment(ctx context.Context, id uint) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return payment, nil
}

// ListPayments returns a filtered page of payments
func (s *PaymentService) ListPayments(ctx context.Context, query *repository.ListQuery) ([]models.Payment, int64, error) {
	return s.repo.List(ctx, query)
}

// UpdatePayment persists payment field changes and re-derives the linked
// entity's payment rows
func (s *PaymentService) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	payment.Amount = SanitizeAmount(payment.Amount)

	if err := s.repo.Update(ctx, payment); err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}

	if err := s.recalculateLinked(ctx, payment); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.PaymentChanged,
		Type:     events.ChangeUpdated,
		EntityID: payment.ID,
		Entity:   payment,
	})
	return nil
}

// DeletePayment removes a payment, its receipt file, and re-derives the
// linked entity's remaining rows
func (s *PaymentService) DeletePayment(ctx context.Context, id uint) error {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	if payment.ReceiptPath != nil && *payment.ReceiptPath != "" {
		// Receipt cleanup is best effort
		_ = s.storage.Delete(*payment.ReceiptPath)
	}

	if err := s.recalculateLinked(ctx, payment); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.PaymentChanged,
		Type:     events.ChangeDeleted,
		EntityID: id,
	})
	return nil
}

// RefundPayment transitions a payment to refunded through the state machine
func (s *PaymentService) RefundPayment(ctx context.Context, id uint) error {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	fsm := statemachine.NewPaymentFSM(payment)
	if err := fsm.Refund(ctx); err != nil {
		return ErrInvalidState
	}

	now := time.Now()
	payment.RefundedAt = &now

	if err := s.repo.Update(ctx, payment); err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}

	if err := s.recalculateLinked(ctx, payment); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.PaymentChanged,
		Type:     events.ChangeUpdated,
		EntityID: payment.ID,
		Entity:   payment,
	})
	return nil
}

// FailPayment transitions a payment to failed through the state machine
func (s *PaymentService) FailPayment(ctx context.Context, id uint) error {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	fsm := statemachine.NewPaymentFSM(payment)
	if err := fsm.Fail(ctx); err != nil {
		return ErrInvalidState
	}

	if err := s.repo.Update(ctx, payment); err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}

	if err := s.recalculateLinked(ctx, payment); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.PaymentChanged,
		Type:     events.ChangeUpdated,
		EntityID: payment.ID,
		Entity:   payment,
	})
	return nil
}

// GetPatientPaymentSummary aggregates payment facts across all appointments
// and general payments of one patient
func (s *PaymentService) GetPatientPaymentSummary(ctx context.Context, patientID uint) (*PatientPaymentSummary, error) {
	if _, err := s.patientRepo.FindByID(ctx, patientID); err != nil {
		return nil, ErrNotFound
	}

	payments, err := s.repo.FindByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load patient payments: %w", err)
	}

	appointments, err := s.appointmentRepo.FindByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load patient appointments: %w", err)
	}

	summary := ComputePatientPaymentSummary(patientID, payments, appointments)
	return &summary, nil
}

// UploadReceipt stores a receipt file for a payment
func (s *PaymentService) UploadReceipt(ctx context.Context, id uint, file multipart.File, header *multipart.FileHeader) error {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	if header.Size > storage.MaxFileSize() {
		return fmt.Errorf("el archivo excede el tamaño máximo permitido")
	}
	if !storage.IsValidContentType(header.Header.Get("Content-Type")) {
		return fmt.Errorf("tipo de archivo no permitido")
	}

	path, err := s.storage.Upload(file, header, "receipts")
	if err != nil {
		return fmt.Errorf("failed to store receipt: %w", err)
	}

	if payment.ReceiptPath != nil && *payment.ReceiptPath != "" {
		_ = s.storage.Delete(*payment.ReceiptPath)
	}

	payment.ReceiptPath = &path
	if err := s.repo.Update(ctx, payment); err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}

// ReceiptFilePath returns the absolute path of a payment's stored receipt
func (s *PaymentService) ReceiptFilePath(ctx context.Context, id uint) (string, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", ErrNotFound
	}
	if payment.ReceiptPath == nil || *payment.ReceiptPath == "" || !s.storage.Exists(*payment.ReceiptPath) {
		return "", ErrNotFound
	}
	return s.storage.GetFullPath(*payment.ReceiptPath), nil
}
