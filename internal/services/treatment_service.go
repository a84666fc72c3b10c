package services

import (
	"context"
	"fmt"

	"github.com/dentalis/clinica-api/internal/events"
	"github.com/dentalis/clinica-api/internal/models"
	"github.com/dentalis/clinica-api/internal/repository"
)

// TreatmentService owns the tooth treatment collection
type TreatmentService struct {
	repo        repository.TreatmentRepository
	paymentRepo repository.PaymentRepository
	patientRepo repository.PatientRepository
	bus         *events.Bus
}

// NewTreatmentService creates a new treatment service
func NewTreatmentService(
	repo repository.TreatmentRepository,
	paymentRepo repository.PaymentRepository,
	patientRepo repository.PatientRepository,
	bus *events.Bus,
) *TreatmentService {
	return &TreatmentService{
		repo:        repo,
		paymentRepo: paymentRepo,
		patientRepo: patientRepo,
		bus:         bus,
	}
}

// GetTreatment returns one treatment by id
func (s *TreatmentService) GetTreatment(ctx context.Context, id uint) (*models.ToothTreatment, error) {
	treatment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return treatment, nil
}

// ListTreatments returns a filtered page of treatments
func (s *TreatmentService) ListTreatments(ctx context.Context, query *repository.ListQuery) ([]models.ToothTreatment, int64, error) {
	return s.repo.List(ctx, query)
}

// GetPatientTreatments returns all treatments of one patient
func (s *TreatmentService) GetPatientTreatments(ctx context.Context, patientID uint) ([]models.ToothTreatment, error) {
	return s.repo.FindByPatient(ctx, patientID)
}

// CreateTreatment persists a new treatment and broadcasts the change
func (s *TreatmentService) CreateTreatment(ctx context.Context, treatment *models.ToothTreatment) error {
	if _, err := s.patientRepo.FindByID(ctx, treatment.PatientID); err != nil {
		return ErrNotFound
	}
	if treatment.TreatmentType == "" {
		return fmt.Errorf("el tipo de tratamiento es requerido")
	}
	if treatment.Status == "" {
		treatment.Status = models.TreatmentStatusPlanned
	}
	treatment.Cost = SanitizeAmount(treatment.Cost)

	if err := s.repo.Create(ctx, treatment); err != nil {
		return fmt.Errorf("failed to create treatment: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.TreatmentChanged,
		Type:     events.ChangeCreated,
		EntityID: treatment.ID,
		Entity:   treatment,
	})
	return nil
}

// UpdateTreatment persists treatment changes. When the cost changed, the
// treatment's payments are replayed against the new cost.
func (s *TreatmentService) UpdateTreatment(ctx context.Context, treatment *models.ToothTreatment) error {
	current, err := s.repo.FindByID(ctx, treatment.ID)
	if err != nil {
		return ErrNotFound
	}

	treatment.Cost = SanitizeAmount(treatment.Cost)
	costChanged := current.Cost != treatment.Cost

	if err := s.repo.Update(ctx, treatment); err != nil {
		return fmt.Errorf("failed to update treatment: %w", err)
	}

	if costChanged {
		if err := s.replayPayments(ctx, treatment); err != nil {
			return err
		}
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.TreatmentChanged,
		Type:     events.ChangeUpdated,
		EntityID: treatment.ID,
		Entity:   treatment,
	})
	return nil
}

func (s *TreatmentService) replayPayments(ctx context.Context, treatment *models.ToothTreatment) error {
	payments, err := s.paymentRepo.FindByTreatment(ctx, treatment.ID)
	if err != nil {
		return fmt.Errorf("failed to load treatment payments: %w", err)
	}

	replayed := RecalculateTreatmentPayments(treatment.ID, treatment.Cost, payments)
	for i := range replayed {
		p := &replayed[i]
		p.TreatmentTotalCost = p.TotalAmountDue
		p.TreatmentRemainingBalance = p.RemainingBalance
		if err := s.paymentRepo.Update(ctx, p); err != nil {
			return fmt.Errorf("failed to update payment %d: %w", p.ID, err)
		}
	}
	return nil
}

// DeleteTreatment removes the treatment. Its payments stay, like the
// appointment case; only patient deletion cascades.
func (s *TreatmentService) DeleteTreatment(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete treatment: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.TreatmentChanged,
		Type:     events.ChangeDeleted,
		EntityID: id,
	})
	return nil
}

// TreatmentWithPayments builds the response of one treatment with its
// derived payment facts filled in
func (s *TreatmentService) TreatmentWithPayments(ctx context.Context, id uint) (*models.ToothTreatmentResponse, error) {
	treatment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	payments, err := s.paymentRepo.FindByTreatment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load treatment payments: %w", err)
	}

	resp := treatment.ToResponse()
	resp.TotalPaid = TotalPaid(id, payments, LinkTreatment)
	resp.RemainingBalance = RemainingBalance(id, treatment.Cost, payments, LinkTreatment)
	resp.PaymentStatus = PaymentStatus(id, treatment.Cost, payments, LinkTreatment)
	return &resp, nil
}

// GetPatientTreatmentSummary aggregates a patient's treatments with their
// cumulative payment facts
func (s *TreatmentService) GetPatientTreatmentSummary(ctx context.Context, patientID uint) (*models.ToothTreatmentSummary, error) {
	if _, err := s.patientRepo.FindByID(ctx, patientID); err != nil {
		return nil, ErrNotFound
	}

	treatments, err := s.repo.FindByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load patient treatments: %w", err)
	}

	payments, err := s.paymentRepo.FindByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load patient payments: %w", err)
	}

	summary := &models.ToothTreatmentSummary{
		PatientID: patientID,
		ByStatus:  make(map[string]int),
	}
	for i := range treatments {
		t := &treatments[i]
		summary.TotalTreatments++
		summary.ByStatus[t.Status]++
		summary.TotalCost += SanitizeAmount(t.Cost)
		summary.TotalPaid += TotalPaid(t.ID, payments, LinkTreatment)
		summary.TotalRemaining += RemainingBalance(t.ID, SanitizeAmount(t.Cost), payments, LinkTreatment)
	}
	return summary, nil
}
