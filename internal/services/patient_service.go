package services

import (
	"context"
	"fmt"

	"github.com/dentalis/clinica-api/internal/events"
	"github.com/dentalis/clinica-api/internal/models"
	"github.com/dentalis/clinica-api/internal/repository"
)

// PatientService owns the patient collection. Deleting a patient removes
// only the patient row here; dependent appointments, payments and treatments
// are removed by subscribers of the patient-deleted event, so the cascade is
// eventual rather than atomic.
type PatientService struct {
	repo repository.PatientRepository
	bus  *events.Bus
}

// NewPatientService creates a new patient service
func NewPatientService(repo repository.PatientRepository, bus *events.Bus) *PatientService {
	return &PatientService{repo: repo, bus: bus}
}

// GetPatient returns one patient by id
func (s *PatientService) GetPatient(ctx context.Context, id uint) (*models.Patient, error) {
	patient, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return patient, nil
}

// ListPatients returns a filtered page of patients
func (s *PatientService) ListPatients(ctx context.Context, query *repository.ListQuery) ([]models.Patient, int64, error) {
	return s.repo.List(ctx, query)
}

// CreatePatient persists a new patient and broadcasts the change
func (s *PatientService) CreatePatient(ctx context.Context, patient *models.Patient) error {
	if patient.FullName == "" {
		return fmt.Errorf("el nombre del paciente es requerido")
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.PatientChanged,
		Type:     events.ChangeCreated,
		EntityID: patient.ID,
		Entity:   patient,
	})
	return nil
}

// UpdatePatient persists patient field changes and broadcasts the change
func (s *PatientService) UpdatePatient(ctx context.Context, patient *models.Patient) error {
	if _, err := s.repo.FindByID(ctx, patient.ID); err != nil {
		return ErrNotFound
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.PatientChanged,
		Type:     events.ChangeUpdated,
		EntityID: patient.ID,
		Entity:   patient,
	})
	return nil
}

// DeletePatient removes the patient and broadcasts patient-deleted so
// dependent stores drop their rows
func (s *PatientService) DeletePatient(ctx context.Context, id uint) error {
	patient, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	s.bus.Publish(ctx, events.Event{
		Name:     events.PatientDeleted,
		Type:     events.ChangeDeleted,
		EntityID: id,
		Entity:   patient,
	})
	return nil
}

// CountPatients returns the total patient count
func (s *PatientService) CountPatients(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
