package services

import (
	"context"
	"testing"

	"github.com/dentalis/clinica-api/internal/config"
	"github.com/dentalis/clinica-api/internal/events"
	"github.com/dentalis/clinica-api/internal/models"
	"github.com/dentalis/clinica-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cascadePatientRepo struct {
	repository.PatientRepository
	patients map[uint]*models.Patient
	deleted  []uint
}

func (m *cascadePatientRepo) FindByID(ctx context.Context, id uint) (*models.Patient, error) {
	if p, ok := m.patients[id]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}

func (m *cascadePatientRepo) Delete(ctx context.Context, id uint) error {
	m.deleted = append(m.deleted, id)
	delete(m.patients, id)
	return nil
}

type cascadePaymentRepo struct {
	repository.PaymentRepository
	deletedPatients []uint
}

func (m *cascadePaymentRepo) DeleteByPatient(ctx context.Context, patientID uint) error {
	m.deletedPatients = append(m.deletedPatients, patientID)
	return nil
}

type cascadeAppointmentRepo struct {
	repository.AppointmentRepository
	deletedPatients []uint
}

func (m *cascadeAppointmentRepo) DeleteByPatient(ctx context.Context, patientID uint) error {
	m.deletedPatients = append(m.deletedPatients, patientID)
	return nil
}

type cascadeTreatmentRepo struct {
	repository.TreatmentRepository
	deletedPatients []uint
}

func (m *cascadeTreatmentRepo) DeleteByPatient(ctx context.Context, patientID uint) error {
	m.deletedPatients = append(m.deletedPatients, patientID)
	return nil
}

func TestDeletePatientCascadesThroughEvents(t *testing.T) {
	patientRepo := &cascadePatientRepo{patients: map[uint]*models.Patient{
		7: {ID: 7, FullName: "Ana López"},
	}}
	paymentRepo := &cascadePaymentRepo{}
	appointmentRepo := &cascadeAppointmentRepo{}
	treatmentRepo := &cascadeTreatmentRepo{}

	repos := &repository.Repositories{
		Patient:     patientRepo,
		Payment:     paymentRepo,
		Appointment: appointmentRepo,
		Treatment:   treatmentRepo,
	}
	bus := events.NewBus()
	svcs := NewServices(repos, &config.Config{}, nil, bus)

	err := svcs.Patient.DeletePatient(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, []uint{7}, patientRepo.deleted)
	assert.Equal(t, []uint{7}, paymentRepo.deletedPatients)
	assert.Equal(t, []uint{7}, appointmentRepo.deletedPatients)
	assert.Equal(t, []uint{7}, treatmentRepo.deletedPatients)
}

func TestDeleteMissingPatientDoesNotCascade(t *testing.T) {
	patientRepo := &cascadePatientRepo{patients: map[uint]*models.Patient{}}
	paymentRepo := &cascadePaymentRepo{}

	repos := &repository.Repositories{
		Patient:     patientRepo,
		Payment:     paymentRepo,
		Appointment: &cascadeAppointmentRepo{},
		Treatment:   &cascadeTreatmentRepo{},
	}
	bus := events.NewBus()
	svcs := NewServices(repos, &config.Config{}, nil, bus)

	err := svcs.Patient.DeletePatient(context.Background(), 99)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, paymentRepo.deletedPatients)
}

func TestCreatePatientRequiresName(t *testing.T) {
	svc := NewPatientService(&cascadePatientRepo{patients: map[uint]*models.Patient{}}, events.NewBus())

	err := svc.CreatePatient(context.Background(), &models.Patient{})

	assert.Error(t, err)
}
