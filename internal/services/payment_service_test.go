package services

import (
	"context"
	"testing"
	"time"

	"github.com/dentalis/clinica-api/internal/events"
	"github.com/dentalis/clinica-api/internal/models"
	"github.com/dentalis/clinica-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePaymentRepo struct {
	repository.PaymentRepository
	payments map[uint]*models.Payment
	nextID   uint
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uint]*models.Payment), nextID: 1}
}

func (m *fakePaymentRepo) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	if p, ok := m.payments[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (m *fakePaymentRepo) FindByAppointment(ctx context.Context, appointmentID uint) ([]models.Payment, error) {
	var result []models.Payment
	for _, p := range m.payments {
		if p.AppointmentID != nil && *p.AppointmentID == appointmentID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *fakePaymentRepo) FindByPatient(ctx context.Context, patientID uint) ([]models.Payment, error) {
	var result []models.Payment
	for _, p := range m.payments {
		if p.PatientID == patientID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *fakePaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	payment.ID = m.nextID
	payment.CreatedAt = time.Now()
	m.nextID++
	copied := *payment
	m.payments[payment.ID] = &copied
	return nil
}

func (m *fakePaymentRepo) Update(ctx context.Context, payment *models.Payment) error {
	copied := *payment
	m.payments[payment.ID] = &copied
	return nil
}

type fakeAppointmentRepo struct {
	repository.AppointmentRepository
	appointments map[uint]*models.Appointment
}

func (m *fakeAppointmentRepo) FindByID(ctx context.Context, id uint) (*models.Appointment, error) {
	if a, ok := m.appointments[id]; ok {
		return a, nil
	}
	return nil, ErrNotFound
}

func (m *fakeAppointmentRepo) FindByPatient(ctx context.Context, patientID uint) ([]models.Appointment, error) {
	var result []models.Appointment
	for _, a := range m.appointments {
		if a.PatientID == patientID {
			result = append(result, *a)
		}
	}
	return result, nil
}

type fakePatientRepo struct {
	repository.PatientRepository
	patients map[uint]*models.Patient
}

func (m *fakePatientRepo) FindByID(ctx context.Context, id uint) (*models.Patient, error) {
	if p, ok := m.patients[id]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}

func newPaymentServiceFixture() (*PaymentService, *fakePaymentRepo) {
	paymentRepo := newFakePaymentRepo()
	appointmentRepo := &fakeAppointmentRepo{appointments: map[uint]*models.Appointment{
		1: {ID: 1, PatientID: 5, Title: "Limpieza", Cost: floatPtr(100)},
	}}
	patientRepo := &fakePatientRepo{patients: map[uint]*models.Patient{
		5: {ID: 5, FullName: "Ana López"},
	}}

	svc := NewPaymentService(paymentRepo, appointmentRepo, nil, patientRepo, nil, events.NewBus())
	return svc, paymentRepo
}

func TestCreatePaymentDerivesPartialStatus(t *testing.T) {
	svc, repo := newPaymentServiceFixture()

	payment := &models.Payment{PatientID: 5, AppointmentID: uintPtr(1), Amount: 40}
	validation, err := svc.CreatePayment(context.Background(), payment)

	require.NoError(t, err)
	assert.True(t, validation.IsValid)

	stored := repo.payments[payment.ID]
	assert.Equal(t, models.PaymentStatusPartial, stored.Status)
	assert.Equal(t, 40.0, *stored.AmountPaid)
	assert.Equal(t, 60.0, *stored.RemainingBalance)
	assert.Equal(t, 100.0, *stored.TotalAmountDue)
	assert.NotNil(t, stored.ReceiptNumber)
}

func TestCreatePaymentCompletesOnFullAmount(t *testing.T) {
	svc, repo := newPaymentServiceFixture()

	first := &models.Payment{PatientID: 5, AppointmentID: uintPtr(1), Amount: 40}
	_, err := svc.CreatePayment(context.Background(), first)
	require.NoError(t, err)

	second := &models.Payment{PatientID: 5, AppointmentID: uintPtr(1), Amount: 60}
	validation, err := svc.CreatePayment(context.Background(), second)

	require.NoError(t, err)
	assert.True(t, validation.IsValid)
	assert.Equal(t, models.PaymentStatusCompleted, repo.payments[second.ID].Status)
	assert.Equal(t, 0.0, *repo.payments[second.ID].RemainingBalance)
}

func TestCreatePaymentRejectsOverpayment(t *testing.T) {
	svc, repo := newPaymentServiceFixture()

	first := &models.Payment{PatientID: 5, AppointmentID: uintPtr(1), Amount: 40}
	_, err := svc.CreatePayment(context.Background(), first)
	require.NoError(t, err)

	over := &models.Payment{PatientID: 5, AppointmentID: uintPtr(1), Amount: 61}
	validation, err := svc.CreatePayment(context.Background(), over)

	require.NoError(t, err)
	assert.False(t, validation.IsValid)
	assert.Equal(t, 60.0, validation.MaxAllowed)
	assert.NotEmpty(t, validation.Error)
	// Rejected payments are never persisted
	assert.Len(t, repo.payments, 1)
}

func TestCreatePaymentRejectsNonPositiveAmount(t *testing.T) {
	svc, repo := newPaymentServiceFixture()

	payment := &models.Payment{PatientID: 5, AppointmentID: uintPtr(1), Amount: -10}
	validation, err := svc.CreatePayment(context.Background(), payment)

	require.NoError(t, err)
	assert.False(t, validation.IsValid)
	assert.Empty(t, repo.payments)
}

func TestCreatePaymentUnknownPatient(t *testing.T) {
	svc, _ := newPaymentServiceFixture()

	payment := &models.Payment{PatientID: 99, Amount: 10}
	_, err := svc.CreatePayment(context.Background(), payment)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRefundPaymentTransitions(t *testing.T) {
	svc, repo := newPaymentServiceFixture()

	payment := &models.Payment{PatientID: 5, AppointmentID: uintPtr(1), Amount: 100}
	_, err := svc.CreatePayment(context.Background(), payment)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusCompleted, repo.payments[payment.ID].Status)

	err = svc.RefundPayment(context.Background(), payment.ID)

	require.NoError(t, err)
	refunded := repo.payments[payment.ID]
	assert.Equal(t, models.PaymentStatusRefunded, refunded.Status)
	assert.NotNil(t, refunded.RefundedAt)
}

func TestRefundPendingPaymentRejected(t *testing.T) {
	svc, repo := newPaymentServiceFixture()

	repo.payments[1] = &models.Payment{ID: 1, PatientID: 5, Amount: 50, Status: models.PaymentStatusPending}

	err := svc.RefundPayment(context.Background(), 1)

	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, models.PaymentStatusPending, repo.payments[1].Status)
}

func TestGetPatientPaymentSummaryThroughService(t *testing.T) {
	paymentRepo := newFakePaymentRepo()
	appointmentRepo := &fakeAppointmentRepo{appointments: map[uint]*models.Appointment{
		1: {ID: 1, PatientID: 5, Title: "Ortodoncia", Cost: floatPtr(200)},
	}}
	patientRepo := &fakePatientRepo{patients: map[uint]*models.Patient{
		5: {ID: 5, FullName: "Ana López"},
	}}
	svc := NewPaymentService(paymentRepo, appointmentRepo, nil, patientRepo, nil, events.NewBus())

	partial := &models.Payment{PatientID: 5, AppointmentID: uintPtr(1), Amount: 50}
	_, err := svc.CreatePayment(context.Background(), partial)
	require.NoError(t, err)

	general := &models.Payment{PatientID: 5, Amount: 30, Status: models.PaymentStatusCompleted}
	_, err = svc.CreatePayment(context.Background(), general)
	require.NoError(t, err)

	summary, err := svc.GetPatientPaymentSummary(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, 80.0, summary.TotalPaid)
	assert.Equal(t, 150.0, summary.TotalRemaining)
}
