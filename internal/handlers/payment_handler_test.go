package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalis/clinica-api/internal/events"
	"github.com/dentalis/clinica-api/internal/models"
	"github.com/dentalis/clinica-api/internal/repository"
	"github.com/dentalis/clinica-api/internal/services"
	"github.com/dentalis/clinica-api/internal/storage"
)

type mockPaymentRepo struct {
	repository.PaymentRepository
	payments []models.Payment
	nextID   uint
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	m.nextID++
	payment.ID = m.nextID
	payment.CreatedAt = time.Now()
	m.payments = append(m.payments, *payment)
	return nil
}

func (m *mockPaymentRepo) Update(ctx context.Context, payment *models.Payment) error {
	for i := range m.payments {
		if m.payments[i].ID == payment.ID {
			m.payments[i] = *payment
			return nil
		}
	}
	return errors.New("registro no encontrado")
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	for i := range m.payments {
		if m.payments[i].ID == id {
			p := m.payments[i]
			return &p, nil
		}
	}
	return nil, errors.New("registro no encontrado")
}

func (m *mockPaymentRepo) FindByAppointment(ctx context.Context, appointmentID uint) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.payments {
		if p.AppointmentID != nil && *p.AppointmentID == appointmentID {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockAppointmentRepo struct {
	repository.AppointmentRepository
	appointment *models.Appointment
}

func (m *mockAppointmentRepo) FindByID(ctx context.Context, id uint) (*models.Appointment, error) {
	if m.appointment != nil && m.appointment.ID == id {
		a := *m.appointment
		return &a, nil
	}
	return nil, errors.New("registro no encontrado")
}

type mockPatientRepo struct {
	repository.PatientRepository
	patient *models.Patient
}

func (m *mockPatientRepo) FindByID(ctx context.Context, id uint) (*models.Patient, error) {
	if m.patient != nil && m.patient.ID == id {
		p := *m.patient
		return &p, nil
	}
	return nil, errors.New("registro no encontrado")
}

func newPaymentHandlerFixture(t *testing.T) (*PaymentHandler, *mockPaymentRepo) {
	t.Helper()

	cost := 100.0
	paymentRepo := &mockPaymentRepo{}
	appointmentRepo := &mockAppointmentRepo{
		appointment: &models.Appointment{ID: 1, PatientID: 5, Title: "Limpieza", Cost: &cost},
	}
	patientRepo := &mockPatientRepo{
		patient: &models.Patient{ID: 5, FullName: "Ana López"},
	}

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	svc := services.NewPaymentService(paymentRepo, appointmentRepo, nil, patientRepo, store, events.NewBus())
	return NewPaymentHandler(svc), paymentRepo
}

func postPayment(t *testing.T, handler *PaymentHandler, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	jsonBytes, _ := json.Marshal(body)
	c.Request = httptest.NewRequest("POST", "/payments", bytes.NewBuffer(jsonBytes))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)
	return w
}

func TestCreatePaymentPartial(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newPaymentHandlerFixture(t)

	w := postPayment(t, handler, map[string]interface{}{
		"patient_id":     5,
		"appointment_id": 1,
		"amount":         40,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.payments, 1)
	assert.Equal(t, models.PaymentStatusPartial, repo.payments[0].Status)
	require.NotNil(t, repo.payments[0].RemainingBalance)
	assert.InDelta(t, 60.0, *repo.payments[0].RemainingBalance, 0.001)
}

func TestCreatePaymentOverpaymentRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, repo := newPaymentHandlerFixture(t)

	// 40 already paid against a 100 cost, 100 more exceeds the remaining 60
	w := postPayment(t, handler, map[string]interface{}{
		"patient_id":     5,
		"appointment_id": 1,
		"amount":         40,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postPayment(t, handler, map[string]interface{}{
		"patient_id":     5,
		"appointment_id": 1,
		"amount":         100,
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		IsValid    bool    `json:"is_valid"`
		MaxAllowed float64 `json:"max_allowed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.IsValid)
	assert.InDelta(t, 60.0, resp.MaxAllowed, 0.001)

	// Rejected payment is never persisted
	assert.Len(t, repo.payments, 1)
}

func TestCreatePaymentUnknownPatient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newPaymentHandlerFixture(t)

	w := postPayment(t, handler, map[string]interface{}{
		"patient_id": 99,
		"amount":     10,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShowPaymentNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newPaymentHandlerFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/payments/42", nil)
	c.Params = gin.Params{{Key: "payment_id", Value: "42"}}

	handler.Show(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
