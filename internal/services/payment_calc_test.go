package services

import (
	"math"
	"testing"
	"time"

	"github.com/dentalis/clinica-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint        { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestSanitizeAmount(t *testing.T) {
	assert.Equal(t, 0.0, SanitizeAmount(math.NaN()))
	assert.Equal(t, 0.0, SanitizeAmount(math.Inf(1)))
	assert.Equal(t, 0.0, SanitizeAmount(math.Inf(-1)))
	assert.Equal(t, 42.5, SanitizeAmount(42.5))
	assert.Equal(t, -10.0, SanitizeAmount(-10.0))
}

func TestTotalPaidCountsOnlyRevenueStatuses(t *testing.T) {
	payments := []models.Payment{
		{AppointmentID: uintPtr(1), Amount: 40, Status: models.PaymentStatusPartial},
		{AppointmentID: uintPtr(1), Amount: 25, Status: models.PaymentStatusCompleted},
		{AppointmentID: uintPtr(1), Amount: 99, Status: models.PaymentStatusPending},
		{AppointmentID: uintPtr(1), Amount: 99, Status: models.PaymentStatusFailed},
		{AppointmentID: uintPtr(1), Amount: 99, Status: models.PaymentStatusRefunded},
		{AppointmentID: uintPtr(2), Amount: 99, Status: models.PaymentStatusCompleted},
	}

	assert.Equal(t, 65.0, TotalPaid(1, payments, LinkAppointment))
}

func TestTotalPaidEmptyCollection(t *testing.T) {
	assert.Equal(t, 0.0, TotalPaid(1, nil, LinkAppointment))
	assert.Equal(t, 0.0, TotalPaid(1, []models.Payment{}, LinkTreatment))
}

func TestRemainingBalancePartialPayment(t *testing.T) {
	payments := []models.Payment{
		{AppointmentID: uintPtr(1), Amount: 40, Status: models.PaymentStatusPartial},
	}

	assert.Equal(t, 60.0, RemainingBalance(1, 100, payments, LinkAppointment))
	assert.Equal(t, models.PaymentStatusPartial, PaymentStatus(1, 100, payments, LinkAppointment))
}

func TestRemainingBalanceReachesZeroOnCompletion(t *testing.T) {
	payments := []models.Payment{
		{AppointmentID: uintPtr(1), Amount: 40, Status: models.PaymentStatusPartial},
		{AppointmentID: uintPtr(1), Amount: 60, Status: models.PaymentStatusCompleted},
	}

	assert.Equal(t, 100.0, TotalPaid(1, payments, LinkAppointment))
	assert.Equal(t, 0.0, RemainingBalance(1, 100, payments, LinkAppointment))
	assert.Equal(t, models.PaymentStatusCompleted, PaymentStatus(1, 100, payments, LinkAppointment))
}

func TestRemainingBalanceClampsOverpayment(t *testing.T) {
	payments := []models.Payment{
		{AppointmentID: uintPtr(1), Amount: 150, Status: models.PaymentStatusCompleted},
	}

	// Total is unclamped, remaining never goes negative
	assert.Equal(t, 150.0, TotalPaid(1, payments, LinkAppointment))
	assert.Equal(t, 0.0, RemainingBalance(1, 100, payments, LinkAppointment))
	assert.Equal(t, models.PaymentStatusCompleted, PaymentStatus(1, 100, payments, LinkAppointment))
}

func TestPaymentStatusEmptyListIsPending(t *testing.T) {
	assert.Equal(t, models.PaymentStatusPending, PaymentStatus(1, 100, nil, LinkAppointment))
	assert.Equal(t, 100.0, RemainingBalance(1, 100, nil, LinkAppointment))
}

func TestPaymentStatusEqualityCountsAsCompleted(t *testing.T) {
	payments := []models.Payment{
		{ToothTreatmentID: uintPtr(7), Amount: 100, Status: models.PaymentStatusPartial},
	}

	assert.Equal(t, models.PaymentStatusCompleted, PaymentStatus(7, 100, payments, LinkTreatment))
}

func TestConservationProperty(t *testing.T) {
	payments := []models.Payment{
		{AppointmentID: uintPtr(1), Amount: 30, Status: models.PaymentStatusPartial},
		{AppointmentID: uintPtr(1), Amount: 45.5, Status: models.PaymentStatusPartial},
	}
	cost := 120.0

	paid := TotalPaid(1, payments, LinkAppointment)
	remaining := RemainingBalance(1, cost, payments, LinkAppointment)
	assert.InDelta(t, cost, paid+remaining, 0.001)
}

func TestStatusMonotonicity(t *testing.T) {
	cost := 100.0
	var payments []models.Payment
	ranks := map[string]int{
		models.PaymentStatusPending:   0,
		models.PaymentStatusPartial:   1,
		models.PaymentStatusCompleted: 2,
	}

	previous := ranks[PaymentStatus(1, cost, payments, LinkAppointment)]
	for _, amount := range []float64{10, 20, 30, 40, 50} {
		payments = append(payments, models.Payment{
			AppointmentID: uintPtr(1),
			Amount:        amount,
			Status:        models.PaymentStatusPartial,
		})
		current := ranks[PaymentStatus(1, cost, payments, LinkAppointment)]
		assert.GreaterOrEqual(t, current, previous)
		previous = current
	}
	assert.Equal(t, 2, previous)
}

func TestValidateNewPaymentAmount(t *testing.T) {
	payments := []models.Payment{
		{AppointmentID: uintPtr(1), Amount: 40, Status: models.PaymentStatusPartial},
	}

	result := ValidateNewPaymentAmount(1, 100, 60, payments, LinkAppointment)
	assert.True(t, result.IsValid)
	assert.Equal(t, 60.0, result.MaxAllowed)

	result = ValidateNewPaymentAmount(1, 100, 61, payments, LinkAppointment)
	assert.False(t, result.IsValid)
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, 60.0, result.MaxAllowed)

	result = ValidateNewPaymentAmount(1, 100, 0, payments, LinkAppointment)
	assert.False(t, result.IsValid)

	result = ValidateNewPaymentAmount(1, 100, -5, payments, LinkAppointment)
	assert.False(t, result.IsValid)

	result = ValidateNewPaymentAmount(1, 100, math.NaN(), payments, LinkAppointment)
	assert.False(t, result.IsValid)
}

func TestPatientPaymentSummary(t *testing.T) {
	appointments := []models.Appointment{
		{ID: 1, PatientID: 5, Cost: floatPtr(200)},
	}
	payments := []models.Payment{
		{PatientID: 5, AppointmentID: uintPtr(1), Amount: 50, Status: models.PaymentStatusPartial},
		{PatientID: 5, Amount: 30, Status: models.PaymentStatusCompleted},
	}

	summary := ComputePatientPaymentSummary(5, payments, appointments)

	assert.Equal(t, 80.0, summary.TotalPaid)
	// Only the partial appointment contributes remaining; the completed
	// general payment contributes zero.
	assert.Equal(t, 150.0, summary.TotalRemaining)
	assert.Equal(t, 230.0, summary.TotalDue)
	assert.Equal(t, 2, summary.PaymentCount)
}

func TestPatientPaymentSummaryCompletedAppointmentHasNoRemaining(t *testing.T) {
	appointments := []models.Appointment{
		{ID: 1, PatientID: 5, Cost: floatPtr(100)},
	}
	payments := []models.Payment{
		{PatientID: 5, AppointmentID: uintPtr(1), Amount: 40, Status: models.PaymentStatusPartial},
		{PatientID: 5, AppointmentID: uintPtr(1), Amount: 60, Status: models.PaymentStatusCompleted},
	}

	summary := ComputePatientPaymentSummary(5, payments, appointments)

	assert.Equal(t, 100.0, summary.TotalPaid)
	assert.Equal(t, 0.0, summary.TotalRemaining)
}

func TestPatientPaymentSummaryIgnoresOtherPatients(t *testing.T) {
	payments := []models.Payment{
		{PatientID: 9, Amount: 500, Status: models.PaymentStatusCompleted},
	}

	summary := ComputePatientPaymentSummary(5, payments, nil)
	assert.Equal(t, 0.0, summary.TotalPaid)
	assert.Equal(t, 0, summary.PaymentCount)
}

func TestRecalculateAppointmentPaymentsReplay(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	payments := []models.Payment{
		{ID: 2, AppointmentID: uintPtr(1), Amount: 60, Status: models.PaymentStatusCompleted, CreatedAt: base.Add(time.Hour)},
		{ID: 1, AppointmentID: uintPtr(1), Amount: 40, Status: models.PaymentStatusPartial, CreatedAt: base},
		{ID: 3, AppointmentID: uintPtr(2), Amount: 99, Status: models.PaymentStatusCompleted, CreatedAt: base},
	}

	replayed := RecalculateAppointmentPayments(1, 100, payments)

	assert.Len(t, replayed, 2)
	// Replay is in creation order regardless of input order
	assert.Equal(t, uint(1), replayed[0].ID)
	assert.Equal(t, models.PaymentStatusPartial, replayed[0].Status)
	assert.Equal(t, 40.0, *replayed[0].AmountPaid)
	assert.Equal(t, 60.0, *replayed[0].RemainingBalance)

	assert.Equal(t, uint(2), replayed[1].ID)
	assert.Equal(t, models.PaymentStatusCompleted, replayed[1].Status)
	assert.Equal(t, 100.0, *replayed[1].AmountPaid)
	assert.Equal(t, 0.0, *replayed[1].RemainingBalance)
}

func TestRecalculateWithRaisedCostMovesStatusBack(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	payments := []models.Payment{
		{ID: 1, AppointmentID: uintPtr(1), Amount: 100, Status: models.PaymentStatusCompleted, CreatedAt: base},
	}

	replayed := RecalculateAppointmentPayments(1, 250, payments)

	assert.Len(t, replayed, 1)
	assert.Equal(t, models.PaymentStatusPartial, replayed[0].Status)
	assert.Equal(t, 150.0, *replayed[0].RemainingBalance)
	assert.Equal(t, 250.0, *replayed[0].TotalAmountDue)
}

func TestRecalculateSkipsFailedAndRefunded(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	payments := []models.Payment{
		{ID: 1, AppointmentID: uintPtr(1), Amount: 40, Status: models.PaymentStatusPartial, CreatedAt: base},
		{ID: 2, AppointmentID: uintPtr(1), Amount: 500, Status: models.PaymentStatusFailed, CreatedAt: base.Add(time.Hour)},
		{ID: 3, AppointmentID: uintPtr(1), Amount: 500, Status: models.PaymentStatusRefunded, CreatedAt: base.Add(2 * time.Hour)},
	}

	replayed := RecalculateAppointmentPayments(1, 100, payments)

	assert.Len(t, replayed, 3)
	assert.Equal(t, models.PaymentStatusFailed, replayed[1].Status)
	assert.Equal(t, models.PaymentStatusRefunded, replayed[2].Status)
	// Running total never includes failed or refunded rows
	assert.Equal(t, 40.0, *replayed[2].AmountPaid)
	assert.Equal(t, 60.0, *replayed[2].RemainingBalance)
}

func TestRecalculateIdempotence(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	payments := []models.Payment{
		{ID: 1, AppointmentID: uintPtr(1), Amount: 40, Status: models.PaymentStatusPartial, CreatedAt: base},
		{ID: 2, AppointmentID: uintPtr(1), Amount: 35, Status: models.PaymentStatusPartial, CreatedAt: base.Add(time.Hour)},
	}

	first := RecalculateAppointmentPayments(1, 100, payments)
	second := RecalculateAppointmentPayments(1, 100, first)

	assert.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Status, second[i].Status)
		assert.Equal(t, *first[i].AmountPaid, *second[i].AmountPaid)
		assert.Equal(t, *first[i].RemainingBalance, *second[i].RemainingBalance)
	}
}

func TestOutstandingBalanceCountsEntityOnce(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	payments := []models.Payment{
		{ID: 1, AppointmentID: uintPtr(1), Amount: 30, Status: models.PaymentStatusPartial, CreatedAt: base},
		{ID: 2, AppointmentID: uintPtr(1), Amount: 30, Status: models.PaymentStatusPartial, CreatedAt: base.Add(time.Hour)},
	}
	replayed := RecalculateAppointmentPayments(1, 100, payments)

	// Every replayed row carries a running remainder (70 then 40); the
	// appointment still owes only the latest one
	assert.Equal(t, 40.0, OutstandingBalance(replayed))
}

func TestOutstandingBalanceCompletedEntityOwesNothing(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	payments := []models.Payment{
		{ID: 1, AppointmentID: uintPtr(1), Amount: 40, Status: models.PaymentStatusPartial, CreatedAt: base},
		{ID: 2, AppointmentID: uintPtr(1), Amount: 60, Status: models.PaymentStatusCompleted, CreatedAt: base.Add(time.Hour)},
	}
	replayed := RecalculateAppointmentPayments(1, 100, payments)

	assert.Equal(t, 0.0, OutstandingBalance(replayed))
}

func TestOutstandingBalanceMixedCollection(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	appointment := RecalculateAppointmentPayments(1, 100, []models.Payment{
		{ID: 1, AppointmentID: uintPtr(1), Amount: 30, Status: models.PaymentStatusPartial, CreatedAt: base},
		{ID: 2, AppointmentID: uintPtr(1), Amount: 30, Status: models.PaymentStatusPartial, CreatedAt: base.Add(time.Hour)},
	})
	treatment := RecalculateTreatmentPayments(9, 300, []models.Payment{
		{ID: 3, ToothTreatmentID: uintPtr(9), Amount: 100, Status: models.PaymentStatusPartial, CreatedAt: base},
	})
	all := append(append([]models.Payment{}, appointment...), treatment...)

	// Unlinked partial payments each carry their own remainder
	all = append(all, models.Payment{
		ID: 4, Amount: 50, Status: models.PaymentStatusPartial,
		RemainingBalance: floatPtr(25), CreatedAt: base,
	})
	// Unlinked pending rows never contribute
	all = append(all, models.Payment{
		ID: 5, Amount: 10, Status: models.PaymentStatusPending,
		RemainingBalance: floatPtr(10), CreatedAt: base,
	})

	// 40 (appointment) + 200 (treatment) + 25 (general)
	assert.Equal(t, 265.0, OutstandingBalance(all))
}

func TestRecalculateTreatmentPayments(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	payments := []models.Payment{
		{ID: 1, ToothTreatmentID: uintPtr(9), Amount: 300, Status: models.PaymentStatusPartial, CreatedAt: base},
	}

	replayed := RecalculateTreatmentPayments(9, 300, payments)

	assert.Len(t, replayed, 1)
	assert.Equal(t, models.PaymentStatusCompleted, replayed[0].Status)
	assert.Equal(t, 0.0, *replayed[0].RemainingBalance)
}
