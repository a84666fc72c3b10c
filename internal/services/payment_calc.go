package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/dentalis/clinica-api/internal/models"
)

// LinkField selects which foreign id a payment is matched on
type LinkField int

const (
	LinkAppointment LinkField = iota
	LinkTreatment
)

// SanitizeAmount normalizes a monetary input. NaN and infinite values
// collapse to 0 instead of being rejected; report totals depend on this
// leniency, so every aggregation goes through here rather than checking
// inline.
func SanitizeAmount(amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	return amount
}

// linkedID returns the payment's foreign id for the given link field
func linkedID(p *models.Payment, field LinkField) *uint {
	if field == LinkAppointment {
		return p.AppointmentID
	}
	return p.ToothTreatmentID
}

// TotalPaid sums the amounts of all payments linked to entityID whose status
// contributes to revenue. Pending, failed and refunded payments never
// contribute. Returns 0 when nothing matches.
func TotalPaid(entityID uint, payments []models.Payment, field LinkField) float64 {
	var total float64
	for i := range payments {
		p := &payments[i]
		id := linkedID(p, field)
		if id == nil || *id != entityID {
			continue
		}
		if !p.CountsAsRevenue() {
			continue
		}
		total += SanitizeAmount(p.Amount)
	}
	return total
}

// RemainingBalance returns max(0, cost - cumulative paid). Over-payment is
// clamped, never negative.
func RemainingBalance(entityID uint, cost float64, payments []models.Payment, field LinkField) float64 {
	remaining := SanitizeAmount(cost) - TotalPaid(entityID, payments, field)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// PaymentStatus derives the payment status of a linked entity from its
// cumulative paid amount. Equality with cost counts as completed.
func PaymentStatus(entityID uint, cost float64, payments []models.Payment, field LinkField) string {
	return statusForTotals(SanitizeAmount(cost), TotalPaid(entityID, payments, field))
}

// statusForTotals maps (cost, cumulative paid) to a derived status
func statusForTotals(cost, totalPaid float64) string {
	switch {
	case totalPaid >= cost && totalPaid > 0:
		return models.PaymentStatusCompleted
	case totalPaid > 0:
		return models.PaymentStatusPartial
	default:
		return models.PaymentStatusPending
	}
}

// AmountValidation is the structured result of a payment amount check.
// Validation failures are returned, never raised; the caller decides how to
// surface them.
type AmountValidation struct {
	IsValid    bool    `json:"is_valid"`
	Error      string  `json:"error,omitempty"`
	MaxAllowed float64 `json:"max_allowed"`
}

// ValidateNewPaymentAmount checks a proposed payment against the entity's
// remaining balance. Rejects non-positive amounts and amounts exceeding the
// remaining balance; MaxAllowed carries the remaining balance for guidance.
// This is the single validation gate on the calculation path.
func ValidateNewPaymentAmount(entityID uint, cost, newAmount float64, payments []models.Payment, field LinkField) AmountValidation {
	remaining := RemainingBalance(entityID, cost, payments, field)

	if SanitizeAmount(newAmount) <= 0 {
		return AmountValidation{
			IsValid:    false,
			Error:      "el monto del pago debe ser mayor que cero",
			MaxAllowed: remaining,
		}
	}

	if newAmount > remaining {
		return AmountValidation{
			IsValid:    false,
			Error:      fmt.Sprintf("el monto excede el saldo pendiente de %.2f", remaining),
			MaxAllowed: remaining,
		}
	}

	return AmountValidation{IsValid: true, MaxAllowed: remaining}
}

// PatientPaymentSummary aggregates payment facts across all appointments and
// general (unlinked) payments of one patient.
type PatientPaymentSummary struct {
	PatientID      uint    `json:"patient_id"`
	TotalPaid      float64 `json:"total_paid"`
	TotalDue       float64 `json:"total_due"`
	TotalRemaining float64 `json:"total_remaining"`
	PaymentCount   int     `json:"payment_count"`
}

// ComputePatientPaymentSummary builds the per-patient financial summary.
//
// TotalPaid sums every revenue payment of the patient. TotalRemaining sums
// remaining balances only where the derived status is partial: a completed
// appointment contributes zero remaining even when several payment rows
// exist for it, and unlinked payments contribute their stored remainder only
// while partial. TotalDue is paid plus remaining.
func ComputePatientPaymentSummary(patientID uint, payments []models.Payment, appointments []models.Appointment) PatientPaymentSummary {
	summary := PatientPaymentSummary{PatientID: patientID}

	for i := range payments {
		p := &payments[i]
		if p.PatientID != patientID {
			continue
		}
		summary.PaymentCount++
		if p.CountsAsRevenue() {
			summary.TotalPaid += SanitizeAmount(p.Amount)
		}

		// General payments carry their own stored remainder
		if !p.IsLinked() && p.Status == models.PaymentStatusPartial && p.RemainingBalance != nil {
			summary.TotalRemaining += SanitizeAmount(*p.RemainingBalance)
		}
	}

	for i := range appointments {
		a := &appointments[i]
		if a.PatientID != patientID {
			continue
		}
		cost := SanitizeAmount(a.CostValue())
		if PaymentStatus(a.ID, cost, payments, LinkAppointment) == models.PaymentStatusPartial {
			summary.TotalRemaining += RemainingBalance(a.ID, cost, payments, LinkAppointment)
		}
	}

	summary.TotalDue = summary.TotalPaid + summary.TotalRemaining
	return summary
}

// OutstandingBalance sums what patients still owe across a payment
// collection. Replay stores a running remainder on every linked row, so only
// the chronologically last row per appointment or treatment counts; unlinked
// payments each carry their own remainder while partial. A linked entity
// counts while some amount is paid and some remains, the same condition that
// derives the partial status.
func OutstandingBalance(payments []models.Payment) float64 {
	type entityKey struct {
		field LinkField
		id    uint
	}
	latest := make(map[entityKey]*models.Payment)

	var total float64
	for i := range payments {
		p := &payments[i]

		var key entityKey
		switch {
		case p.AppointmentID != nil:
			key = entityKey{LinkAppointment, *p.AppointmentID}
		case p.ToothTreatmentID != nil:
			key = entityKey{LinkTreatment, *p.ToothTreatmentID}
		default:
			if p.Status == models.PaymentStatusPartial && p.RemainingBalance != nil {
				total += SanitizeAmount(*p.RemainingBalance)
			}
			continue
		}

		if current, ok := latest[key]; !ok || createdAfter(p, current) {
			latest[key] = p
		}
	}

	for _, p := range latest {
		if p.AmountPaid == nil || p.RemainingBalance == nil {
			continue
		}
		if *p.AmountPaid > 0 && *p.RemainingBalance > 0 {
			total += SanitizeAmount(*p.RemainingBalance)
		}
	}
	return total
}

// createdAfter orders payments the same way replay does
func createdAfter(a, b *models.Payment) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// RecalculateAppointmentPayments replays every payment of one appointment in
// creation order against a changed base cost, recomputing the running total
// and derived fields after each step. The input slice is not modified; the
// returned payments carry the updated fields and are ready to persist.
func RecalculateAppointmentPayments(appointmentID uint, newCost float64, payments []models.Payment) []models.Payment {
	var linked []models.Payment
	for i := range payments {
		if payments[i].AppointmentID != nil && *payments[i].AppointmentID == appointmentID {
			linked = append(linked, payments[i])
		}
	}
	return replayPayments(newCost, linked)
}

// RecalculateTreatmentPayments is the treatment counterpart of
// RecalculateAppointmentPayments.
func RecalculateTreatmentPayments(treatmentID uint, newCost float64, payments []models.Payment) []models.Payment {
	var linked []models.Payment
	for i := range payments {
		if payments[i].ToothTreatmentID != nil && *payments[i].ToothTreatmentID == treatmentID {
			linked = append(linked, payments[i])
		}
	}
	return replayPayments(newCost, linked)
}

// replayPayments folds a chronologically sorted payment sequence into running
// totals. Failed and refunded payments keep their status and contribute
// nothing; pending, partial and completed rows are re-derived from the
// running total so a cost change can move each step's status forward or
// backward.
func replayPayments(cost float64, payments []models.Payment) []models.Payment {
	cost = SanitizeAmount(cost)

	sort.SliceStable(payments, func(i, j int) bool {
		if payments[i].CreatedAt.Equal(payments[j].CreatedAt) {
			return payments[i].ID < payments[j].ID
		}
		return payments[i].CreatedAt.Before(payments[j].CreatedAt)
	})

	var running float64
	for i := range payments {
		p := &payments[i]

		terminal := p.Status == models.PaymentStatusFailed || p.Status == models.PaymentStatusRefunded
		if !terminal {
			running += SanitizeAmount(p.Amount)
			p.Status = statusForTotals(cost, running)
		}

		remaining := cost - running
		if remaining < 0 {
			remaining = 0
		}

		amountPaid := running
		totalDue := cost
		remainingBalance := remaining
		p.AmountPaid = &amountPaid
		p.TotalAmountDue = &totalDue
		p.RemainingBalance = &remainingBalance
	}

	return payments
}
