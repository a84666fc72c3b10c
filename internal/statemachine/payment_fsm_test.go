package statemachine

import (
	"context"
	"testing"

	"github.com/dentalis/clinica-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestPaymentLifecycleForward(t *testing.T) {
	payment := &models.Payment{Status: models.PaymentStatusPending}
	fsm := NewPaymentFSM(payment)

	err := fsm.RegisterPartial(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPartial, payment.Status)

	err = fsm.Complete(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
}

func TestCompletedPaymentCannotGoBackward(t *testing.T) {
	payment := &models.Payment{Status: models.PaymentStatusCompleted}
	fsm := NewPaymentFSM(payment)

	err := fsm.RegisterPartial(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)

	err = fsm.Fail(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
}

func TestRefundRequiresCompletedOrPartial(t *testing.T) {
	pending := &models.Payment{Status: models.PaymentStatusPending}
	err := NewPaymentFSM(pending).Refund(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.PaymentStatusPending, pending.Status)

	completed := &models.Payment{Status: models.PaymentStatusCompleted}
	err = NewPaymentFSM(completed).Refund(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, completed.Status)

	partial := &models.Payment{Status: models.PaymentStatusPartial}
	err = NewPaymentFSM(partial).Refund(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, partial.Status)
}

func TestFailFromPendingAndPartial(t *testing.T) {
	for _, status := range []string{models.PaymentStatusPending, models.PaymentStatusPartial} {
		payment := &models.Payment{Status: status}
		err := NewPaymentFSM(payment).Fail(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, models.PaymentStatusFailed, payment.Status)
	}
}

func TestRefundedIsTerminal(t *testing.T) {
	payment := &models.Payment{Status: models.PaymentStatusRefunded}
	fsm := NewPaymentFSM(payment)

	assert.False(t, fsm.Can("complete"))
	assert.False(t, fsm.Can("fail"))
	assert.False(t, fsm.Can("refund"))
	assert.False(t, fsm.Can("register_partial"))
}
