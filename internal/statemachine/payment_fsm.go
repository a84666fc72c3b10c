package statemachine

import (
	"context"
	"fmt"

	"github.com/dentalis/clinica-api/internal/models"
	"github.com/looplab/fsm"
)

// PaymentFSM wraps a payment with its status state machine.
// The calculation engine derives pending/partial/completed from cumulative
// amounts; the FSM gates explicit operator transitions (fail, refund) and
// keeps the derived transitions monotone.
type PaymentFSM struct {
	payment *models.Payment
	fsm     *fsm.FSM
}

// NewPaymentFSM creates a new payment state machine
func NewPaymentFSM(payment *models.Payment) *PaymentFSM {
	pfsm := &PaymentFSM{
		payment: payment,
	}

	pfsm.fsm = fsm.NewFSM(
		payment.Status,
		fsm.Events{
			// pending → partial (cumulative paid is below cost)
			{Name: "register_partial", Src: []string{models.PaymentStatusPending}, Dst: models.PaymentStatusPartial},

			// pending/partial → completed (cumulative paid reaches cost)
			{Name: "complete", Src: []string{models.PaymentStatusPending, models.PaymentStatusPartial}, Dst: models.PaymentStatusCompleted},

			// pending/partial → failed
			{Name: "fail", Src: []string{models.PaymentStatusPending, models.PaymentStatusPartial}, Dst: models.PaymentStatusFailed},

			// completed/partial → refunded
			{Name: "refund", Src: []string{models.PaymentStatusCompleted, models.PaymentStatusPartial}, Dst: models.PaymentStatusRefunded},
		},
		fsm.Callbacks{},
	)

	return pfsm
}

// RegisterPartial transitions the payment to partial status
func (p *PaymentFSM) RegisterPartial(ctx context.Context) error {
	if err := p.fsm.Event(ctx, "register_partial"); err != nil {
		return fmt.Errorf("failed to register partial payment: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// Complete transitions the payment to completed status
func (p *PaymentFSM) Complete(ctx context.Context) error {
	if !p.payment.MayComplete() {
		return fmt.Errorf("payment cannot be completed in current state: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, "complete"); err != nil {
		return fmt.Errorf("failed to complete payment: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// Fail transitions the payment to failed status
func (p *PaymentFSM) Fail(ctx context.Context) error {
	if !p.payment.MayFail() {
		return fmt.Errorf("payment cannot be marked failed in current state: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, "fail"); err != nil {
		return fmt.Errorf("failed to mark payment as failed: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// Refund transitions the payment to refunded status
func (p *PaymentFSM) Refund(ctx context.Context) error {
	if !p.payment.MayRefund() {
		return fmt.Errorf("payment cannot be refunded in current state: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, "refund"); err != nil {
		return fmt.Errorf("failed to refund payment: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// Current returns the current state
func (p *PaymentFSM) Current() string {
	return p.fsm.Current()
}

// Can checks if a transition is possible
func (p *PaymentFSM) Can(event string) bool {
	return p.fsm.Can(event)
}
