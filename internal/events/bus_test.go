package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishDispatchesToSubscribers(t *testing.T) {
	bus := NewBus()

	var got []Event
	bus.Subscribe(PatientDeleted, func(ctx context.Context, e Event) {
		got = append(got, e)
	})

	bus.Publish(context.Background(), Event{Name: PatientDeleted, Type: ChangeDeleted, EntityID: 7})

	assert.Len(t, got, 1)
	assert.Equal(t, PatientDeleted, got[0].Name)
	assert.Equal(t, ChangeDeleted, got[0].Type)
	assert.Equal(t, uint(7), got[0].EntityID)
}

func TestPublishSkipsUnrelatedSubscribers(t *testing.T) {
	bus := NewBus()

	called := false
	bus.Subscribe(InventoryChanged, func(ctx context.Context, e Event) {
		called = true
	})

	bus.Publish(context.Background(), Event{Name: PaymentChanged, Type: ChangeCreated, EntityID: 1})

	assert.False(t, called)
}

func TestSubscribeAllReceivesEveryEvent(t *testing.T) {
	bus := NewBus()

	count := 0
	bus.SubscribeAll(func(ctx context.Context, e Event) {
		count++
	})

	bus.Publish(context.Background(), Event{Name: PaymentChanged, Type: ChangeCreated, EntityID: 1})
	bus.Publish(context.Background(), Event{Name: AppointmentChanged, Type: ChangeUpdated, EntityID: 2})
	bus.Publish(context.Background(), Event{Name: PatientDeleted, Type: ChangeDeleted, EntityID: 3})

	assert.Equal(t, 3, count)
}

func TestDuplicateDeliveryIsIdempotentForSetSemantics(t *testing.T) {
	bus := NewBus()

	// Handlers must tolerate duplicate delivery; an idempotent handler
	// converges to the same state no matter how often the event repeats.
	deleted := make(map[uint]bool)
	bus.Subscribe(PatientDeleted, func(ctx context.Context, e Event) {
		deleted[e.EntityID] = true
	})

	e := Event{Name: PatientDeleted, Type: ChangeDeleted, EntityID: 42}
	bus.Publish(context.Background(), e)
	bus.Publish(context.Background(), e)
	bus.Publish(context.Background(), e)

	assert.Len(t, deleted, 1)
	assert.True(t, deleted[42])
}

func TestPanickingHandlerDoesNotBreakOthers(t *testing.T) {
	bus := NewBus()

	bus.Subscribe(PaymentChanged, func(ctx context.Context, e Event) {
		panic("boom")
	})
	survived := false
	bus.Subscribe(PaymentChanged, func(ctx context.Context, e Event) {
		survived = true
	})

	bus.Publish(context.Background(), Event{Name: PaymentChanged, Type: ChangeUpdated, EntityID: 1})

	assert.True(t, survived)
}
