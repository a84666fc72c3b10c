package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/dentalis/clinica-api/pkg/logger"
)

// ChangeType classifies a domain mutation
type ChangeType string

// Change type constants
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// Name identifies a domain event. The set is closed: services publish and
// subscribe only through these constants, never through free-form strings.
type Name string

// Domain event names
const (
	PatientChanged     Name = "patient-changed"
	PatientDeleted     Name = "patient-deleted"
	AppointmentChanged Name = "appointment-changed"
	PaymentChanged     Name = "payment-changed"
	TreatmentChanged   Name = "treatment-changed"
	InventoryChanged   Name = "inventory-changed"
	ExpenseChanged     Name = "expense-changed"
)

// Event carries a domain mutation to subscribers. Entity may be nil for
// deletions. No ordering guarantee exists across independently published
// events, so handlers must tolerate duplicate and out-of-order delivery.
type Event struct {
	Name     Name
	Type     ChangeType
	EntityID uint
	Entity   any
}

// Handler processes one event. Handlers must be idempotent.
type Handler func(ctx context.Context, e Event)

// Bus is the in-process change-notification dispatcher. Stores react to each
// other's mutations through subscriptions instead of direct dependencies;
// the patient-deletion cascade runs entirely over this bus.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Name][]Handler
	anySub []Handler
}

// NewBus creates an empty event bus
func NewBus() *Bus {
	return &Bus{subs: make(map[Name][]Handler)}
}

// Subscribe registers a handler for one event name
func (b *Bus) Subscribe(name Name, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[name] = append(b.subs[name], h)
}

// SubscribeAll registers a handler for every event name
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.anySub = append(b.anySub, h)
}

// Publish dispatches the event synchronously to all matching handlers.
// A panicking handler is recovered and logged so one subscriber cannot
// break the mutation path of another store.
func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[e.Name])+len(b.anySub))
	handlers = append(handlers, b.subs[e.Name]...)
	handlers = append(handlers, b.anySub...)
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(ctx, h, e)
	}
}

func (b *Bus) dispatch(ctx context.Context, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("[EventBus] Handler panic on %s: %v", e.Name, r))
		}
	}()
	h(ctx, e)
}
