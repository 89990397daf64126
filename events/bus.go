package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// SubscribeAll adds a handler for every known event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range AllEventTypes {
		b.Subscribe(eventType, handler)
	}
}

// Emit dispatches an event to all registered handlers without blocking the caller
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised while a command runs and hands them
// to the real bus only once every write of the command succeeded
type TransactionalBus struct {
	real    *Bus
	mu      sync.Mutex
	pending []Event
}

// NewTransactionalBus wraps real
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes an event until Flush
func (b *TransactionalBus) Publish(e Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, e)
	return nil
}

// Pending returns the number of stashed events
func (b *TransactionalBus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Flush emits every stashed event on the real bus
func (b *TransactionalBus) Flush(ctx context.Context) {
	b.mu.Lock()
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	if b.real == nil {
		return
	}

	log.WithField("pendingEventCount", len(pending)).Debug("Flushing pending events")

	// Handlers outlive the command, so they get a fresh context
	eventCtx := context.WithoutCancel(ctx)
	for _, ev := range pending {
		b.real.Emit(eventCtx, ev)
	}
}

// Discard drops every stashed event
func (b *TransactionalBus) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = nil
}
