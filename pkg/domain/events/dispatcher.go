package events

import (
	"fmt"
	"sync"
)

// HandlerFunc handles a dispatched event.
type HandlerFunc func(event DomainEvent) error

// Dispatcher fans events out to registered handlers, synchronously and
// in registration order. Handlers for the wildcard type "*" see every
// event.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]namedHandler
}

type namedHandler struct {
	name    string
	handler HandlerFunc
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string][]namedHandler)}
}

// Register subscribes a named handler to the given event types.
func (d *Dispatcher) Register(name string, handler HandlerFunc, eventTypes ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, et := range eventTypes {
		d.handlers[et] = append(d.handlers[et], namedHandler{name: name, handler: handler})
	}
}

// Dispatch delivers the event to every matching handler. The first
// handler error stops delivery and is returned wrapped with the handler
// name.
func (d *Dispatcher) Dispatch(event DomainEvent) error {
	d.mu.RLock()
	handlers := append([]namedHandler{}, d.handlers[event.EventType()]...)
	handlers = append(handlers, d.handlers["*"]...)
	d.mu.RUnlock()

	for _, nh := range handlers {
		if err := nh.handler(event); err != nil {
			return fmt.Errorf("handler %s failed for event %s: %w", nh.name, event.EventType(), err)
		}
	}
	return nil
}
