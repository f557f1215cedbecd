// internal/event/manager.go
package event

import "github.com/bethropolis/tangent/internal/logger"

// Handler receives dispatched events. It returns true if it consumed the
// event, which stops delivery to later handlers.
type Handler func(e Event) bool

// Manager fans events out to subscribers synchronously, in subscription
// order. Like the documents that use it, it is not safe for concurrent use.
type Manager struct {
	handlers map[Type][]Handler
}

// NewManager creates a new event manager.
func NewManager() *Manager {
	return &Manager{handlers: make(map[Type][]Handler)}
}

// Subscribe adds a handler for eventType.
func (m *Manager) Subscribe(eventType Type, handler Handler) {
	m.handlers[eventType] = append(m.handlers[eventType], handler)
	logger.DebugTagf("event", "Event Manager: handler subscribed to %v", eventType)
}

// Dispatch delivers an event to every handler registered for its type.
func (m *Manager) Dispatch(eventType Type, data interface{}) {
	if m == nil {
		return
	}
	handlers := m.handlers[eventType]
	if len(handlers) == 0 {
		return
	}
	e := Event{Type: eventType, Data: data}
	// Copy so a handler that subscribes during dispatch does not affect this round.
	for _, h := range append([]Handler(nil), handlers...) {
		if h(e) {
			break
		}
	}
}
