package irc

import (
	"sync"

	"github.com/google/uuid"
)

// Handler receives dispatched events. Implementations declare which
// categories they care about via Capabilities; the dispatcher skips
// delivery for events outside that set.
type Handler interface {
	Capabilities() Capability
	HandleEvent(conn *Connection, event Event)
}

// registeredHandler pairs a Handler with the token returned to the
// caller so a specific registration can be removed later even if two
// handlers of the same concrete type are registered.
type registeredHandler struct {
	id      uuid.UUID
	handler Handler
}

// HandlerRegistry is an ordered, mutex-guarded list of Handlers.
// Dispatch iterates a snapshot copied out under the lock so that a
// handler registering or removing another handler mid-dispatch cannot
// corrupt the in-flight iteration.
type HandlerRegistry struct {
	mu       sync.Mutex
	handlers []registeredHandler
}

// NewHandlerRegistry creates an empty registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{}
}

// Register appends h and returns a token that Remove accepts.
func (r *HandlerRegistry) Register(h Handler) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	r.handlers = append(r.handlers, registeredHandler{id: id, handler: h})
	return id
}

// Remove drops the handler registered under id, if any.
func (r *HandlerRegistry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, rh := range r.handlers {
		if rh.id == id {
			r.handlers = append(r.handlers[:i:i], r.handlers[i+1:]...)
			return
		}
	}
}

// snapshot copies out the current handler list under the lock.
func (r *HandlerRegistry) snapshot() []registeredHandler {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]registeredHandler, len(r.handlers))
	copy(out, r.handlers)
	return out
}

// Dispatch delivers event, in registration order, to every handler
// whose declared capabilities include the event's category.
func (r *HandlerRegistry) Dispatch(conn *Connection, event Event) {
	cat := event.Category()
	for _, rh := range r.snapshot() {
		if cat.inCapability(rh.handler.Capabilities()) {
			rh.handler.HandleEvent(conn, event)
		}
	}
}
