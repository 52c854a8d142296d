package events

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Handler receives every event emitted on a Bus it has subscribed to.
// Handlers run synchronously on the emitting goroutine (the same
// caller-runs model the teacher's orchestrator.Bus subscribers use),
// so a slow handler backpressures the emitter; keep handlers cheap or
// have them hand work off to their own goroutine.
type Handler func(Event)

// Bus fans out Events to every subscribed Handler and stamps each
// Event with a monotonic ULID and timestamp before delivery.
type Bus struct {
	mu       sync.Mutex
	handlers []Handler
	entropy  *ulid.MonotonicEntropy
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Subscribe registers a handler to receive every future Emit.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Emit stamps e with an ID and timestamp (if unset) and delivers it to
// every subscribed handler in registration order.
func (b *Bus) Emit(e Event) {
	b.mu.Lock()
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	if e.ID == "" {
		id, err := ulid.New(ulid.Timestamp(e.Time), b.entropy)
		if err == nil {
			e.ID = id.String()
		}
	}
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.Unlock()

	for _, h := range handlers {
		h(e)
	}
}
