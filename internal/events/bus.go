package events

import "sync"

// Kind is the class of mutation that happened to a table
type Kind string

const (
	KindInsert Kind = "insert"
	KindUpdate Kind = "update"
)

// Event describes a mutation to a watched record set. It carries no row
// data; subscribers treat it purely as a cache-invalidation signal.
type Event struct {
	Table string
	Kind  Kind
}

// Handler receives change events. Handlers must be quick; they run on the
// mutating goroutine and must not assume ordering across tables.
type Handler func(Event)

// Bus is a process-local change-propagation bus. Repositories publish after
// successful writes; read-side caches subscribe to invalidate themselves.
// Delivery is at-least-once within the process and carries no ordering
// guarantee across tables.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]Handler
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]Handler)}
}

// Subscribe registers a handler for mutations of the given table.
// Handlers cannot be unregistered; subscribers live for the process.
func (b *Bus) Subscribe(table string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[table] = append(b.subs[table], h)
}

// Publish notifies all handlers subscribed to the event's table. Safe to
// call on a nil bus so repositories can run without change propagation.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}

	b.mu.RLock()
	handlers := make([]Handler, len(b.subs[e.Table]))
	copy(handlers, b.subs[e.Table])
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
