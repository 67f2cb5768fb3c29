package events

import (
	"log/slog"
	"slices"
	"sync"
	"time"
)

type Type string

const (
	InventoryUpdated Type = "inventoryUpdated"
	OrdersUpdated    Type = "ordersUpdated"
	AnalyticsUpdated Type = "analyticsUpdated"
	MROUpdated       Type = "mroUpdated"
)

type Event struct {
	Type      Type
	Source    string
	Timestamp time.Time
}

type Handler func(Event)

// Bus is an in-process publish/subscribe hub. It is passed to the services
// that publish or react to data changes; there is no global instance.
type Bus struct {
	mutex       sync.RWMutex
	subscribers map[Type]map[int]Handler
	nextID      int
	logger      *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subscribers: make(map[Type]map[int]Handler),
		logger:      logger,
	}
}

// Subscribe registers handler for every listed type and returns a func that
// removes it again.
func (b *Bus) Subscribe(handler Handler, types ...Type) func() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	id := b.nextID
	b.nextID++
	for _, t := range types {
		if b.subscribers[t] == nil {
			b.subscribers[t] = make(map[int]Handler)
		}
		b.subscribers[t][id] = handler
	}

	return func() {
		b.mutex.Lock()
		defer b.mutex.Unlock()
		for _, t := range types {
			delete(b.subscribers[t], id)
		}
	}
}

// Publish delivers one event per type synchronously, in subscription order.
// A panicking handler is logged and does not stop delivery to the others.
func (b *Bus) Publish(source string, types ...Type) {
	now := time.Now()
	for _, t := range types {
		event := Event{Type: t, Source: source, Timestamp: now}
		for _, h := range b.handlers(t) {
			b.deliver(h, event)
		}
	}
}

func (b *Bus) handlers(t Type) []Handler {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	subs := b.subscribers[t]
	ids := make([]int, 0, len(subs))
	for id := range subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]Handler, 0, len(ids))
	for _, id := range ids {
		out = append(out, subs[id])
	}
	return out
}

func (b *Bus) deliver(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", "event", e.Type, "source", e.Source, "panic", r)
		}
	}()
	h(e)
}
