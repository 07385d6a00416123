package notify

import "sync"

// defaultSubscriberBuffer is the per-subscriber event buffer size.
// A subscriber that falls this far behind is treated as gone.
const defaultSubscriberBuffer = 32

// Logger is the logging surface used by the Hub.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}

// Subscriber is one live client's event feed.
//
// Events arrives in broadcast order (FIFO per subscriber). The channel
// is closed when the subscriber is removed, either by Unsubscribe or
// because its buffer overflowed.
type Subscriber struct {
	events chan Event
}

// Events returns the subscriber's ordered event feed.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// Hub fans events out to every live subscriber.
//
// Delivery is best-effort per subscriber: a subscriber whose buffer is
// full is assumed dead or hopelessly slow and is dropped from the set,
// so one stuck client never stalls the broadcast for others or blocks
// the ingestion path that produced the event.
//
// The mutex is held across the whole broadcast. Sends are non-blocking,
// so this is cheap, and it guarantees that two broadcasts cannot
// interleave their sends — every surviving subscriber sees events in
// broadcast order.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*Subscriber]struct{}
	buffer      int
	logger      Logger
}

// NewHub creates a hub. bufferSize <= 0 selects the default.
func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = defaultSubscriberBuffer
	}
	return &Hub{
		subscribers: make(map[*Subscriber]struct{}),
		buffer:      bufferSize,
		logger:      noopLogger{},
	}
}

// SetLogger sets the logger for the hub.
// Safe to call concurrently with broadcasts and subscriptions.
func (h *Hub) SetLogger(logger Logger) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logger = logger
}

// Subscribe registers a new live subscriber and returns its handle.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{
		events: make(chan Event, h.buffer),
	}

	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	count := len(h.subscribers)
	logger := h.logger
	h.mu.Unlock()

	logger.Debug("subscriber added", "subscribers", count)
	return sub
}

// Unsubscribe removes a subscriber and closes its event channel.
// Safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	_, ok := h.subscribers[sub]
	if ok {
		delete(h.subscribers, sub)
		close(sub.events)
	}
	count := len(h.subscribers)
	logger := h.logger
	h.mu.Unlock()

	if ok {
		logger.Debug("subscriber removed", "subscribers", count)
	}
}

// Broadcast delivers an event to every current subscriber.
//
// Never blocks: subscribers that cannot accept the event are dropped
// from the set and their channels closed.
func (h *Hub) Broadcast(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subscribers {
		select {
		case sub.events <- event:
		default:
			// Buffer full: the client is gone or stuck. Drop it.
			delete(h.subscribers, sub)
			close(sub.events)
			h.logger.Info("slow subscriber dropped", "subscribers", len(h.subscribers))
		}
	}
}

// Count returns the number of live subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
