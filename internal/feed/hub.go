// Package feed fans application-change events out to connected dashboard
// clients. Ownership is explicit: whoever calls Subscribe holds a single
// handle whose Close releases everything; there is no ambient registry.
package feed

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/rahmanmohd/incubator-api/internal/domain"
)

// EventType labels what happened to a row.
type EventType string

const (
	EventStatusChanged EventType = "status_changed"
	EventDeleted       EventType = "deleted"
)

// Event describes one application change. Kind and ID together identify the
// row; a bare ID is never unique across kinds.
type Event struct {
	Type   EventType     `json:"type"`
	Kind   domain.Kind   `json:"kind"`
	ID     string        `json:"id"`
	Status domain.Status `json:"status,omitempty"`
	At     time.Time     `json:"at"`
}

// Hub distributes events to all live subscriptions. Publishing never blocks
// the write path: a subscriber that cannot keep up loses events instead of
// stalling status updates.
type Hub struct {
	mu      sync.RWMutex
	subs    map[*Subscription]struct{}
	buffer  int
	logger  zerolog.Logger
	dropped atomic.Uint64
}

// NewHub creates a hub whose subscriptions buffer the given number of
// events. Buffers below 1 are raised to 1.
func NewHub(buffer int, logger zerolog.Logger) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a new subscriber and returns its handle.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{hub: h, ch: make(chan Event, h.buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Publish delivers the event to every subscription, dropping it for
// subscribers with full buffers.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.ch <- ev:
		default:
			h.dropped.Add(1)
			h.logger.Warn().
				Str("kind", string(ev.Kind)).
				Str("id", ev.ID).
				Msg("feed subscriber behind, event dropped")
		}
	}
}

// Dropped reports how many events were lost to slow subscribers.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// SubscriberCount reports how many subscriptions are live.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}

// Subscription is one subscriber's handle. Events arrive on Events until
// Close, which deregisters from the hub and closes the channel. Close is
// idempotent and is the only release path.
type Subscription struct {
	hub  *Hub
	ch   chan Event
	once sync.Once
}

// Events returns the receive channel. It is closed by Close.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close deregisters the subscription and closes its channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.ch)
	})
}
