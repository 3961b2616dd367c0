// Package delivery fans chat events out to live subscribers such as SSE
// clients and the terminal REPL.
package delivery

import (
	"log/slog"
	"sync"
	"time"

	"github.com/user/brainassist/internal/stream"
	"github.com/user/brainassist/internal/types"
)

type EventType string

const (
	EventState    EventType = "state"
	EventAppend   EventType = "message"
	EventFragment EventType = "delta"
	EventRemove   EventType = "remove"
	EventReset    EventType = "reset"
)

// Event is one transcript or state change. Only the fields for Type are set.
type Event struct {
	Type      EventType       `json:"type"`
	State     stream.State    `json:"state,omitempty"`
	Message   *types.Message  `json:"message,omitempty"`
	MessageID types.MessageID `json:"message_id,omitempty"`
	Fragment  string          `json:"fragment,omitempty"`
}

// DefaultBuffer is the per-subscriber channel size.
const DefaultBuffer = 256

// DefaultLagWait is how long Publish waits on a full subscriber.
const DefaultLagWait = 2 * time.Second

// Hub implements stream.Observer by broadcasting every call as an Event.
// Publish waits up to the lag wait for a full subscriber, then drops the
// event for it. Consumers that must show the exact reply re-sync from its
// final message.
type Hub struct {
	mu      sync.RWMutex
	subs    map[int]chan Event
	next    int
	buffer  int
	lagWait time.Duration
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithLagWait sets how long Publish blocks on a full subscriber. Zero
// drops immediately.
func WithLagWait(d time.Duration) HubOption {
	return func(h *Hub) {
		if d >= 0 {
			h.lagWait = d
		}
	}
}

// NewHub creates a hub with the given per-subscriber buffer; values below
// one use DefaultBuffer.
func NewHub(buffer int, opts ...HubOption) *Hub {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	h := &Hub{subs: make(map[int]chan Event), buffer: buffer, lagWait: DefaultLagWait}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Subscribe registers a listener. The returned func unsubscribes and
// closes the channel; calling it twice is safe.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish delivers ev to every subscriber in order. A full subscriber
// holds the publisher for at most the lag wait.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subs {
		select {
		case ch <- ev:
			continue
		default:
		}
		if h.lagWait > 0 {
			timer := time.NewTimer(h.lagWait)
			select {
			case ch <- ev:
				timer.Stop()
				continue
			case <-timer.C:
			}
		}
		slog.Warn("subscriber lagging, event dropped", "subscriber", id, "type", string(ev.Type))
	}
}

func (h *Hub) OnState(s stream.State) {
	h.Publish(Event{Type: EventState, State: s})
}

func (h *Hub) OnAppend(m types.Message) {
	h.Publish(Event{Type: EventAppend, Message: &m, MessageID: m.ID})
}

func (h *Hub) OnFragment(id types.MessageID, fragment string) {
	h.Publish(Event{Type: EventFragment, MessageID: id, Fragment: fragment})
}

func (h *Hub) OnRemove(id types.MessageID) {
	h.Publish(Event{Type: EventRemove, MessageID: id})
}

// OnReset announces that the transcript was cleared or replaced.
func (h *Hub) OnReset() {
	h.Publish(Event{Type: EventReset})
}

var _ stream.Observer = (*Hub)(nil)
