package telemetry

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// EventType identifies the kind of telemetry event.
type EventType string

const (
	EventSessionCreated   EventType = "session.created"
	EventSessionDestroyed EventType = "session.destroyed"
	EventSessionInvalid   EventType = "session.invalid"
	EventSessionReaped    EventType = "session.reaped"
	EventWorkerDied       EventType = "worker.died"

	EventCommandStarted   EventType = "command.started"
	EventCommandCompleted EventType = "command.completed"
	EventCommandFailed    EventType = "command.failed"

	EventNavigationStarted EventType = "navigation.started"
	EventNavigationSettled EventType = "navigation.settled"

	EventWindowOpened EventType = "window.opened"
	EventWindowClosed EventType = "window.closed"
	EventDialogOpened EventType = "dialog.opened"
)

const (
	DefaultSubscriberChannelSize = 64
	DefaultRateLimit             = 1000 // events per second
)

// Event describes session telemetry that front ends and log sinks can consume.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"sessionId,omitempty"`
	Window    string         `json:"window,omitempty"`
	Command   string         `json:"command,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Config tunes hub delivery.
type Config struct {
	SubscriberChannelSize int
	RateLimit             int
}

// Stats is a point-in-time view of the hub.
type Stats struct {
	SubscriberCount int
	Published       int64
	Dropped         int64
	RateLimit       int
}

// Hub fan-outs telemetry events to any number of subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
	closed      bool
	chanSize    int
	rateLimit   int
	limiter     *rate.Limiter

	statsMu   sync.Mutex
	published int64
	dropped   int64
}

// NewHub constructs a telemetry hub with default settings.
func NewHub() *Hub {
	return NewHubWithConfig(nil)
}

// NewHubWithConfig constructs a hub. Zero fields fall back to defaults.
func NewHubWithConfig(cfg *Config) *Hub {
	size := DefaultSubscriberChannelSize
	limit := DefaultRateLimit
	if cfg != nil {
		if cfg.SubscriberChannelSize > 0 {
			size = cfg.SubscriberChannelSize
		}
		if cfg.RateLimit > 0 {
			limit = cfg.RateLimit
		}
	}
	return &Hub{
		subscribers: make(map[string]chan Event),
		chanSize:    size,
		rateLimit:   limit,
		limiter:     rate.NewLimiter(rate.Limit(limit), limit),
	}
}

// Publish notifies all subscribers of an event. Non-blocking; drops if buffer full
// or the hub is over its rate limit.
func (h *Hub) Publish(event Event) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	if !h.limiter.Allow() {
		h.countDropped(1)
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	h.statsMu.Lock()
	h.published++
	h.statsMu.Unlock()
	for _, ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			h.countDropped(1)
		}
	}
}

func (h *Hub) countDropped(n int64) {
	h.statsMu.Lock()
	h.dropped += n
	h.statsMu.Unlock()
}

// Subscribe returns a channel that will receive future events and a cleanup func.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch, id := h.SubscribeWithID()
	return ch, func() { h.Unsubscribe(id) }
}

// SubscribeWithID returns a channel plus an identifier accepted by Unsubscribe.
func (h *Hub) SubscribeWithID() (<-chan Event, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		empty := make(chan Event)
		close(empty)
		return empty, ""
	}
	id := uuid.NewString()
	ch := make(chan Event, h.chanSize)
	h.subscribers[id] = ch
	return ch, id
}

// Unsubscribe removes a subscriber and closes its channel. Unknown ids are ignored.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(ch)
	}
}

// GetStats reports subscriber and delivery counters.
func (h *Hub) GetStats() Stats {
	h.mu.RLock()
	count := len(h.subscribers)
	h.mu.RUnlock()
	h.statsMu.Lock()
	defer h.statsMu.Unlock()
	return Stats{
		SubscriberCount: count,
		Published:       h.published,
		Dropped:         h.dropped,
		RateLimit:       h.rateLimit,
	}
}

// Close unsubscribes all listeners and prevents future publications.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, id)
	}
}
