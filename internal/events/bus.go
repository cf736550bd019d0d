// Package events provides a lightweight in-process publish/subscribe
// bus used to surface screening progress to the SSE stream.
package events

import (
	"sync"
	"time"
)

// EventType identifies a category of event
type EventType string

const (
	ScreenStarted   EventType = "screen_started"
	TickerAnalyzed  EventType = "ticker_analyzed"
	TickerSkipped   EventType = "ticker_skipped"
	ScreenCompleted EventType = "screen_completed"
)

// Event is a single published event with its payload
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Handler processes a published event. Handlers must not block; slow
// consumers should buffer on their side (the SSE handler does).
type Handler func(*Event)

// Bus fans published events out to subscribers by type. Safe for
// concurrent use.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates an empty event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe registers a handler for an event type
func (b *Bus) Subscribe(t EventType, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], h)
}

// Publish delivers an event to all handlers registered for its type.
// Delivery is synchronous and in subscription order.
func (b *Bus) Publish(t EventType, data interface{}) {
	event := &Event{
		Type:      t,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	b.mu.RLock()
	handlers := b.handlers[t]
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}
