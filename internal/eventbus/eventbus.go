// Package eventbus provides an in-process pub/sub event bus for workflow
// progress. The orchestrator publishes; the TUI and the headless printer
// subscribe.
package eventbus

import (
	"sync"
)

// EventType identifies the type of event.
type EventType string

const (
	EventStateChanged EventType = "state_changed"
	EventStatusLine   EventType = "status_line"
	EventRunFinished  EventType = "run_finished"
	EventSteamStatus  EventType = "steam_status"
)

// Event represents a workflow event in the bus.
type Event struct {
	Type  EventType
	RunID string
	Data  any // type-specific payload, defined by the publisher
}

// SubscriberBuffer is the channel capacity of each subscription.
const SubscriberBuffer = 256

// Bus is an in-process event bus.
// It uses a simple broadcast pattern where all subscribers receive all events.
// Thread-safe for concurrent publish/subscribe operations.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextID      int
	closed      bool
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		subscribers: make(map[int]chan Event),
	}
}

// Subscribe creates a new subscription and returns a channel for receiving events.
// The returned unsubscribe function must be called to clean up when done.
// The channel has a buffer to avoid blocking publishers.
func (b *Bus) Subscribe() (events <-chan Event, unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Event)
		close(ch)
		return ch, func() {}
	}

	b.nextID++
	id := b.nextID
	ch := make(chan Event, SubscriberBuffer)
	b.subscribers[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if ch, ok := b.subscribers[id]; ok {
			close(ch)
			delete(b.subscribers, id)
		}
	}
}

// Publish sends an event to all subscribers.
// Non-blocking: if a subscriber's channel is full, the event is dropped for
// that subscriber. Run results stay available through the run handle.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// PublishState publishes a state transition.
func (b *Bus) PublishState(runID string, data any) {
	b.Publish(Event{Type: EventStateChanged, RunID: runID, Data: data})
}

// PublishLine publishes one status line.
func (b *Bus) PublishLine(runID string, data any) {
	b.Publish(Event{Type: EventStatusLine, RunID: runID, Data: data})
}

// PublishFinished publishes the final result of a run.
func (b *Bus) PublishFinished(runID string, data any) {
	b.Publish(Event{Type: EventRunFinished, RunID: runID, Data: data})
}

// PublishSteamStatus publishes whether Steam is currently running.
func (b *Bus) PublishSteamStatus(running bool) {
	b.Publish(Event{Type: EventSteamStatus, Data: running})
}

// Close shuts down the bus and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
