package service

import (
	"context"
	"sync"
)

// Events emitted to the web canvas.
const (
	EventObjectCreated      = "object:created"
	EventObjectUpdated      = "object:updated"
	EventObjectSelected     = "object:selected"
	EventObjectDeleted      = "object:deleted"
	EventObjectDuplicated   = "object:duplicated"
	EventObjectOrderChanged = "object:order-changed"
	EventSnapGuides         = "snap:guides"
	EventViewportChanged    = "viewport:changed"
	EventPointerCapture     = "pointer:capture"
	EventPointerRelease     = "pointer:release"
	EventDesignChanged      = "design:changed"
	EventDesignImported     = "design:imported"
	EventMirrorPushed       = "mirror:pushed"
	EventMirrorFailed       = "mirror:failed"
)

// EventEmitter decouples services from the Wails runtime. The App
// implements it with wailsRuntime.EventsEmit; tests use MockEmitter.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// NopEmitter drops every event. Used by the headless CLI.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, string, any) {}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Named returns the recorded events with the given name.
func (m *MockEmitter) Named(event string) []EmittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []EmittedEvent
	for _, e := range m.Events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
