package handlers

import (
	"sync"

	"github.com/kozaktomas/photo-sheet/internal/constants"
)

// Editor event types.
const (
	EventState  = "state"
	EventClosed = "closed"
)

// EditorEvent represents an event from an editor session.
type EditorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// EventBroadcaster provides listener management and event broadcasting.
// Embed it to get AddListener, RemoveListener and SendEvent methods.
type EventBroadcaster struct {
	listeners []chan EditorEvent
	closed    bool
	mu        sync.RWMutex
}

// AddListener adds an event listener. On a closed broadcaster the returned
// channel is already closed.
func (b *EventBroadcaster) AddListener() chan EditorEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan EditorEvent, constants.EventChannelBuffer)
	if b.closed {
		close(ch)
		return ch
	}
	b.listeners = append(b.listeners, ch)
	return ch
}

// RemoveListener removes an event listener.
func (b *EventBroadcaster) RemoveListener(ch chan EditorEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// SendEvent sends an event to all listeners.
func (b *EventBroadcaster) SendEvent(event EditorEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, listener := range b.listeners {
		select {
		case listener <- event:
		default:
			// Listener buffer full, skip.
		}
	}
}

// ListenerCount returns the number of attached listeners.
func (b *EventBroadcaster) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// CloseAll sends a closed event and closes every listener.
func (b *EventBroadcaster) CloseAll(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, listener := range b.listeners {
		select {
		case listener <- EditorEvent{Type: EventClosed, Message: message}:
		default:
		}
		close(listener)
	}
	b.listeners = nil
}
