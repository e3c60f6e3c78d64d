package events

import (
	"context"
	"sync"

	"manhwahub/internal/microservices/http-api/service"
)

// subscriberBuffer bounds how far a slow subscriber may lag before events are dropped.
const subscriberBuffer = 16

// Event is a change event and the user it belongs to. Scoped is false when the
// owner is unknown; such events reach every subscriber.
type Event struct {
	Name   string
	UserID int64
	Scoped bool
}

// For reports whether a subscriber for userID should see the event.
func (e Event) For(userID int64) bool {
	return !e.Scoped || e.UserID == userID
}

// Hub fans change events out to in-process subscribers (SSE streams, WebSocket
// clients, the UDP feed), grouped by user. It is process-local; RedisBridge
// carries events between instances.
type Hub struct {
	mu    sync.RWMutex
	users map[int64]map[chan Event]struct{}
	all   map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		users: make(map[int64]map[chan Event]struct{}),
		all:   make(map[chan Event]struct{}),
	}
}

// Subscribe registers a subscriber for one user's events and returns its
// channel plus an unsubscribe function that must be called on disconnect.
func (h *Hub) Subscribe(userID int64) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	set, ok := h.users[userID]
	if !ok {
		set = make(map[chan Event]struct{})
		h.users[userID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	return ch, h.unsubscribe(ch, func() {
		delete(set, ch)
		if len(set) == 0 {
			delete(h.users, userID)
		}
	})
}

// SubscribeAll registers a subscriber that sees every user's events. It is for
// relays that filter per recipient themselves.
func (h *Hub) SubscribeAll() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.all[ch] = struct{}{}
	h.mu.Unlock()

	return ch, h.unsubscribe(ch, func() { delete(h.all, ch) })
}

func (h *Hub) unsubscribe(ch chan Event, remove func()) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			remove()
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Broadcast delivers event to the subscribers of the user carried by ctx, or
// to every subscriber when ctx carries none. Slow consumers are skipped.
func (h *Hub) Broadcast(ctx context.Context, event string) {
	if event == "" {
		return
	}
	ev := Event{Name: event}
	ev.UserID, ev.Scoped = service.EventUser(ctx)

	h.mu.RLock()
	defer h.mu.RUnlock()
	if ev.Scoped {
		send(h.users[ev.UserID], ev)
	} else {
		for _, set := range h.users {
			send(set, ev)
		}
	}
	send(h.all, ev)
}

func send(set map[chan Event]struct{}, ev Event) {
	for ch := range set {
		select {
		case ch <- ev:
		default:
			// subscriber is full
		}
	}
}

// Count returns the number of live subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := len(h.all)
	for _, set := range h.users {
		n += len(set)
	}
	return n
}
