package api

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// subscriberBuffer is how many pending notifications a slow subscriber may
// hold before new ones are dropped for it.
const subscriberBuffer = 16

// Hub fans state notifications out to websocket subscribers.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]chan []byte
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]chan []byte)}
}

// Subscribe registers a subscriber. The channel is closed by cancel or by
// Close.
func (h *Hub) Subscribe() (id string, ch <-chan []byte, cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id = uuid.NewString()
	c := make(chan []byte, subscriberBuffer)
	if h.closed {
		close(c)
		return id, c, func() {}
	}
	h.subs[id] = c

	return id, c, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
}

// Broadcast queues msg for every subscriber without blocking.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.subs {
		select {
		case c <- msg:
		default:
			slog.Warn("dropping notification for slow subscriber", "subscriber", id)
		}
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, c := range h.subs {
		delete(h.subs, id)
		close(c)
	}
}
