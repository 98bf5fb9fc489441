package relay

import "sync"

// Hub wakes subscriber streams when a new event lands. Each waiter grabs the
// current generation channel; Notify closes it and starts a new one, so
// every blocked stream wakes at once.
type Hub struct {
	mu sync.Mutex
	ch chan struct{}
}

// NewHub returns a ready hub.
func NewHub() *Hub {
	return &Hub{ch: make(chan struct{})}
}

// Updated returns a channel that is closed on the next Notify.
func (h *Hub) Updated() <-chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ch
}

// Notify wakes all current waiters.
func (h *Hub) Notify() {
	h.mu.Lock()
	defer h.mu.Unlock()
	close(h.ch)
	h.ch = make(chan struct{})
}
