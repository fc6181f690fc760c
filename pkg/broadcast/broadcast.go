package broadcast

import "sync"

// Hub fans events of type T out to all current subscribers.
// All methods are safe for concurrent use.
type Hub[T any] struct {
	mu      sync.RWMutex
	subs    map[int]chan T
	nextID  int
	bufSize int
	closed  bool
}

// NewHub creates a hub whose subscriber channels buffer up to bufSize events.
// A minimum buffer of 1 is enforced so publishing never blocks.
func NewHub[T any](bufSize int) *Hub[T] {
	return &Hub[T]{
		subs:    make(map[int]chan T),
		bufSize: max(bufSize, 1),
	}
}

// Subscribe registers a new subscriber and returns its receive channel along
// with an unsubscribe function. Unsubscribing closes the channel; calling the
// returned function more than once is safe. Subscribing to a closed hub
// returns an already-closed channel.
func (h *Hub[T]) Subscribe() (<-chan T, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan T, h.bufSize)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
	return ch, unsubscribe
}

// Publish delivers the event to every subscriber whose buffer has room.
// Events for full buffers are dropped.
func (h *Hub[T]) Publish(event T) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close shuts the hub down and closes all subscriber channels. Idempotent.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
