package stream

import "sync"

// StatusUpdate is published whenever a payment's status changes.
type StatusUpdate struct {
	ExternalReference string `json:"external_reference"`
	Status            string `json:"status"`
}

// Hub fans payment status updates out to subscribers keyed by external
// reference. It is the in-process replacement for a managed database's
// change-notification feed: the callback receiver publishes, waiters listen.
type Hub struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string]map[uint64]chan StatusUpdate
}

func NewHub() *Hub {
	return &Hub{subs: map[string]map[uint64]chan StatusUpdate{}}
}

// Subscribe registers interest in updates for one reference. The returned
// cancel func must be called on every exit path; it is safe to call more
// than once.
func (h *Hub) Subscribe(externalReference string) (<-chan StatusUpdate, func()) {
	ch := make(chan StatusUpdate, 4)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	listeners, ok := h.subs[externalReference]
	if !ok {
		listeners = map[uint64]chan StatusUpdate{}
		h.subs[externalReference] = listeners
	}
	listeners[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if listeners, ok := h.subs[externalReference]; ok {
				delete(listeners, id)
				if len(listeners) == 0 {
					delete(h.subs, externalReference)
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

// Publish delivers an update to every live subscriber for the reference.
// Slow subscribers with a full buffer are skipped rather than blocked on.
func (h *Hub) Publish(update StatusUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[update.ExternalReference] {
		select {
		case ch <- update:
		default:
		}
	}
}

// SubscriberCount reports live subscriptions for a reference.
func (h *Hub) SubscriberCount(externalReference string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[externalReference])
}
