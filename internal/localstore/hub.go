package localstore

import (
	"sync"

	"github.com/allhaile/puppyTrackr-sub000/internal/events"
)

// subscriberBuffer bounds how many pending updates a slow subscriber can hold
// before further signals are dropped for it.
const subscriberBuffer = 4

// Hub fans collection-update signals out to subscribers of a logical key.
// It generalizes the app's cross-tab broadcast: any consumer subscribed to the
// same key sees a refresh signal after a successful write.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan events.CollectionUpdated
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan events.CollectionUpdated)}
}

// Subscribe registers interest in key. The returned cancel function removes
// the subscription and closes the channel.
func (h *Hub) Subscribe(key string) (<-chan events.CollectionUpdated, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan events.CollectionUpdated, subscriberBuffer)
	if h.subs[key] == nil {
		h.subs[key] = make(map[int]chan events.CollectionUpdated)
	}
	id := h.nextID
	h.nextID++
	h.subs[key][id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[key][id]; ok {
			delete(h.subs[key], id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber of its key without blocking;
// subscribers with a full buffer miss the signal and catch up on the next one.
func (h *Hub) Publish(event events.CollectionUpdated) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[event.Key] {
		select {
		case ch <- event:
		default:
		}
	}
}
