package notify

import "sync"

// Hub fans notifications out to live subscribers. Subscriptions are per-user;
// a slow subscriber drops messages instead of blocking the publisher.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan Notification]struct{} // userID -> subscriber channels
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Notification]struct{})}
}

// Subscribe registers a buffered channel for the user. The caller must
// Unsubscribe when done.
func (h *Hub) Subscribe(userID string) chan Notification {
	ch := make(chan Notification, 16)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan Notification]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes the channel.
func (h *Hub) Unsubscribe(userID string, ch chan Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[userID]; ok {
		if _, ok := set[ch]; ok {
			delete(set, ch)
			close(ch)
			if len(set) == 0 {
				delete(h.subs, userID)
			}
		}
	}
}

// Publish delivers to every live subscriber of the notification's user.
func (h *Hub) Publish(n Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[n.UserID] {
		select {
		case ch <- n:
		default:
		}
	}
}
