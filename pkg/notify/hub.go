package notify

import (
	"sync"

	"go.uber.org/zap"
)

const subscriberBuffer = 16

// Hub fans committed notification events out to realtime subscribers.
// Delivery is best effort: the durable record is the notification row
// written inside the owning transaction, so a slow subscriber is dropped
// rather than blocking the publisher.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[chan Event]struct{}
	logger *zap.Logger
}

// NewHub creates an empty hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[chan Event]struct{}),
		logger: logger,
	}
}

// Subscribe registers a realtime channel for one user. The returned cancel
// function unregisters and closes the channel.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan Event]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if set, ok := h.subs[userID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, userID)
			}
		}
	}

	return ch, cancel
}

// Publish delivers the event to every subscriber of its user without
// blocking. Call only after the owning transaction has committed.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[event.UserID] {
		select {
		case ch <- event:
		default:
			h.logger.Warn("Dropping realtime notification for slow subscriber",
				zap.String("user_id", event.UserID),
				zap.String("type", event.Type))
		}
	}
}
