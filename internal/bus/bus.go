package bus

import (
	"context"
	"sync"
	"time"

	"cafe-pos/internal/models"
	"cafe-pos/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Bus is the broadcast contract: every committed mutation is published to
// all currently connected subscribers. Delivery is best-effort and
// at-most-once per subscriber per emission; there is no replay queue. An
// offline terminal recovers by re-fetching, not by redelivery.
type Bus interface {
	Publish(ctx context.Context, name string, data map[string]any)
}

// subscriberBuffer bounds how far a subscriber may fall behind before its
// events start getting dropped.
const subscriberBuffer = 64

// Subscriber receives the event stream over a buffered channel.
type Subscriber struct {
	ch chan models.Event
}

// Events returns the subscriber's receive channel. It is closed on
// Unsubscribe.
func (s *Subscriber) Events() <-chan models.Event {
	return s.ch
}

// Hub is the in-process Bus implementation fanning events out to every
// subscriber. Publishes happen on the mutating request's goroutine after
// its write committed, so per-table event order follows commit order.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscriber]struct{}
	closed      bool
	logger      *zap.Logger
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]struct{}),
		logger:      util.GetLogger(),
	}
}

// Subscribe registers a new subscriber. It receives every event published
// after this call returns.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan models.Event, subscriberBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub
	}
	h.subscribers[sub] = struct{}{}
	return sub
}

// Unsubscribe removes the subscriber and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[sub]; !ok {
		return
	}
	delete(h.subscribers, sub)
	close(sub.ch)
}

// Publish broadcasts one event to all current subscribers. A subscriber
// whose buffer is full loses the event; that loss is logged and counted
// but never fails the mutation that produced it.
func (h *Hub) Publish(ctx context.Context, name string, data map[string]any) {
	event := models.Event{
		ID:        uuid.New().String(),
		Name:      name,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	util.EventsPublishedTotal.WithLabelValues(name).Inc()

	for sub := range h.subscribers {
		select {
		case sub.ch <- event:
		default:
			util.EventsDroppedTotal.Inc()
			h.logger.Warn("Dropping event for slow subscriber",
				zap.String("event", name))
		}
	}
}

// Close shuts the hub down and closes every subscriber channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subscribers {
		delete(h.subscribers, sub)
		close(sub.ch)
	}
}
