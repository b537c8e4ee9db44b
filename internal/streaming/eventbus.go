package streaming

import (
	"context"
	"strconv"
	"sync"

	"honeypot-lab/pkg/logger"
)

// subscriberBuffer is the per-subscriber queue depth; a full queue drops events for that subscriber
const subscriberBuffer = 100

// Subscription filters verdict events for one subscriber. Zero value matches everything.
type Subscription struct {
	SessionID    string `json:"session_id,omitempty"`
	DetectedOnly bool   `json:"detected_only,omitempty"`
}

// Matches reports whether the event passes the filter
func (s *Subscription) Matches(event *VerdictEvent) bool {
	if s == nil {
		return true
	}
	if s.SessionID != "" && s.SessionID != event.SessionID {
		return false
	}
	if s.DetectedOnly && event.Type != EventTypeScamDetected {
		return false
	}
	return true
}

// EventBus distributes verdict events to local subscribers and, when connected, to NATS
type EventBus struct {
	nats   *NATSPublisher
	logger *logger.Logger

	mu          sync.RWMutex
	subscribers map[string]subscriber
	nextID      int
}

type subscriber struct {
	ch  chan *VerdictEvent
	sub *Subscription
}

// NewEventBus creates a new event bus. nats may be nil.
func NewEventBus(nats *NATSPublisher, log *logger.Logger) *EventBus {
	return &EventBus{
		nats:        nats,
		logger:      log.WithComponent("event-bus"),
		subscribers: make(map[string]subscriber),
	}
}

// PublishVerdict publishes to NATS if available and broadcasts to local subscribers.
// The NATS error is returned after the local broadcast so callers can log it.
func (eb *EventBus) PublishVerdict(ctx context.Context, event *VerdictEvent) error {
	var natsErr error
	if eb.nats != nil {
		natsErr = eb.nats.PublishVerdict(ctx, event)
	}

	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for id, s := range eb.subscribers {
		if !s.sub.Matches(event) {
			continue
		}
		select {
		case s.ch <- event:
		default:
			eb.logger.Debug().Str("subscriber", id).Msg("subscriber channel full, dropping event")
		}
	}

	return natsErr
}

// Subscribe registers a subscriber and returns its event channel and an unsubscribe func
func (eb *EventBus) Subscribe(sub *Subscription) (<-chan *VerdictEvent, func()) {
	eb.mu.Lock()
	eb.nextID++
	id := strconv.Itoa(eb.nextID)
	ch := make(chan *VerdictEvent, subscriberBuffer)
	eb.subscribers[id] = subscriber{ch: ch, sub: sub}
	eb.mu.Unlock()

	eb.logger.Debug().Str("subscriber_id", id).Msg("new subscriber")

	unsubscribe := func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()
		if _, ok := eb.subscribers[id]; ok {
			close(ch)
			delete(eb.subscribers, id)
			eb.logger.Debug().Str("subscriber_id", id).Msg("subscriber removed")
		}
	}

	return ch, unsubscribe
}

// SubscriberCount returns the number of active subscribers
func (eb *EventBus) SubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// Close closes every subscriber channel. The NATS connection is owned by the caller.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for id, s := range eb.subscribers {
		close(s.ch)
		delete(eb.subscribers, id)
	}
}
