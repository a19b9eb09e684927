package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventType identifies the kind of task mutation being broadcast
type EventType string

const (
	TaskCreated EventType = "task_created"
	TaskUpdated EventType = "task_updated"
	TaskDeleted EventType = "task_deleted"
)

// Event is a task-change notification delivered to connected clients
type Event struct {
	Type      EventType              `json:"type"`
	TaskID    uuid.UUID              `json:"task_id"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// subscriberBuffer bounds each connection's queue; slow consumers drop events
const subscriberBuffer = 16

// Hub fans task events out to per-user subscriber channels. Delivery is
// best-effort and in-process only: a restart drops all live connections
// and anything queued but undelivered.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan Event]struct{}
	logger      *zap.Logger
}

// NewHub creates an empty broadcast hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[chan Event]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a new delivery queue for the user. The returned
// cancel function deregisters the queue and closes the channel; it is
// safe to call more than once.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan Event]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if subs, ok := h.subscribers[userID]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(h.subscribers, userID)
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

// Publish delivers an event to all of the user's open queues. Sends never
// block: a full queue drops the event for that subscriber.
func (h *Hub) Publish(userID uuid.UUID, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[userID] {
		select {
		case ch <- event:
		default:
			h.logger.Warn("dropping event for slow subscriber",
				zap.String("user_id", userID.String()),
				zap.String("event_type", string(event.Type)))
		}
	}
}

// SubscriberCount reports how many queues are open for the user
func (h *Hub) SubscriberCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}
