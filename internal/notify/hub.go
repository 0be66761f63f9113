package notify

import (
	"sync"
	"time"

	"go-jobboard-client/internal/domain"
	"go-jobboard-client/pkg/logger"
	"go-jobboard-client/pkg/metrics"
)

const defaultHistory = 50

// Hub is the single notification channel. Notify never blocks: a subscriber
// whose buffer is full misses the message.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscription]struct{}
	history     []domain.Notification
	buffer      int
	metrics     *metrics.Metrics
	now         func() time.Time
}

type Subscription struct {
	C    <-chan domain.Notification
	ch   chan domain.Notification
	hub  *Hub
	once sync.Once
}

func NewHub(buffer int, m *metrics.Metrics) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subscribers: make(map[*Subscription]struct{}),
		buffer:      buffer,
		metrics:     m,
		now:         time.Now,
	}
}

func (h *Hub) Notify(n domain.Notification) {
	if h == nil {
		return
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = h.now().UTC()
	}

	h.mu.Lock()
	h.history = append(h.history, n)
	if len(h.history) > defaultHistory {
		h.history = h.history[len(h.history)-defaultHistory:]
	}
	h.mu.Unlock()

	// Close takes the write lock, so no channel is closed mid-send.
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subscribers {
		select {
		case s.ch <- n:
			h.metrics.Notification(string(n.Level), "delivered")
		default:
			h.metrics.Notification(string(n.Level), "dropped")
			logger.Log.Warn("notification dropped", "topic", n.Topic, "reason", "buffer_full")
		}
	}
}

// Subscribe registers a new listener. Call Close when done.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan domain.Notification, h.buffer)
	s := &Subscription{C: ch, ch: ch, hub: h}
	h.mu.Lock()
	h.subscribers[s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		delete(s.hub.subscribers, s)
		close(s.ch)
	})
}

// Recent returns a copy of the last notifications, oldest first.
func (h *Hub) Recent() []domain.Notification {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]domain.Notification, len(h.history))
	copy(out, h.history)
	return out
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Error and Info are shorthands used by the synchronizers.
func Error(n domain.Notifier, topic, message string) {
	if n == nil {
		return
	}
	n.Notify(domain.Notification{Level: domain.NotificationError, Topic: topic, Message: message})
}

func Info(n domain.Notifier, topic, message string) {
	if n == nil {
		return
	}
	n.Notify(domain.Notification{Level: domain.NotificationInfo, Topic: topic, Message: message})
}

func Success(n domain.Notifier, topic, message string) {
	if n == nil {
		return
	}
	n.Notify(domain.Notification{Level: domain.NotificationSuccess, Topic: topic, Message: message})
}
