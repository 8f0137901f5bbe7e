package service

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/institute-api/internal/observability"
)

const notificationBufferSize = 16

// Notification levels.
const (
	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationWarning = "warning"
	NotificationError   = "error"
)

// NotificationAction is a labelled follow-up a consumer may trigger for a
// notification, typically rendered as a button.
type NotificationAction struct {
	Label string `json:"label"`
	Key   string `json:"key"`
}

// Notification is a transient user-facing message. Duration zero means the
// notification is sticky and stays visible until dismissed explicitly.
type Notification struct {
	ID       string               `json:"id"`
	Type     string               `json:"type"`
	Title    string               `json:"title"`
	Message  string               `json:"message"`
	Duration time.Duration        `json:"duration"`
	Actions  []NotificationAction `json:"actions,omitempty"`
}

// NotificationEvent is delivered to subscribers for every lifecycle change.
type NotificationEvent struct {
	Kind         string       `json:"kind"` // "posted" or "dismissed"
	Notification Notification `json:"notification"`
}

// NotificationCenter fans notifications out to in-process subscribers and
// auto-dismisses timed ones. Slow subscribers drop events rather than block
// publishers.
type NotificationCenter struct {
	logger zerolog.Logger

	mu          sync.Mutex
	active      map[string]Notification
	timers      map[string]*time.Timer
	subscribers map[chan NotificationEvent]struct{}

	// afterFunc is swappable so tests can fire dismissal timers directly.
	afterFunc func(d time.Duration, f func()) *time.Timer
}

// NewNotificationCenter constructs an empty notification center.
func NewNotificationCenter(logger zerolog.Logger) *NotificationCenter {
	return &NotificationCenter{
		logger:      logger.With().Str("component", "notification_center").Logger(),
		active:      make(map[string]Notification),
		timers:      make(map[string]*time.Timer),
		subscribers: make(map[chan NotificationEvent]struct{}),
		afterFunc:   time.AfterFunc,
	}
}

// Notify posts a notification and returns its generated id. A positive
// duration schedules automatic dismissal.
func (c *NotificationCenter) Notify(notification Notification) string {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if strings.TrimSpace(notification.Type) == "" {
		notification.Type = NotificationInfo
	}

	c.mu.Lock()
	c.active[notification.ID] = notification
	if notification.Duration > 0 {
		id := notification.ID
		c.timers[id] = c.afterFunc(notification.Duration, func() {
			c.Dismiss(id)
		})
	}
	c.mu.Unlock()

	observability.NotificationsPostedTotal().WithLabelValues(notification.Type).Inc()
	c.broadcast(NotificationEvent{Kind: "posted", Notification: notification})
	return notification.ID
}

// Dismiss removes a notification. Dismissing an unknown id is a no-op, which
// makes the auto-dismiss timer race with manual dismissal harmless.
func (c *NotificationCenter) Dismiss(id string) {
	c.mu.Lock()
	notification, ok := c.active[id]
	if ok {
		delete(c.active, id)
	}
	if timer, exists := c.timers[id]; exists {
		timer.Stop()
		delete(c.timers, id)
	}
	c.mu.Unlock()

	if !ok {
		return
	}
	c.broadcast(NotificationEvent{Kind: "dismissed", Notification: notification})
}

// Active returns a snapshot of the currently visible notifications.
func (c *NotificationCenter) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Notification, 0, len(c.active))
	for _, notification := range c.active {
		out = append(out, notification)
	}
	return out
}

// Subscribe registers a consumer. The returned cleanup must be called to
// release the channel.
func (c *NotificationCenter) Subscribe() (<-chan NotificationEvent, func()) {
	channel := make(chan NotificationEvent, notificationBufferSize)

	c.mu.Lock()
	c.subscribers[channel] = struct{}{}
	c.mu.Unlock()

	cleanup := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[channel]; ok {
			delete(c.subscribers, channel)
			close(channel)
		}
		c.mu.Unlock()
	}

	return channel, cleanup
}

func (c *NotificationCenter) broadcast(event NotificationEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for channel := range c.subscribers {
		select {
		case channel <- event:
		default:
			c.logger.Debug().Str("id", event.Notification.ID).Msg("subscriber buffer full, dropping notification event")
		}
	}
}
