package domain

import "time"

type NotificationLevel string

const (
	NotificationInfo    NotificationLevel = "info"
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
)

// Notification is a user-visible, toast-like message.
type Notification struct {
	Level     NotificationLevel `json:"level"`
	Topic     string            `json:"topic"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
}

// Notifier is the single non-blocking notification channel. Notify must never block.
type Notifier interface {
	Notify(n Notification)
}
