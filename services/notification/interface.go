package notification

import (
	"context"

	"caresaviour/models"
)

// Event is the domain-specific realtime event sent alongside a notification.
type Event struct {
	Name    string
	Payload interface{}
}

// NotifyInput describes one notification for one recipient.
type NotifyInput struct {
	RecipientID    string
	RecipientModel models.RecipientModel
	Type           models.NotificationType
	Title          string
	Message        string
	BookingID      string
	Event          *Event
}

// NotificationService persists per-recipient notifications and fans them out
// to realtime channels and mobile push.
type NotificationService interface {
	// Notify persists the notification, then emits Event (when set) followed by
	// new_notification. Only the persistence failure is returned.
	Notify(ctx context.Context, in NotifyInput) (*models.Notification, error)
	ListForRecipient(ctx context.Context, recipientID string) ([]models.Notification, error)
	// MarkRead flags a notification read on behalf of its owner.
	MarkRead(ctx context.Context, notificationID, requesterID string) (*models.Notification, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
}

// PushEnqueuer schedules mobile push delivery for a persisted notification.
type PushEnqueuer interface {
	EnqueuePush(ctx context.Context, payload models.PushPayload) error
}

// PushSender delivers a push immediately. Used by the queue worker.
type PushSender interface {
	Send(ctx context.Context, payload models.PushPayload) error
}
