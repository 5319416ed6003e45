package notificationRepo

import (
	"context"
	"errors"

	"caresaviour/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository defines methods for notification persistence.
// Records are never deleted.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	// ListByRecipient returns the recipient's notifications, newest first.
	ListByRecipient(ctx context.Context, recipientID string) ([]models.Notification, error)
	// MarkRead flags the notification as read and returns the stored copy.
	MarkRead(ctx context.Context, id string) (*models.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
}
