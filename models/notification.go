package models

import "time"

type NotificationType string

const (
	NotificationNewRequest      NotificationType = "NEW_REQUEST"
	NotificationBookingAccepted NotificationType = "BOOKING_ACCEPTED"
	NotificationSystem          NotificationType = "SYSTEM"
	NotificationApproval        NotificationType = "APPROVAL"
)

// RecipientModel names the identity space a recipient id belongs to.
type RecipientModel string

const (
	RecipientUser   RecipientModel = "User"
	RecipientVendor RecipientModel = "Vendor"
)

type Notification struct {
	ID        string           `bson:"id" json:"id"`
	Recipient string           `bson:"recipient" json:"recipient"`
	OnModel   RecipientModel   `bson:"onModel" json:"onModel"`
	Title     string           `bson:"title" json:"title"`
	Message   string           `bson:"message" json:"message"`
	Type      NotificationType `bson:"type" json:"type"`
	BookingID string           `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	IsRead    bool             `bson:"isRead" json:"isRead"`
	CreatedAt time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// PushPayload is the queued unit of work for mobile push delivery.
type PushPayload struct {
	NotificationID string           `json:"notificationId"`
	Recipient      string           `json:"recipient"`
	OnModel        RecipientModel   `json:"onModel"`
	Title          string           `json:"title"`
	Body           string           `json:"body"`
	Type           NotificationType `json:"type"`
	BookingID      string           `json:"bookingId,omitempty"`
}
