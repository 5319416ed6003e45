package notification

import (
	"context"
	"errors"
	"fmt"

	userRepo "caresaviour/database/repository/user"
	vendorRepo "caresaviour/database/repository/vendor"
	"caresaviour/models"
	"caresaviour/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// ErrNoPushTarget means the recipient has no registered device token.
var ErrNoPushTarget = errors.New("recipient has no FCM token")

// FCMClient is the part of *messaging.Client used for delivery.
type FCMClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMPushSender looks up the recipient's device token and sends through FCM.
type FCMPushSender struct {
	users   userRepo.UserRepository
	vendors vendorRepo.VendorRepository
	client  FCMClient
}

func NewFCMPushSender(users userRepo.UserRepository, vendors vendorRepo.VendorRepository, client FCMClient) (*FCMPushSender, error) {
	if users == nil || vendors == nil || client == nil {
		return nil, fmt.Errorf("push sender initialization error: missing dependency")
	}
	return &FCMPushSender{users: users, vendors: vendors, client: client}, nil
}

func (s *FCMPushSender) Send(ctx context.Context, p models.PushPayload) error {
	token, role, err := s.lookupToken(ctx, p)
	if err != nil {
		return err
	}

	msg := buildPushMessage(token, role, p)
	id, err := s.client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	utils.GetLogger().Debug("push delivered", zap.String("recipient", p.Recipient), zap.String("messageId", id))
	return nil
}

func (s *FCMPushSender) lookupToken(ctx context.Context, p models.PushPayload) (string, models.Role, error) {
	switch p.OnModel {
	case models.RecipientVendor:
		v, err := s.vendors.GetByID(ctx, p.Recipient)
		if err != nil {
			return "", "", fmt.Errorf("could not find vendor %s: %w", p.Recipient, err)
		}
		if v.FCMToken == "" {
			return "", "", ErrNoPushTarget
		}
		return v.FCMToken, models.RoleVendor, nil
	default:
		u, err := s.users.GetByID(ctx, p.Recipient)
		if err != nil {
			return "", "", fmt.Errorf("could not find user %s: %w", p.Recipient, err)
		}
		if u.FCMToken == "" {
			return "", "", ErrNoPushTarget
		}
		return u.FCMToken, models.RoleUser, nil
	}
}

func buildPushMessage(token string, role models.Role, p models.PushPayload) *messaging.Message {
	data := map[string]string{
		"role":           string(role),
		"type":           string(p.Type),
		"notificationId": p.NotificationID,
	}
	if p.BookingID != "" {
		data["bookingId"] = p.BookingID
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		Data: data,
	}

	// New requests must wake vendor devices.
	if role == models.RoleVendor {
		msg.Android = &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		}
		msg.APNS = &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		}
	}
	return msg
}
