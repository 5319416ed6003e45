package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	notificationRepo "caresaviour/database/repository/notification"
	"caresaviour/models"
	"caresaviour/realtime"
	"caresaviour/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Repo    notificationRepo.NotificationRepository
	Emitter realtime.Emitter
	Push    PushEnqueuer // optional
	Logger  *zap.Logger
	Now     func() time.Time
}

func NewDefaultNotificationService(
	repo notificationRepo.NotificationRepository,
	emitter realtime.Emitter,
	push PushEnqueuer,
) (*DefaultNotificationService, error) {
	if repo == nil || emitter == nil {
		return nil, fmt.Errorf("notification service initialization error: repository or emitter is nil")
	}
	return &DefaultNotificationService{
		Repo:    repo,
		Emitter: emitter,
		Push:    push,
		Logger:  utils.GetLogger(),
		Now:     time.Now,
	}, nil
}

func (s *DefaultNotificationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultNotificationService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return utils.GetLogger()
}

func (s *DefaultNotificationService) Notify(ctx context.Context, in NotifyInput) (*models.Notification, error) {
	if in.RecipientID == "" {
		return nil, utils.NewValidationError("Notification recipient is required")
	}
	now := s.now()
	n := &models.Notification{
		ID:        uuid.New().String(),
		Recipient: in.RecipientID,
		OnModel:   in.RecipientModel,
		Title:     in.Title,
		Message:   in.Message,
		Type:      in.Type,
		BookingID: in.BookingID,
		IsRead:    false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if n.Type == "" {
		n.Type = models.NotificationSystem
	}
	if err := s.Repo.Create(ctx, n); err != nil {
		return nil, utils.NewInternalError("Failed to save notification", err)
	}

	log := s.logger().With(zap.String("recipient", n.Recipient), zap.String("notificationId", n.ID))

	if in.Event != nil {
		if err := s.Emitter.Emit(n.Recipient, in.Event.Name, in.Event.Payload); err != nil {
			log.Warn("notification: domain event not delivered", zap.String("event", in.Event.Name), zap.Error(err))
		}
	}
	if err := s.Emitter.Emit(n.Recipient, realtime.EventNewNotification, n); err != nil {
		log.Warn("notification: bell event not delivered", zap.Error(err))
	}

	if s.Push != nil {
		payload := models.PushPayload{
			NotificationID: n.ID,
			Recipient:      n.Recipient,
			OnModel:        n.OnModel,
			Title:          n.Title,
			Body:           n.Message,
			Type:           n.Type,
			BookingID:      n.BookingID,
		}
		if err := s.Push.EnqueuePush(ctx, payload); err != nil {
			log.Warn("notification: push not enqueued", zap.Error(err))
		}
	}
	return n, nil
}

func (s *DefaultNotificationService) ListForRecipient(ctx context.Context, recipientID string) ([]models.Notification, error) {
	list, err := s.Repo.ListByRecipient(ctx, recipientID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load notifications", err)
	}
	return list, nil
}

func (s *DefaultNotificationService) MarkRead(ctx context.Context, notificationID, requesterID string) (*models.Notification, error) {
	n, err := s.Repo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, notificationRepo.ErrNotificationNotFound) {
			return nil, utils.NewNotFoundError("Notification not found")
		}
		return nil, utils.NewInternalError("Failed to load notification", err)
	}
	if n.Recipient != requesterID {
		return nil, utils.NewForbiddenError("Not authorized")
	}
	if n.IsRead {
		return n, nil
	}

	updated, err := s.Repo.MarkRead(ctx, notificationID)
	if err != nil {
		if errors.Is(err, notificationRepo.ErrNotificationNotFound) {
			return nil, utils.NewNotFoundError("Notification not found")
		}
		return nil, utils.NewInternalError("Failed to update notification", err)
	}
	return updated, nil
}

func (s *DefaultNotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	count, err := s.Repo.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, utils.NewInternalError("Failed to count notifications", err)
	}
	return count, nil
}
