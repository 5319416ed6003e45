package booking

import (
	"context"
	"fmt"

	"caresaviour/models"
	"caresaviour/realtime"
	"caresaviour/services/notification"
	"caresaviour/utils"

	"go.uber.org/zap"
)

// AcceptBooking assigns the booking to the calling vendor. Of any number of
// concurrent calls for one booking, only the first conditional write wins.
func (s *DefaultBookingService) AcceptBooking(ctx context.Context, caller models.Caller, bookingID string) (*AcceptResult, error) {
	if caller.Role != models.RoleVendor || caller.ID == "" {
		return nil, utils.NewForbiddenError("Only vendors can accept bookings")
	}

	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusPending {
		return nil, utils.NewConflictError(msgTooLate)
	}

	otp, err := s.GenerateOTP()
	if err != nil {
		return nil, utils.NewInternalError("Failed to generate OTP", err)
	}

	entry := s.entry(models.StatusAccepted, "Accepted by vendor: "+displayName(caller))
	accepted, err := s.Repo.Accept(ctx, bookingID, caller.ID, otp, entry)
	if err != nil {
		return nil, s.storeError(ctx, bookingID, err, func(*models.Booking) error {
			return utils.NewConflictError(msgTooLate)
		})
	}

	s.logger().Info("booking accepted", zap.String("bookingId", accepted.ID), zap.String("vendorId", caller.ID))

	_, err = s.Notifications.Notify(ctx, notification.NotifyInput{
		RecipientID:    accepted.Customer,
		RecipientModel: models.RecipientUser,
		Type:           models.NotificationBookingAccepted,
		Title:          "Booking Accepted!",
		Message:        fmt.Sprintf("%s has accepted your request. OTP is %s", displayName(caller), otp),
		BookingID:      accepted.ID,
		Event: &notification.Event{Name: realtime.EventBookingAccepted, Payload: realtime.BookingAcceptedEvent{
			BookingID:   accepted.ID,
			VendorName:  caller.Name,
			VendorPhone: caller.Phone,
			OTP:         otp,
			ServiceType: string(accepted.ServiceType),
		}},
	})
	if err != nil {
		s.logger().Error("accept: customer not notified", zap.String("bookingId", accepted.ID), zap.Error(err))
	}

	return &AcceptResult{OTP: otp, Booking: accepted.Summary()}, nil
}

func displayName(c models.Caller) string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}
