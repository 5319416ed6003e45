package booking

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "caresaviour/database/repository/booking"
	"caresaviour/models"
	"caresaviour/utils"
)

const (
	msgBookingNotFound  = "Booking not found"
	msgNotAuthorized    = "Not authorized"
	msgTooLate          = "Too late! This booking has already been accepted."
	msgInvalidOTP       = "Invalid OTP"
	msgCannotCancel     = "Cannot cancel ongoing or completed trip"
	msgCannotUpdate     = "Cannot update after vendor acceptance"
	msgAlreadyCancelled = "Booking is already cancelled"
)

// loadBooking fetches a booking, mapping a miss onto NotFound.
func (s *DefaultBookingService) loadBooking(ctx context.Context, id string) (*models.Booking, error) {
	if id == "" {
		return nil, utils.NewValidationError("bookingId is required")
	}
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, utils.NewNotFoundError(msgBookingNotFound)
		}
		return nil, utils.NewInternalError("Failed to load booking", err)
	}
	return b, nil
}

// rejected explains a conditional write that matched nothing. The booking is
// re-read so the caller learns what it lost to.
func (s *DefaultBookingService) rejected(ctx context.Context, id string, describe func(*models.Booking) error) error {
	current, err := s.loadBooking(ctx, id)
	if err != nil {
		return err
	}
	return describe(current)
}

// storeError maps repository failures of a transition onto AppErrors.
func (s *DefaultBookingService) storeError(ctx context.Context, id string, err error, describe func(*models.Booking) error) error {
	if errors.Is(err, bookingRepo.ErrTransitionRejected) {
		return s.rejected(ctx, id, describe)
	}
	if errors.Is(err, bookingRepo.ErrBookingNotFound) {
		return utils.NewNotFoundError(msgBookingNotFound)
	}
	return utils.NewInternalError("Failed to update booking", err)
}

func statusConflict(action string, status models.BookingStatus) error {
	return utils.NewConflictError(fmt.Sprintf("Cannot %s. Status: %s", action, status))
}
