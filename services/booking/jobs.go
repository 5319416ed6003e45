package booking

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strconv"
	"strings"

	bookingRepo "caresaviour/database/repository/booking"
	"caresaviour/models"
	"caresaviour/realtime"
	"caresaviour/services/notification"
	"caresaviour/utils"

	"go.uber.org/zap"
)

const defaultCancelReason = "Cancelled by user/vendor"

// StartJob moves an accepted booking to in_progress once the customer's code
// matches. A wrong code leaves the booking untouched and may be retried.
func (s *DefaultBookingService) StartJob(ctx context.Context, caller models.Caller, bookingID, otp string) (*models.Booking, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Vendor == "" || b.Vendor != caller.ID {
		return nil, utils.NewForbiddenError(msgNotAuthorized)
	}
	if b.Status != models.StatusAccepted {
		return nil, statusConflict("start job", b.Status)
	}
	supplied := strings.TrimSpace(otp)
	if !utils.IsNumericOTP(supplied, utils.BookingOTPDigits) || !otpMatches(b.OTP.Code, supplied) {
		return nil, utils.NewInvalidOTPError(msgInvalidOTP)
	}

	updated, err := s.Repo.Transition(ctx, bookingID, bookingRepo.Transition{
		From:        []models.BookingStatus{models.StatusAccepted},
		To:          models.StatusInProgress,
		Vendor:      caller.ID,
		ExpectedOTP: supplied,
		VerifyOTP:   true,
		Entry:       s.entry(models.StatusInProgress, "OTP verified. Job started."),
	})
	if err != nil {
		return nil, s.storeError(ctx, bookingID, err, func(cur *models.Booking) error {
			if cur.Status != models.StatusAccepted {
				return statusConflict("start job", cur.Status)
			}
			return utils.NewInvalidOTPError(msgInvalidOTP)
		})
	}

	s.notifyCustomer(ctx, updated, notification.NotifyInput{
		Type:    models.NotificationSystem,
		Title:   "Service Started",
		Message: fmt.Sprintf("Your service for %s has started.", updated.ServiceType),
		Event: &notification.Event{
			Name:    realtime.EventJobStatusUpdate,
			Payload: realtime.JobStatusEvent{Status: string(models.StatusInProgress)},
		},
	})
	return updated, nil
}

// CompleteJob closes an in_progress booking and records the bill.
func (s *DefaultBookingService) CompleteJob(ctx context.Context, caller models.Caller, in CompleteJobInput) (*models.Booking, error) {
	if err := validateInput(in, "Invalid completion request"); err != nil {
		return nil, err
	}
	b, err := s.loadBooking(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Vendor == "" || b.Vendor != caller.ID {
		return nil, utils.NewForbiddenError(msgNotAuthorized)
	}
	if b.Status != models.StatusInProgress {
		return nil, statusConflict("complete job", b.Status)
	}

	final := b.Fare.Estimated
	if in.FinalAmount != nil {
		final = *in.FinalAmount
	}
	mode := in.PaymentMode
	if mode == "" {
		mode = models.PaymentCash
	}

	updated, err := s.Repo.Transition(ctx, in.BookingID, bookingRepo.Transition{
		From:          []models.BookingStatus{models.StatusInProgress},
		To:            models.StatusCompleted,
		Vendor:        caller.ID,
		FinalFare:     &final,
		PaymentMode:   mode,
		PaymentStatus: models.PaymentCompleted,
		TransactionID: in.TransactionID,
		Entry:         s.entry(models.StatusCompleted, fmt.Sprintf("Job completed. Payment: %s", mode)),
	})
	if err != nil {
		return nil, s.storeError(ctx, in.BookingID, err, func(cur *models.Booking) error {
			return statusConflict("complete job", cur.Status)
		})
	}

	s.notifyCustomer(ctx, updated, notification.NotifyInput{
		Type:    models.NotificationSystem,
		Title:   "Service Completed",
		Message: fmt.Sprintf("Your service is done. Final Bill: %s", formatAmount(updated.Fare.Currency, final)),
		Event: &notification.Event{
			Name: realtime.EventJobCompleted,
			Payload: realtime.JobCompletedEvent{
				BookingID: updated.ID,
				Amount:    final,
				Message:   "Job Completed. Please rate your vendor!",
			},
		},
	})
	return updated, nil
}

// CancelBooking is open to the customer and the assigned vendor while the
// booking is pending or accepted.
func (s *DefaultBookingService) CancelBooking(ctx context.Context, caller models.Caller, bookingID, reason string) (*models.Booking, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	isCustomer := b.Customer == caller.ID
	isVendor := b.Vendor != "" && b.Vendor == caller.ID
	if caller.ID == "" || (!isCustomer && !isVendor) {
		return nil, utils.NewForbiddenError(msgNotAuthorized)
	}
	if err := cancelConflict(b.Status); err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultCancelReason
	}
	t := bookingRepo.Transition{
		From:         []models.BookingStatus{models.StatusPending, models.StatusAccepted},
		To:           models.StatusCancelled,
		CancelReason: reason,
		Entry:        s.entry(models.StatusCancelled, "Cancelled by "+displayName(caller)),
	}
	if !isCustomer {
		t.Vendor = caller.ID
	}

	updated, err := s.Repo.Transition(ctx, bookingID, t)
	if err != nil {
		return nil, s.storeError(ctx, bookingID, err, func(cur *models.Booking) error {
			if conflict := cancelConflict(cur.Status); conflict != nil {
				return conflict
			}
			return utils.NewForbiddenError(msgNotAuthorized)
		})
	}
	s.logger().Info("booking cancelled", zap.String("bookingId", bookingID), zap.String("by", caller.ID))
	return updated, nil
}

func cancelConflict(status models.BookingStatus) error {
	switch status {
	case models.StatusPending, models.StatusAccepted:
		return nil
	case models.StatusCancelled:
		return utils.NewConflictError(msgAlreadyCancelled)
	default:
		return utils.NewConflictError(msgCannotCancel)
	}
}

// UpdateBooking merges patient and location changes while nobody has
// accepted the booking yet.
func (s *DefaultBookingService) UpdateBooking(ctx context.Context, caller models.Caller, in UpdateBookingInput) (*models.Booking, error) {
	if err := validateInput(in, "Invalid booking update"); err != nil {
		return nil, err
	}
	if in.PatientDetails == nil && in.Location == nil {
		return nil, utils.NewValidationError("Nothing to update")
	}

	b, err := s.loadBooking(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Customer != caller.ID {
		return nil, utils.NewForbiddenError(msgNotAuthorized)
	}
	if b.Status != models.StatusPending {
		return nil, utils.NewConflictError(msgCannotUpdate)
	}

	patient := mergePatient(b.PatientDetails, in.PatientDetails)
	location, err := mergeLocation(b.Location, in.Location)
	if err != nil {
		return nil, err
	}

	updated, err := s.Repo.UpdateDetails(ctx, in.BookingID, caller.ID, patient, location,
		s.entry(models.StatusPending, "Booking details updated"))
	if err != nil {
		return nil, s.storeError(ctx, in.BookingID, err, func(*models.Booking) error {
			return utils.NewConflictError(msgCannotUpdate)
		})
	}
	return updated, nil
}

func mergePatient(cur models.PatientDetails, p *PatientPatch) models.PatientDetails {
	if p == nil {
		return cur
	}
	if p.Name != nil {
		cur.Name = *p.Name
	}
	if p.Age != nil {
		cur.Age = *p.Age
	}
	if p.Gender != nil {
		cur.Gender = *p.Gender
	}
	if p.Phone != nil {
		cur.Phone = *p.Phone
	}
	if p.ProblemDescription != nil {
		cur.ProblemDescription = *p.ProblemDescription
	}
	return cur
}

func mergeLocation(cur models.BookingLocation, p *LocationPatch) (models.BookingLocation, error) {
	if p == nil {
		return cur, nil
	}
	if (p.Latitude == nil) != (p.Longitude == nil) {
		return cur, utils.NewValidationError("latitude and longitude must be updated together")
	}
	merged := models.BookingLocation{
		Type:        "Point",
		Coordinates: append([]float64(nil), cur.Coordinates...),
		Address:     cur.Address,
	}
	if p.Latitude != nil {
		merged.Coordinates = []float64{*p.Longitude, *p.Latitude}
	}
	if p.Address != nil {
		merged.Address = strings.TrimSpace(*p.Address)
	}
	if merged.Address == "" {
		return cur, utils.NewValidationError("address cannot be empty")
	}
	if !merged.Point().Valid() {
		return cur, utils.NewValidationError("invalid coordinates")
	}
	return merged, nil
}

// notifyCustomer sends a best-effort notification; the transition that
// triggered it has already been committed.
func (s *DefaultBookingService) notifyCustomer(ctx context.Context, b *models.Booking, in notification.NotifyInput) {
	in.RecipientID = b.Customer
	in.RecipientModel = models.RecipientUser
	in.BookingID = b.ID
	if _, err := s.Notifications.Notify(ctx, in); err != nil {
		s.logger().Error("customer not notified", zap.String("bookingId", b.ID), zap.String("title", in.Title), zap.Error(err))
	}
}

func otpMatches(stored, supplied string) bool {
	supplied = strings.TrimSpace(supplied)
	if stored == "" || supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

func formatAmount(currency string, amount float64) string {
	value := strconv.FormatFloat(amount, 'f', -1, 64)
	if currency == "" || currency == "INR" {
		return "₹" + value
	}
	return currency + " " + value
}
