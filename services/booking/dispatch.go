package booking

import (
	"context"
	"fmt"
	"strconv"

	"caresaviour/models"
	"caresaviour/realtime"
	"caresaviour/services/notification"
	"caresaviour/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBooking persists a pending booking and offers it to every eligible
// vendor in range at once.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, caller models.Caller, in CreateBookingInput) (*CreateBookingResult, error) {
	if caller.ID == "" {
		return nil, utils.NewForbiddenError(msgNotAuthorized)
	}
	if err := validateInput(in, "Location, Address and Service Type are required"); err != nil {
		return nil, err
	}

	now := s.now()
	scheduled := now
	if in.ScheduledDate != nil && !in.ScheduledDate.IsZero() {
		scheduled = *in.ScheduledDate
	}

	b := &models.Booking{
		ID:          uuid.New().String(),
		Customer:    caller.ID,
		ServiceType: in.ServiceType,
		PatientDetails: models.PatientDetails{
			Name:               in.PatientName,
			Age:                in.PatientAge,
			Gender:             in.PatientGender,
			Phone:              in.PatientPhone,
			ProblemDescription: in.PatientProblem,
		},
		Location: models.BookingLocation{
			Type:        "Point",
			Coordinates: []float64{*in.Longitude, *in.Latitude},
			Address:     in.Address,
		},
		ScheduledDate: scheduled,
		Fare:          models.Fare{Currency: s.currency()},
		Payment:       models.Payment{Mode: models.PaymentCash, Status: models.PaymentPending},
		Status:        models.StatusPending,
		Timeline:      []models.TimelineEntry{{Status: models.StatusPending, Timestamp: now, Message: "Booking request created"}},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Repo.Create(ctx, b); err != nil {
		return nil, utils.NewInternalError("Failed to create booking", err)
	}

	log := s.logger().With(zap.String("bookingId", b.ID), zap.String("serviceType", string(b.ServiceType)))

	candidates, err := s.Matching.FindCandidates(ctx, b.Location.Point(), b.ServiceType, s.radius())
	if err != nil {
		log.Error("dispatch: vendor search failed", zap.Error(err))
		if appendErr := s.Repo.AppendTimeline(ctx, b.ID, s.entry(models.StatusPending, "System check: vendor search failed")); appendErr != nil {
			log.Error("dispatch: failed to record search failure", zap.Error(appendErr))
		}
		return nil, utils.NewInternalError("Booking saved but vendor search failed", err)
	}

	if len(candidates) == 0 {
		msg := fmt.Sprintf("System check: No vendors found in %skm radius", formatKm(s.radius()))
		if err := s.Repo.AppendTimeline(ctx, b.ID, s.entry(models.StatusPending, msg)); err != nil {
			return nil, utils.NewInternalError("Failed to update booking timeline", err)
		}
		log.Info("dispatch: no vendors in range, request queued")
		return &CreateBookingResult{
			BookingID:          b.ID,
			NearbyVendorsCount: 0,
			Status:             "queued",
			BookingStatus:      models.StatusPending,
		}, nil
	}

	notified := s.fanOut(ctx, b, candidates, log)

	msg := fmt.Sprintf("%d vendors notified", notified)
	if err := s.Repo.AppendTimeline(ctx, b.ID, s.entry(models.StatusPending, msg)); err != nil {
		return nil, utils.NewInternalError("Failed to update booking timeline", err)
	}
	log.Info("dispatch: offer broadcast", zap.Int("candidates", len(candidates)), zap.Int("notified", notified))

	return &CreateBookingResult{
		BookingID:          b.ID,
		NearbyVendorsCount: notified,
		Status:             string(models.StatusPending),
		BookingStatus:      models.StatusPending,
	}, nil
}

// fanOut notifies each candidate in turn. A failed recipient is logged and
// skipped; the count covers persisted notifications only.
func (s *DefaultBookingService) fanOut(ctx context.Context, b *models.Booking, candidates []VendorCandidate, log *zap.Logger) int {
	offer := realtime.NewRequestEvent{
		BookingID:     b.ID,
		PatientName:   b.PatientDetails.Name,
		ServiceType:   string(b.ServiceType),
		Location:      b.Location.Address,
		ScheduledDate: b.ScheduledDate,
		Fare:          realtime.FarePayload{Estimated: b.Fare.Estimated, Currency: b.Fare.Currency},
	}

	notified := 0
	for _, c := range candidates {
		_, err := s.Notifications.Notify(ctx, notification.NotifyInput{
			RecipientID:    c.Vendor.ID,
			RecipientModel: models.RecipientVendor,
			Type:           models.NotificationNewRequest,
			Title:          "New Emergency Request!",
			Message:        fmt.Sprintf("New %s request at %s", b.ServiceType, b.Location.Address),
			BookingID:      b.ID,
			Event:          &notification.Event{Name: realtime.EventNewRequest, Payload: offer},
		})
		if err != nil {
			log.Warn("dispatch: vendor not notified", zap.String("vendorId", c.Vendor.ID), zap.Error(err))
			continue
		}
		notified++
	}
	return notified
}

func (s *DefaultBookingService) currency() string {
	if s.Currency != "" {
		return s.Currency
	}
	return "INR"
}

func formatKm(meters float64) string {
	return strconv.FormatFloat(meters/1000, 'f', -1, 64)
}
