package booking

import (
	"context"

	"caresaviour/models"
	"caresaviour/utils"

	"go.uber.org/zap"
)

// GetBookingDetails returns a booking to one of its participants or an admin.
func (s *DefaultBookingService) GetBookingDetails(ctx context.Context, caller models.Caller, bookingID string) (*models.BookingView, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsParticipant(caller.ID) && caller.Role != models.RoleAdmin {
		return nil, utils.NewForbiddenError("Not authorized to view this booking")
	}
	view := s.viewFor(ctx, caller, b, refCache{})
	return &view, nil
}

// MyBookings lists the caller's bookings, newest first.
func (s *DefaultBookingService) MyBookings(ctx context.Context, caller models.Caller) ([]models.BookingView, error) {
	if caller.ID == "" {
		return nil, utils.NewForbiddenError(msgNotAuthorized)
	}
	list, err := s.Repo.ListForParticipant(ctx, caller.ID, caller.Role)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load bookings", err)
	}
	seen := refCache{}
	views := make([]models.BookingView, 0, len(list))
	for i := range list {
		views = append(views, s.viewFor(ctx, caller, &list[i], seen))
	}
	return views, nil
}

// refCache holds participant lookups for the duration of one request.
type refCache map[string]models.ParticipantRef

func (s *DefaultBookingService) viewFor(ctx context.Context, caller models.Caller, b *models.Booking, seen refCache) models.BookingView {
	return models.BookingView{
		Booking:  *redactFor(caller, b),
		Customer: s.customerRef(ctx, b.Customer, seen),
		Vendor:   s.vendorRef(ctx, b.Vendor, seen),
	}
}

// customerRef falls back to the bare id when the profile cannot be read.
func (s *DefaultBookingService) customerRef(ctx context.Context, id string, seen refCache) models.ParticipantRef {
	key := "user:" + id
	if ref, ok := seen[key]; ok {
		return ref
	}
	ref := models.ParticipantRef{ID: id}
	if s.Users != nil {
		if u, err := s.Users.GetByID(ctx, id); err != nil {
			s.logger().Warn("booking view: customer lookup failed", zap.String("customerId", id), zap.Error(err))
		} else {
			ref.Name, ref.Phone = u.Name, u.Phone
		}
	}
	seen[key] = ref
	return ref
}

// vendorRef is nil until a vendor has accepted.
func (s *DefaultBookingService) vendorRef(ctx context.Context, id string, seen refCache) *models.ParticipantRef {
	if id == "" {
		return nil
	}
	key := "vendor:" + id
	if ref, ok := seen[key]; ok {
		return &ref
	}
	ref := models.ParticipantRef{ID: id}
	if s.Vendors != nil {
		if v, err := s.Vendors.GetByID(ctx, id); err != nil {
			s.logger().Warn("booking view: vendor lookup failed", zap.String("vendorId", id), zap.Error(err))
		} else {
			ref.Name, ref.Phone, ref.ServiceType = v.Name, v.Phone, v.ServiceType
		}
	}
	seen[key] = ref
	return &ref
}

// redactFor hides the start code from everyone but the customer, who reads
// it out to the vendor on arrival.
func redactFor(caller models.Caller, b *models.Booking) *models.Booking {
	if b.Customer == caller.ID {
		return b
	}
	cp := *b
	cp.OTP.Code = ""
	return &cp
}
