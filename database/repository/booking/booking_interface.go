package bookingRepo

import (
	"context"
	"errors"

	"caresaviour/models"
)

var (
	// ErrBookingNotFound is returned when no booking carries the requested id.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrTransitionRejected is returned when a conditional update matched no
	// document: the booking moved on, or never existed.
	ErrTransitionRejected = errors.New("booking transition rejected")
)

// Transition describes a conditional status change. The update is applied
// only while the stored status is one of From and, when set, the stored
// vendor and one-time code match.
type Transition struct {
	From        []models.BookingStatus
	To          models.BookingStatus
	Vendor      string
	ExpectedOTP string

	VerifyOTP     bool
	FinalFare     *float64
	PaymentMode   models.PaymentMode
	PaymentStatus models.PaymentStatus
	TransactionID string
	CancelReason  string

	Entry models.TimelineEntry
}

// BookingRepository defines methods for booking data access. Every mutating
// method appends exactly one timeline entry in the same write.
type BookingRepository interface {
	// Create inserts a new booking.
	Create(ctx context.Context, booking *models.Booking) error
	// GetByID retrieves a booking by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// AppendTimeline pushes an entry without touching the status.
	AppendTimeline(ctx context.Context, id string, entry models.TimelineEntry) error
	// Accept assigns vendorID to a pending, unassigned booking. At most one
	// concurrent caller can win; the rest get ErrTransitionRejected.
	Accept(ctx context.Context, id, vendorID, otp string, entry models.TimelineEntry) (*models.Booking, error)
	// Transition applies t atomically and returns the updated booking.
	Transition(ctx context.Context, id string, t Transition) (*models.Booking, error)
	// UpdateDetails replaces the patient and location snapshot while the
	// booking is still pending and owned by customerID.
	UpdateDetails(ctx context.Context, id, customerID string, patient models.PatientDetails, location models.BookingLocation, entry models.TimelineEntry) (*models.Booking, error)
	// ListForParticipant returns bookings where id is customer or vendor, newest first.
	ListForParticipant(ctx context.Context, id string, role models.Role) ([]models.Booking, error)
}
