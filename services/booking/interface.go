package booking

import (
	"context"
	"fmt"
	"time"

	"caresaviour/database/repository"
	bookingRepo "caresaviour/database/repository/booking"
	"caresaviour/models"
	"caresaviour/services/notification"
	"caresaviour/utils"

	"go.uber.org/zap"
)

// DefaultRadiusMeters is the dispatch radius used when none is configured.
const DefaultRadiusMeters = 7000

// BookingService drives a booking from request to completion. Every method
// returns a *utils.AppError on failure.
type BookingService interface {
	CreateBooking(ctx context.Context, caller models.Caller, in CreateBookingInput) (*CreateBookingResult, error)
	AcceptBooking(ctx context.Context, caller models.Caller, bookingID string) (*AcceptResult, error)
	StartJob(ctx context.Context, caller models.Caller, bookingID, otp string) (*models.Booking, error)
	CompleteJob(ctx context.Context, caller models.Caller, in CompleteJobInput) (*models.Booking, error)
	CancelBooking(ctx context.Context, caller models.Caller, bookingID, reason string) (*models.Booking, error)
	UpdateBooking(ctx context.Context, caller models.Caller, in UpdateBookingInput) (*models.Booking, error)
	GetBookingDetails(ctx context.Context, caller models.Caller, bookingID string) (*models.BookingView, error)
	MyBookings(ctx context.Context, caller models.Caller) ([]models.BookingView, error)
}

// CreateBookingInput carries the request fields exactly as clients send them.
type CreateBookingInput struct {
	ServiceType    models.ServiceType `json:"serviceType" validate:"required,oneof=Doctor Nurse Ambulance"`
	PatientName    string             `json:"patientName"`
	PatientAge     string             `json:"patientAge"`
	PatientGender  models.Gender      `json:"patientGender" validate:"omitempty,oneof=Male Female Other"`
	PatientPhone   string             `json:"patientPhone"`
	PatientProblem string             `json:"patientProblem"`
	ScheduledDate  *time.Time         `json:"scheduledDate"`
	Latitude       *float64           `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude      *float64           `json:"longitude" validate:"required,gte=-180,lte=180"`
	Address        string             `json:"address" validate:"required"`
}

type CreateBookingResult struct {
	BookingID          string               `json:"bookingId"`
	NearbyVendorsCount int                  `json:"nearbyVendorsCount"`
	Status             string               `json:"status"` // "queued" when nobody was in range
	BookingStatus      models.BookingStatus `json:"bookingStatus"`
}

// AcceptResult is returned to the winning vendor.
type AcceptResult struct {
	OTP     string                `json:"-"`
	Booking models.BookingSummary `json:"booking"`
}

type CompleteJobInput struct {
	BookingID     string             `json:"bookingId" validate:"required"`
	FinalAmount   *float64           `json:"finalAmount" validate:"omitempty,gte=0"`
	PaymentMode   models.PaymentMode `json:"paymentMode" validate:"omitempty,oneof=cash online"`
	TransactionID string             `json:"transactionId"`
}

// PatientPatch holds the patient fields a customer may change while pending.
type PatientPatch struct {
	Name               *string        `json:"name"`
	Age                *string        `json:"age"`
	Gender             *models.Gender `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	Phone              *string        `json:"phone"`
	ProblemDescription *string        `json:"problemDescription"`
}

type LocationPatch struct {
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Address   *string  `json:"address"`
}

type UpdateBookingInput struct {
	BookingID      string         `json:"bookingId" validate:"required"`
	PatientDetails *PatientPatch  `json:"patientDetails"`
	Location       *LocationPatch `json:"location"`
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo          bookingRepo.BookingRepository
	Matching      MatchingService
	Notifications notification.NotificationService
	Logger        *zap.Logger

	// Users and Vendors populate read views; either may be nil, which
	// leaves that side as a bare id.
	Users   repository.UserRepository
	Vendors repository.VendorRepository

	RadiusMeters float64
	Currency     string

	Now         func() time.Time
	GenerateOTP func() (string, error)
}

func NewDefaultBookingService(
	repo bookingRepo.BookingRepository,
	matching MatchingService,
	notifications notification.NotificationService,
	users repository.UserRepository,
	vendors repository.VendorRepository,
	radiusMeters float64,
	currency string,
) (*DefaultBookingService, error) {
	if repo == nil || matching == nil || notifications == nil {
		return nil, fmt.Errorf("booking service initialization error: missing dependency")
	}
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}
	if currency == "" {
		currency = "INR"
	}
	return &DefaultBookingService{
		Repo:          repo,
		Matching:      matching,
		Notifications: notifications,
		Logger:        utils.GetLogger(),
		Users:         users,
		Vendors:       vendors,
		RadiusMeters:  radiusMeters,
		Currency:      currency,
		Now:           time.Now,
		GenerateOTP: func() (string, error) {
			return utils.GenerateNumericOTP(utils.BookingOTPDigits)
		},
	}, nil
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultBookingService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return utils.GetLogger()
}

func (s *DefaultBookingService) radius() float64 {
	if s.RadiusMeters > 0 {
		return s.RadiusMeters
	}
	return DefaultRadiusMeters
}

func (s *DefaultBookingService) entry(status models.BookingStatus, message string) models.TimelineEntry {
	return models.TimelineEntry{Status: status, Timestamp: s.now(), Message: message}
}
