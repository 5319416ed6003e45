package models

import "time"

type ServiceType string

const (
	ServiceDoctor    ServiceType = "Doctor"
	ServiceNurse     ServiceType = "Nurse"
	ServiceAmbulance ServiceType = "Ambulance"
)

func (s ServiceType) Valid() bool {
	switch s {
	case ServiceDoctor, ServiceNurse, ServiceAmbulance:
		return true
	}
	return false
}

type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusAccepted   BookingStatus = "accepted"
	StatusArrived    BookingStatus = "arrived" // no transition reaches it
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

type PaymentMode string

const (
	PaymentCash   PaymentMode = "cash"
	PaymentOnline PaymentMode = "online"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// PatientDetails is a snapshot copied into the booking at creation time.
type PatientDetails struct {
	Name               string `bson:"name" json:"name"`
	Age                string `bson:"age" json:"age"`
	Gender             Gender `bson:"gender,omitempty" json:"gender,omitempty"`
	Phone              string `bson:"phone" json:"phone"`
	ProblemDescription string `bson:"problemDescription,omitempty" json:"problemDescription,omitempty"`
}

// BookingLocation is a GeoJSON point plus the free-text address it was captured with.
type BookingLocation struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
	Address     string    `bson:"address" json:"address"`
}

func (l BookingLocation) Point() GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: l.Coordinates}
}

type Fare struct {
	Estimated float64  `bson:"estimated" json:"estimated"`
	Final     *float64 `bson:"final,omitempty" json:"final,omitempty"`
	Currency  string   `bson:"currency" json:"currency"`
}

type Payment struct {
	Mode          PaymentMode   `bson:"mode" json:"mode"`
	Status        PaymentStatus `bson:"status" json:"status"`
	TransactionID string        `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
}

type OTP struct {
	Code     string `bson:"code,omitempty" json:"code,omitempty"`
	Verified bool   `bson:"verified" json:"verified"`
}

type TimelineEntry struct {
	Status    BookingStatus `bson:"status" json:"status"`
	Timestamp time.Time     `bson:"timestamp" json:"timestamp"`
	Message   string        `bson:"message" json:"message"`
}

// Booking is a customer request and its full lifecycle.
type Booking struct {
	ID             string          `bson:"id" json:"id"`
	Customer       string          `bson:"customer" json:"customer"`
	Vendor         string          `bson:"vendor,omitempty" json:"vendor,omitempty"` // empty until accepted
	ServiceType    ServiceType     `bson:"serviceType" json:"serviceType"`
	PatientDetails PatientDetails  `bson:"patientDetails" json:"patientDetails"`
	Location       BookingLocation `bson:"location" json:"location"`
	ScheduledDate  time.Time       `bson:"scheduledDate" json:"scheduledDate"`
	Fare           Fare            `bson:"fare" json:"fare"`
	Payment        Payment         `bson:"payment" json:"payment"`
	Status         BookingStatus   `bson:"status" json:"status"`
	OTP            OTP             `bson:"otp" json:"otp"`
	CancelReason   string          `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	Timeline       []TimelineEntry `bson:"timeline" json:"timeline"`
	CreatedAt      time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// IsParticipant reports whether id is the customer or the assigned vendor.
func (b *Booking) IsParticipant(id string) bool {
	return id != "" && (b.Customer == id || b.Vendor == id)
}

// ParticipantRef is one side of a booking resolved to its contact details.
type ParticipantRef struct {
	ID          string      `json:"id"`
	Name        string      `json:"name,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	ServiceType ServiceType `json:"serviceType,omitempty"`
}

// BookingView is a booking with its customer and vendor populated. The
// populated fields replace the stored ids in JSON.
type BookingView struct {
	Booking
	Customer ParticipantRef  `json:"customer"`
	Vendor   *ParticipantRef `json:"vendor,omitempty"`
}

// BookingSummary is what the accepting vendor gets back; it carries nothing
// about the other vendors that were offered the job.
type BookingSummary struct {
	ID             string          `json:"id"`
	ServiceType    ServiceType     `json:"serviceType"`
	PatientDetails PatientDetails  `json:"patientDetails"`
	Location       BookingLocation `json:"location"`
	ScheduledDate  time.Time       `json:"scheduledDate"`
	Status         BookingStatus   `json:"status"`
}

func (b *Booking) Summary() BookingSummary {
	return BookingSummary{
		ID:             b.ID,
		ServiceType:    b.ServiceType,
		PatientDetails: b.PatientDetails,
		Location:       b.Location,
		ScheduledDate:  b.ScheduledDate,
		Status:         b.Status,
	}
}
