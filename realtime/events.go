package realtime

import (
	"encoding/json"
	"time"
)

// Event names understood by mobile and web clients.
const (
	EventConnected       = "connected"
	EventNewNotification = "new_notification"
	EventNewRequest      = "new_request"
	EventBookingAccepted = "booking_accepted"
	EventJobStatusUpdate = "job_status_update"
	EventJobCompleted    = "job_completed"
)

// Frame is what a websocket client receives.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func encodeFrame(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: data})
}

// FarePayload is the fare shape carried inside new_request.
type FarePayload struct {
	Estimated float64 `json:"estimated"`
	Currency  string  `json:"currency"`
}

type NewRequestEvent struct {
	BookingID     string      `json:"bookingId"`
	PatientName   string      `json:"patientName"`
	ServiceType   string      `json:"serviceType"`
	Location      string      `json:"location"`
	ScheduledDate time.Time   `json:"scheduledDate"`
	Fare          FarePayload `json:"fare"`
}

type BookingAcceptedEvent struct {
	BookingID   string `json:"bookingId"`
	VendorName  string `json:"vendorName"`
	VendorPhone string `json:"vendorPhone"`
	OTP         string `json:"otp"`
	ServiceType string `json:"serviceType"`
}

type JobStatusEvent struct {
	Status string `json:"status"`
}

type JobCompletedEvent struct {
	BookingID string  `json:"bookingId"`
	Amount    float64 `json:"amount"`
	Message   string  `json:"message"`
}

type connectedEvent struct {
	Room    string `json:"room"`
	Message string `json:"message"`
}
