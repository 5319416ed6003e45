package booking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	bookingRepo "caresaviour/database/repository/booking"
	notificationRepo "caresaviour/database/repository/notification"
	userRepo "caresaviour/database/repository/user"
	vendorRepo "caresaviour/database/repository/vendor"
	"caresaviour/models"
	"caresaviour/services/notification"

	"go.uber.org/zap"
)

// memBookings mimics the conditional writes of the Mongo repository.
type memBookings struct {
	mu    sync.Mutex
	items map[string]models.Booking
	// beforeWrite runs ahead of each conditional write, outside the lock.
	beforeWrite func()
}

func newMemBookings() *memBookings {
	return &memBookings{items: map[string]models.Booking{}}
}

func cloneBooking(b models.Booking) models.Booking {
	b.Timeline = append([]models.TimelineEntry(nil), b.Timeline...)
	b.Location.Coordinates = append([]float64(nil), b.Location.Coordinates...)
	if b.Fare.Final != nil {
		f := *b.Fare.Final
		b.Fare.Final = &f
	}
	return b
}

func (r *memBookings) Create(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[b.ID] = cloneBooking(*b)
	return nil
}

func (r *memBookings) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	cp := cloneBooking(b)
	return &cp, nil
}

func (r *memBookings) AppendTimeline(_ context.Context, id string, entry models.TimelineEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.Timeline = append(b.Timeline, entry)
	r.items[id] = b
	return nil
}

func (r *memBookings) hook() {
	if r.beforeWrite != nil {
		r.beforeWrite()
	}
}

func (r *memBookings) Accept(_ context.Context, id, vendorID, otp string, entry models.TimelineEntry) (*models.Booking, error) {
	r.hook()
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok || b.Status != models.StatusPending || b.Vendor != "" {
		return nil, bookingRepo.ErrTransitionRejected
	}
	b.Vendor = vendorID
	b.Status = models.StatusAccepted
	b.OTP = models.OTP{Code: otp}
	b.Timeline = append(b.Timeline, entry)
	r.items[id] = b
	cp := cloneBooking(b)
	return &cp, nil
}

func (r *memBookings) Transition(_ context.Context, id string, t bookingRepo.Transition) (*models.Booking, error) {
	r.hook()
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return nil, bookingRepo.ErrTransitionRejected
	}
	allowed := false
	for _, from := range t.From {
		if b.Status == from {
			allowed = true
		}
	}
	if !allowed || (t.Vendor != "" && b.Vendor != t.Vendor) || (t.ExpectedOTP != "" && b.OTP.Code != t.ExpectedOTP) {
		return nil, bookingRepo.ErrTransitionRejected
	}
	b.Status = t.To
	if t.VerifyOTP {
		b.OTP.Verified = true
	}
	if t.FinalFare != nil {
		f := *t.FinalFare
		b.Fare.Final = &f
	}
	if t.PaymentMode != "" {
		b.Payment.Mode = t.PaymentMode
	}
	if t.PaymentStatus != "" {
		b.Payment.Status = t.PaymentStatus
	}
	if t.TransactionID != "" {
		b.Payment.TransactionID = t.TransactionID
	}
	if t.CancelReason != "" {
		b.CancelReason = t.CancelReason
	}
	b.Timeline = append(b.Timeline, t.Entry)
	r.items[id] = b
	cp := cloneBooking(b)
	return &cp, nil
}

func (r *memBookings) UpdateDetails(_ context.Context, id, customerID string, patient models.PatientDetails, location models.BookingLocation, entry models.TimelineEntry) (*models.Booking, error) {
	r.hook()
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok || b.Customer != customerID || b.Status != models.StatusPending {
		return nil, bookingRepo.ErrTransitionRejected
	}
	b.PatientDetails = patient
	b.Location = location
	b.Timeline = append(b.Timeline, entry)
	r.items[id] = b
	cp := cloneBooking(b)
	return &cp, nil
}

func (r *memBookings) ListForParticipant(_ context.Context, id string, role models.Role) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Booking{}
	for _, b := range r.items {
		if (role == models.RoleVendor && b.Vendor == id) || (role != models.RoleVendor && b.Customer == id) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// setStatus forces a stored status, standing in for a concurrent writer.
func (r *memBookings) setStatus(id string, status models.BookingStatus, vendor string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.items[id]
	b.Status = status
	b.Vendor = vendor
	r.items[id] = b
}

// stubMatching returns a fixed candidate set.
type stubMatching struct {
	vendors []models.Vendor
	err     error
	calls   int
	radius  float64
}

func (m *stubMatching) FindCandidates(_ context.Context, point models.GeoPoint, serviceType models.ServiceType, radiusMeters float64) ([]VendorCandidate, error) {
	m.calls++
	m.radius = radiusMeters
	if m.err != nil {
		return nil, m.err
	}
	out := []VendorCandidate{}
	for _, v := range m.vendors {
		if v.ServiceType == serviceType {
			out = append(out, VendorCandidate{Vendor: v, DistanceMeters: distanceMeters(point, v.Location)})
		}
	}
	return out, nil
}

func (m *stubMatching) NearbyVendors(context.Context, models.GeoPoint, models.ServiceType) ([]models.VendorDTO, error) {
	return nil, nil
}

type memNotifications struct {
	mu      sync.Mutex
	items   []models.Notification
	failFor map[string]bool
}

func (r *memNotifications) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor[n.Recipient] {
		return errors.New("write failed")
	}
	r.items = append(r.items, *n)
	return nil
}

func (r *memNotifications) GetByID(_ context.Context, id string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.ID == id {
			cp := n
			return &cp, nil
		}
	}
	return nil, notificationRepo.ErrNotificationNotFound
}

func (r *memNotifications) ListByRecipient(_ context.Context, recipientID string) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Notification{}
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].Recipient == recipientID {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}

func (r *memNotifications) MarkRead(ctx context.Context, id string) (*models.Notification, error) {
	return r.GetByID(ctx, id)
}

func (r *memNotifications) CountUnread(context.Context, string) (int64, error) {
	return 0, nil
}

func (r *memNotifications) forRecipient(id string) []models.Notification {
	list, _ := r.ListByRecipient(context.Background(), id)
	return list
}

type emission struct {
	Room    string
	Event   string
	Payload interface{}
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []emission
}

func (e *recordingEmitter) Emit(room, event string, payload interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emission{Room: room, Event: event, Payload: payload})
	return nil
}

func (e *recordingEmitter) to(room string) []emission {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := []emission{}
	for _, ev := range e.events {
		if ev.Room == room {
			out = append(out, ev)
		}
	}
	return out
}

// memDirectory serves user and vendor profiles and counts lookups.
type memDirectory struct {
	mu      sync.Mutex
	users   map[string]models.User
	vendors map[string]models.Vendor
	lookups int
}

type directoryUsers struct{ *memDirectory }

type directoryVendors struct{ *memDirectory }

func newMemDirectory() *memDirectory {
	return &memDirectory{users: map[string]models.User{}, vendors: map[string]models.Vendor{}}
}

func (d directoryUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lookups++
	u, ok := d.users[id]
	if !ok {
		return nil, userRepo.ErrUserNotFound
	}
	return &u, nil
}

func (d directoryVendors) GetByID(_ context.Context, id string) (*models.Vendor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lookups++
	v, ok := d.vendors[id]
	if !ok {
		return nil, vendorRepo.ErrVendorNotFound
	}
	return &v, nil
}

func (d directoryVendors) FindNear(context.Context, vendorRepo.VendorSearchCriteria) ([]models.Vendor, error) {
	return nil, nil
}

type harness struct {
	svc       *DefaultBookingService
	bookings  *memBookings
	matching  *stubMatching
	notes     *memNotifications
	emitter   *recordingEmitter
	directory *memDirectory
}

func newHarness(vendors ...models.Vendor) *harness {
	bookings := newMemBookings()
	matching := &stubMatching{vendors: vendors}
	notes := &memNotifications{failFor: map[string]bool{}}
	emitter := &recordingEmitter{}
	directory := newMemDirectory()
	directory.users[customer.ID] = models.User{ID: customer.ID, Name: customer.Name, Phone: customer.Phone}
	for _, v := range vendors {
		directory.vendors[v.ID] = v
	}

	clock := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	var clockMu sync.Mutex
	tick := func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}

	notifier := &notification.DefaultNotificationService{
		Repo:    notes,
		Emitter: emitter,
		Logger:  zap.NewNop(),
		Now:     tick,
	}
	svc := &DefaultBookingService{
		Repo:          bookings,
		Matching:      matching,
		Notifications: notifier,
		Logger:        zap.NewNop(),
		Users:         directoryUsers{directory},
		Vendors:       directoryVendors{directory},
		RadiusMeters:  DefaultRadiusMeters,
		Currency:      "INR",
		Now:           tick,
		GenerateOTP:   func() (string, error) { return "4821", nil },
	}
	return &harness{svc: svc, bookings: bookings, matching: matching, notes: notes, emitter: emitter, directory: directory}
}
