package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"caresaviour/database"
	"caresaviour/models"
	"caresaviour/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a new instance of BookingRepository using MongoDB.
func NewMongoBookingRepo() BookingRepository {
	repo := &MongoBookingRepo{coll: database.DB().Collection("bookings")}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("bookings: failed to create indexes", zap.Error(err))
	}
	return repo
}

// newContext bounds a repository call by timeout on top of the caller's context.
func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, timeout)
}

func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking with id %s: %w", id, err)
	}
	return &booking, nil
}

func (r *MongoBookingRepo) AppendTimeline(ctx context.Context, id string, entry models.TimelineEntry) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"timeline": entry},
		"$set":  bson.M{"updatedAt": entry.Timestamp},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to append timeline for booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *MongoBookingRepo) Accept(ctx context.Context, id, vendorID, otp string, entry models.TimelineEntry) (*models.Booking, error) {
	return r.findOneAndUpdate(ctx, acceptFilter(id), acceptUpdate(vendorID, otp, entry))
}

// acceptFilter matches only a pending booking nobody has claimed yet.
func acceptFilter(id string) bson.M {
	return bson.M{
		"id":     id,
		"status": models.StatusPending,
		"vendor": bson.M{"$in": bson.A{nil, ""}},
	}
}

func acceptUpdate(vendorID, otp string, entry models.TimelineEntry) bson.M {
	return bson.M{
		"$set": bson.M{
			"vendor":    vendorID,
			"status":    models.StatusAccepted,
			"otp":       models.OTP{Code: otp, Verified: false},
			"updatedAt": entry.Timestamp,
		},
		"$push": bson.M{"timeline": entry},
	}
}

func (r *MongoBookingRepo) Transition(ctx context.Context, id string, t Transition) (*models.Booking, error) {
	if len(t.From) == 0 {
		return nil, fmt.Errorf("transition to %s has no source status", t.To)
	}
	return r.findOneAndUpdate(ctx, transitionFilter(id, t), transitionUpdate(t))
}

func transitionFilter(id string, t Transition) bson.M {
	filter := bson.M{"id": id, "status": bson.M{"$in": t.From}}
	if t.Vendor != "" {
		filter["vendor"] = t.Vendor
	}
	if t.ExpectedOTP != "" {
		filter["otp.code"] = t.ExpectedOTP
	}
	return filter
}

// transitionUpdate sets only the fields t carries.
func transitionUpdate(t Transition) bson.M {
	set := bson.M{"status": t.To, "updatedAt": t.Entry.Timestamp}
	if t.VerifyOTP {
		set["otp.verified"] = true
	}
	if t.FinalFare != nil {
		set["fare.final"] = *t.FinalFare
	}
	if t.PaymentMode != "" {
		set["payment.mode"] = t.PaymentMode
	}
	if t.PaymentStatus != "" {
		set["payment.status"] = t.PaymentStatus
	}
	if t.TransactionID != "" {
		set["payment.transactionId"] = t.TransactionID
	}
	if t.CancelReason != "" {
		set["cancelReason"] = t.CancelReason
	}
	return bson.M{"$set": set, "$push": bson.M{"timeline": t.Entry}}
}

func (r *MongoBookingRepo) UpdateDetails(ctx context.Context, id, customerID string, patient models.PatientDetails, location models.BookingLocation, entry models.TimelineEntry) (*models.Booking, error) {
	return r.findOneAndUpdate(ctx, updateDetailsFilter(id, customerID), updateDetailsUpdate(patient, location, entry))
}

func updateDetailsFilter(id, customerID string) bson.M {
	return bson.M{"id": id, "customer": customerID, "status": models.StatusPending}
}

func updateDetailsUpdate(patient models.PatientDetails, location models.BookingLocation, entry models.TimelineEntry) bson.M {
	return bson.M{
		"$set": bson.M{
			"patientDetails": patient,
			"location":       location,
			"updatedAt":      entry.Timestamp,
		},
		"$push": bson.M{"timeline": entry},
	}
}

func (r *MongoBookingRepo) ListForParticipant(ctx context.Context, id string, role models.Role) ([]models.Booking, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	field := "customer"
	if role == models.RoleVendor {
		field = "vendor"
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{field: id}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for %s: %w", id, err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// findOneAndUpdate is the single conditional write behind every transition.
func (r *MongoBookingRepo) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var booking models.Booking
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTransitionRejected
		}
		return nil, fmt.Errorf("booking update failed: %w", err)
	}
	return &booking, nil
}
