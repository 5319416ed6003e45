package bookingRepo

import (
	"context"
	"testing"
	"time"

	"caresaviour/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

var at = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func TestAcceptFilter_OnlyPendingAndUnassigned(t *testing.T) {
	filter := acceptFilter("b1")

	assert.Equal(t, bson.M{
		"id":     "b1",
		"status": models.StatusPending,
		"vendor": bson.M{"$in": bson.A{nil, ""}},
	}, filter)
}

func TestAcceptUpdate_AssignsVendorAndFreshCode(t *testing.T) {
	entry := models.TimelineEntry{Status: models.StatusAccepted, Timestamp: at, Message: "accepted"}
	update := acceptUpdate("v1", "4821", entry)

	set := update["$set"].(bson.M)
	assert.Equal(t, "v1", set["vendor"])
	assert.Equal(t, models.StatusAccepted, set["status"])
	assert.Equal(t, models.OTP{Code: "4821"}, set["otp"])
	assert.Equal(t, at, set["updatedAt"])
	assert.Equal(t, bson.M{"timeline": entry}, update["$push"])
}

func TestTransitionFilter_GuardsOnlyWhatIsSet(t *testing.T) {
	tests := []struct {
		name string
		in   Transition
		want bson.M
	}{
		{
			name: "status only",
			in:   Transition{From: []models.BookingStatus{models.StatusPending, models.StatusAccepted}, To: models.StatusCancelled},
			want: bson.M{
				"id":     "b1",
				"status": bson.M{"$in": []models.BookingStatus{models.StatusPending, models.StatusAccepted}},
			},
		},
		{
			name: "vendor and code",
			in: Transition{
				From:        []models.BookingStatus{models.StatusAccepted},
				To:          models.StatusInProgress,
				Vendor:      "v1",
				ExpectedOTP: "4821",
			},
			want: bson.M{
				"id":       "b1",
				"status":   bson.M{"$in": []models.BookingStatus{models.StatusAccepted}},
				"vendor":   "v1",
				"otp.code": "4821",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, transitionFilter("b1", tt.in))
		})
	}
}

func TestTransitionUpdate_SetsOnlyCarriedFields(t *testing.T) {
	entry := models.TimelineEntry{Status: models.StatusCancelled, Timestamp: at}
	bare := transitionUpdate(Transition{To: models.StatusCancelled, Entry: entry})
	assert.Equal(t, bson.M{"status": models.StatusCancelled, "updatedAt": at}, bare["$set"])
	assert.Equal(t, bson.M{"timeline": entry}, bare["$push"])

	fare := 850.0
	full := transitionUpdate(Transition{
		To:            models.StatusCompleted,
		VerifyOTP:     true,
		FinalFare:     &fare,
		PaymentMode:   models.PaymentOnline,
		PaymentStatus: models.PaymentCompleted,
		TransactionID: "txn-1",
		CancelReason:  "n/a",
		Entry:         entry,
	})
	assert.Equal(t, bson.M{
		"status":                models.StatusCompleted,
		"updatedAt":             at,
		"otp.verified":          true,
		"fare.final":            850.0,
		"payment.mode":          models.PaymentOnline,
		"payment.status":        models.PaymentCompleted,
		"payment.transactionId": "txn-1",
		"cancelReason":          "n/a",
	}, full["$set"])
}

func TestUpdateDetails_FilterAndUpdate(t *testing.T) {
	assert.Equal(t, bson.M{"id": "b1", "customer": "c1", "status": models.StatusPending},
		updateDetailsFilter("b1", "c1"))

	patient := models.PatientDetails{Name: "Ravi", Age: "54", Phone: "9800000000"}
	location := models.BookingLocation{Type: "Point", Coordinates: []float64{73.85, 18.52}, Address: "MG Road, Pune"}
	entry := models.TimelineEntry{Status: models.StatusPending, Timestamp: at, Message: "details updated"}

	update := updateDetailsUpdate(patient, location, entry)
	set := update["$set"].(bson.M)
	assert.Equal(t, patient, set["patientDetails"])
	assert.Equal(t, location, set["location"])
	assert.Equal(t, at, set["updatedAt"])
	assert.NotContains(t, set, "status")
	assert.Equal(t, bson.M{"timeline": entry}, update["$push"])
}

func TestTransition_RequiresSourceStatus(t *testing.T) {
	repo := &MongoBookingRepo{}
	_, err := repo.Transition(context.Background(), "b1", Transition{To: models.StatusCancelled})
	assert.Error(t, err)
}

func TestConditionalWrites_AgainstMockDeployment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	entry := models.TimelineEntry{Status: models.StatusAccepted, Timestamp: at}

	mt.Run("accept lost race is rejected", func(mt *mtest.T) {
		repo := &MongoBookingRepo{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.Accept(context.Background(), "b1", "v2", "4821", entry)
		assert.ErrorIs(mt, err, ErrTransitionRejected)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "findAndModify", started.CommandName)
		query := started.Command.Lookup("query").Document()
		assert.Equal(mt, "b1", query.Lookup("id").StringValue())
		assert.Equal(mt, string(models.StatusPending), query.Lookup("status").StringValue())
	})

	mt.Run("accept returns the updated booking", func(mt *mtest.T) {
		repo := &MongoBookingRepo{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "id", Value: "b1"},
			{Key: "vendor", Value: "v1"},
			{Key: "status", Value: string(models.StatusAccepted)},
			{Key: "otp", Value: bson.D{{Key: "code", Value: "4821"}, {Key: "verified", Value: false}}},
		}}))

		b, err := repo.Accept(context.Background(), "b1", "v1", "4821", entry)
		require.NoError(mt, err)
		assert.Equal(mt, "v1", b.Vendor)
		assert.Equal(mt, models.StatusAccepted, b.Status)
		assert.Equal(mt, "4821", b.OTP.Code)
	})

	mt.Run("wrong code on start is rejected", func(mt *mtest.T) {
		repo := &MongoBookingRepo{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.Transition(context.Background(), "b1", Transition{
			From:        []models.BookingStatus{models.StatusAccepted},
			To:          models.StatusInProgress,
			Vendor:      "v1",
			ExpectedOTP: "0000",
			VerifyOTP:   true,
			Entry:       models.TimelineEntry{Status: models.StatusInProgress, Timestamp: at},
		})
		assert.ErrorIs(mt, err, ErrTransitionRejected)

		query := mt.GetStartedEvent().Command.Lookup("query").Document()
		assert.Equal(mt, "0000", query.Lookup("otp.code").StringValue())
		assert.Equal(mt, "v1", query.Lookup("vendor").StringValue())
	})

	mt.Run("update details outside pending is rejected", func(mt *mtest.T) {
		repo := &MongoBookingRepo{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.UpdateDetails(context.Background(), "b1", "c1",
			models.PatientDetails{Name: "Ravi"}, models.BookingLocation{}, entry)
		assert.ErrorIs(mt, err, ErrTransitionRejected)
	})

	mt.Run("server errors are not reported as rejections", func(mt *mtest.T) {
		repo := &MongoBookingRepo{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad value",
			Name:    "BadValue",
		}))

		_, err := repo.Accept(context.Background(), "b1", "v1", "4821", entry)
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrTransitionRejected)
	})
}
