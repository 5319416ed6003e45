package booking

import (
	"context"
	"sync"
	"testing"

	"caresaviour/models"
	"caresaviour/realtime"
	"caresaviour/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vendorCaller(id string) models.Caller {
	return models.Caller{ID: id, Role: models.RoleVendor, Name: "Vendor " + id, Phone: "98" + id}
}

func createPending(t *testing.T, h *harness) string {
	t.Helper()
	res, err := h.svc.CreateBooking(context.Background(), customer, ambulanceRequest())
	require.NoError(t, err)
	return res.BookingID
}

func acceptedBy(t *testing.T, h *harness, vendorID string) string {
	t.Helper()
	id := createPending(t, h)
	_, err := h.svc.AcceptBooking(context.Background(), vendorCaller(vendorID), id)
	require.NoError(t, err)
	return id
}

func startedBy(t *testing.T, h *harness, vendorID string) string {
	t.Helper()
	id := acceptedBy(t, h, vendorID)
	_, err := h.svc.StartJob(context.Background(), vendorCaller(vendorID), id, "4821")
	require.NoError(t, err)
	return id
}

func stored(t *testing.T, h *harness, id string) *models.Booking {
	t.Helper()
	b, err := h.bookings.GetByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func TestAcceptBooking_ConcurrentCallsHaveOneWinner(t *testing.T) {
	h := newHarness()
	id := createPending(t, h)

	const n = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
		kinds   []utils.ErrorKind
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(vendorID string) {
			defer wg.Done()
			<-start
			_, err := h.svc.AcceptBooking(context.Background(), vendorCaller(vendorID), id)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners = append(winners, vendorID)
				return
			}
			kinds = append(kinds, utils.KindOf(err))
		}(string(rune('a' + i)))
	}
	close(start)
	wg.Wait()

	require.Len(t, winners, 1)
	assert.Len(t, kinds, n-1)
	for _, k := range kinds {
		assert.Equal(t, utils.KindConflict, k)
	}
	b := stored(t, h, id)
	assert.Equal(t, winners[0], b.Vendor)
	assert.Equal(t, models.StatusAccepted, b.Status)
}

func TestAcceptBooking_FirstVendorWinsSecondIsTooLate(t *testing.T) {
	h := newHarness()
	h.svc.GenerateOTP = func() (string, error) { return utils.GenerateNumericOTP(utils.BookingOTPDigits) }
	id := createPending(t, h)

	res, err := h.svc.AcceptBooking(context.Background(), vendorCaller("v1"), id)
	require.NoError(t, err)
	assert.True(t, utils.IsNumericOTP(res.OTP, 4))
	assert.Equal(t, id, res.Booking.ID)
	assert.Equal(t, models.StatusAccepted, res.Booking.Status)

	b := stored(t, h, id)
	assert.Equal(t, "v1", b.Vendor)
	assert.Equal(t, res.OTP, b.OTP.Code)
	assert.False(t, b.OTP.Verified)
	assert.Equal(t, "Accepted by vendor: Vendor v1", b.Timeline[len(b.Timeline)-1].Message)

	_, err = h.svc.AcceptBooking(context.Background(), vendorCaller("v2"), id)
	require.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
	assert.Contains(t, utils.MessageOf(err), "already been accepted")
	assert.Equal(t, "v1", stored(t, h, id).Vendor)

	events := h.emitter.to(customer.ID)
	require.Len(t, events, 2)
	assert.Equal(t, realtime.EventBookingAccepted, events[0].Event)
	accepted := events[0].Payload.(realtime.BookingAcceptedEvent)
	assert.Equal(t, res.OTP, accepted.OTP)
	assert.Equal(t, "Vendor v1", accepted.VendorName)
	assert.Equal(t, "98v1", accepted.VendorPhone)
	assert.Equal(t, "Ambulance", accepted.ServiceType)

	notes := h.notes.forRecipient(customer.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationBookingAccepted, notes[0].Type)
	assert.Equal(t, "Vendor v1 has accepted your request. OTP is "+res.OTP, notes[0].Message)
}

func TestAcceptBooking_LosesRaceAfterRead(t *testing.T) {
	h := newHarness()
	id := createPending(t, h)
	h.bookings.beforeWrite = func() { h.bookings.setStatus(id, models.StatusAccepted, "v-fast") }

	_, err := h.svc.AcceptBooking(context.Background(), vendorCaller("v-slow"), id)
	require.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
	assert.Equal(t, "v-fast", stored(t, h, id).Vendor)
	assert.Empty(t, h.emitter.to(customer.ID))
}

func TestAcceptBooking_Rejections(t *testing.T) {
	h := newHarness()
	id := createPending(t, h)

	_, err := h.svc.AcceptBooking(context.Background(), customer, id)
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))

	_, err = h.svc.AcceptBooking(context.Background(), vendorCaller("v1"), "missing")
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	_, err = h.svc.AcceptBooking(context.Background(), vendorCaller("v1"), "")
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestStartJob_OTPGate(t *testing.T) {
	h := newHarness()
	id := acceptedBy(t, h, "v1")

	_, err := h.svc.StartJob(context.Background(), vendorCaller("v1"), id, "0000")
	require.Error(t, err)
	assert.Equal(t, utils.KindInvalidOTP, utils.KindOf(err))
	assert.Equal(t, "Invalid OTP", utils.MessageOf(err))
	b := stored(t, h, id)
	assert.Equal(t, models.StatusAccepted, b.Status)
	assert.False(t, b.OTP.Verified)

	// the code stays usable after a miss
	updated, err := h.svc.StartJob(context.Background(), vendorCaller("v1"), id, "4821")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)
	assert.True(t, updated.OTP.Verified)
	assert.Equal(t, "OTP verified. Job started.", updated.Timeline[len(updated.Timeline)-1].Message)

	_, err = h.svc.StartJob(context.Background(), vendorCaller("v1"), id, "4821")
	require.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
	assert.Equal(t, "Cannot start job. Status: in_progress", utils.MessageOf(err))

	events := h.emitter.to(customer.ID)
	last := events[len(events)-2]
	assert.Equal(t, realtime.EventJobStatusUpdate, last.Event)
	assert.Equal(t, realtime.JobStatusEvent{Status: "in_progress"}, last.Payload)
}

func TestStartJob_MalformedOTP(t *testing.T) {
	h := newHarness()
	id := acceptedBy(t, h, "v1")

	for _, otp := range []string{"", "48a1", "48210"} {
		_, err := h.svc.StartJob(context.Background(), vendorCaller("v1"), id, otp)
		require.Error(t, err, otp)
		assert.Equal(t, utils.KindInvalidOTP, utils.KindOf(err), otp)
	}
	assert.Equal(t, models.StatusAccepted, stored(t, h, id).Status)
}

func TestStartJob_OnlyAssignedVendor(t *testing.T) {
	h := newHarness()
	id := acceptedBy(t, h, "v1")

	_, err := h.svc.StartJob(context.Background(), vendorCaller("v2"), id, "4821")
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))

	_, err = h.svc.StartJob(context.Background(), customer, id, "4821")
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))

	pending := createPending(t, h)
	_, err = h.svc.StartJob(context.Background(), vendorCaller("v1"), pending, "4821")
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))
}

func TestCompleteJob_RecordsBillAndNotifies(t *testing.T) {
	h := newHarness()
	id := startedBy(t, h, "v1")

	updated, err := h.svc.CompleteJob(context.Background(), vendorCaller("v1"), CompleteJobInput{
		BookingID:   id,
		FinalAmount: floatPtr(500),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	require.NotNil(t, updated.Fare.Final)
	assert.Equal(t, 500.0, *updated.Fare.Final)
	assert.Equal(t, models.PaymentCompleted, updated.Payment.Status)
	assert.Equal(t, models.PaymentCash, updated.Payment.Mode)
	assert.Equal(t, "Job completed. Payment: cash", updated.Timeline[len(updated.Timeline)-1].Message)

	events := h.emitter.to(customer.ID)
	completed := events[len(events)-2]
	assert.Equal(t, realtime.EventJobCompleted, completed.Event)
	payload := completed.Payload.(realtime.JobCompletedEvent)
	assert.Equal(t, 500.0, payload.Amount)
	assert.Equal(t, id, payload.BookingID)
	assert.Equal(t, "Job Completed. Please rate your vendor!", payload.Message)

	notes := h.notes.forRecipient(customer.ID)
	assert.Equal(t, "Your service is done. Final Bill: ₹500", notes[0].Message)
}

func TestCompleteJob_FallsBackToEstimateAndRequiresInProgress(t *testing.T) {
	h := newHarness()
	id := acceptedBy(t, h, "v1")

	_, err := h.svc.CompleteJob(context.Background(), vendorCaller("v1"), CompleteJobInput{BookingID: id})
	require.Error(t, err)
	assert.Equal(t, "Cannot complete job. Status: accepted", utils.MessageOf(err))
	assert.Nil(t, stored(t, h, id).Fare.Final)

	_, err = h.svc.StartJob(context.Background(), vendorCaller("v1"), id, "4821")
	require.NoError(t, err)

	_, err = h.svc.CompleteJob(context.Background(), vendorCaller("v1"), CompleteJobInput{BookingID: id, PaymentMode: "card"})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	updated, err := h.svc.CompleteJob(context.Background(), vendorCaller("v1"), CompleteJobInput{
		BookingID: id, PaymentMode: models.PaymentOnline, TransactionID: "txn-9",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, *updated.Fare.Final)
	assert.Equal(t, models.PaymentOnline, updated.Payment.Mode)
	assert.Equal(t, "txn-9", updated.Payment.TransactionID)
}

func TestCancelBooking_Rules(t *testing.T) {
	h := newHarness()

	pending := createPending(t, h)
	_, err := h.svc.CancelBooking(context.Background(), vendorCaller("v9"), pending, "")
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err), "an offeree is not a participant")

	cancelled, err := h.svc.CancelBooking(context.Background(), customer, pending, "  ")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, "Cancelled by user/vendor", cancelled.CancelReason)
	assert.Equal(t, "Cancelled by Asha", cancelled.Timeline[len(cancelled.Timeline)-1].Message)
	assert.Empty(t, cancelled.Vendor)

	accepted := acceptedBy(t, h, "v1")
	byVendor, err := h.svc.CancelBooking(context.Background(), vendorCaller("v1"), accepted, "Vehicle breakdown")
	require.NoError(t, err)
	assert.Equal(t, "Vehicle breakdown", byVendor.CancelReason)
	assert.Equal(t, "v1", byVendor.Vendor, "the assigned vendor is never cleared")

	started := startedBy(t, h, "v1")
	_, err = h.svc.CancelBooking(context.Background(), customer, started, "")
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
	assert.Equal(t, "Cannot cancel ongoing or completed trip", utils.MessageOf(err))
}

func TestTerminalStatesRejectEveryTransition(t *testing.T) {
	h := newHarness()
	completed := startedBy(t, h, "v1")
	_, err := h.svc.CompleteJob(context.Background(), vendorCaller("v1"), CompleteJobInput{BookingID: completed})
	require.NoError(t, err)

	cancelled := acceptedBy(t, h, "v1")
	_, err = h.svc.CancelBooking(context.Background(), customer, cancelled, "")
	require.NoError(t, err)

	for _, id := range []string{completed, cancelled} {
		before := stored(t, h, id)

		_, err = h.svc.AcceptBooking(context.Background(), vendorCaller("v2"), id)
		assert.Error(t, err)
		_, err = h.svc.StartJob(context.Background(), vendorCaller("v1"), id, "4821")
		assert.Error(t, err)
		_, err = h.svc.CompleteJob(context.Background(), vendorCaller("v1"), CompleteJobInput{BookingID: id})
		assert.Error(t, err)
		_, err = h.svc.CancelBooking(context.Background(), customer, id, "")
		assert.Error(t, err)
		_, err = h.svc.UpdateBooking(context.Background(), customer, UpdateBookingInput{
			BookingID: id, PatientDetails: &PatientPatch{Name: strPtr("X")},
		})
		assert.Error(t, err)

		after := stored(t, h, id)
		assert.Equal(t, before.Status, after.Status)
		assert.Equal(t, before.Timeline, after.Timeline)
	}
}

func TestTimelineOnlyGrows(t *testing.T) {
	h := newHarness()
	id := createPending(t, h)

	snapshot := stored(t, h, id).Timeline
	steps := []func() error{
		func() error {
			_, err := h.svc.UpdateBooking(context.Background(), customer, UpdateBookingInput{
				BookingID: id, PatientDetails: &PatientPatch{Age: strPtr("65")},
			})
			return err
		},
		func() error { _, err := h.svc.AcceptBooking(context.Background(), vendorCaller("v1"), id); return err },
		func() error {
			_, err := h.svc.StartJob(context.Background(), vendorCaller("v1"), id, "4821")
			return err
		},
		func() error {
			_, err := h.svc.CompleteJob(context.Background(), vendorCaller("v1"), CompleteJobInput{BookingID: id, FinalAmount: floatPtr(800)})
			return err
		},
	}
	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		current := stored(t, h, id).Timeline
		require.Len(t, current, len(snapshot)+1, "step %d appends exactly one entry", i)
		assert.Equal(t, snapshot, current[:len(snapshot)], "step %d rewrote history", i)
		snapshot = current
	}
}

func strPtr(s string) *string { return &s }

func TestCancelConflict_PerStatus(t *testing.T) {
	tests := []struct {
		status  models.BookingStatus
		wantMsg string
	}{
		{models.StatusPending, ""},
		{models.StatusAccepted, ""},
		{models.StatusArrived, "Cannot cancel ongoing or completed trip"},
		{models.StatusInProgress, "Cannot cancel ongoing or completed trip"},
		{models.StatusCompleted, "Cannot cancel ongoing or completed trip"},
		{models.StatusCancelled, "Booking is already cancelled"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			err := cancelConflict(tt.status)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, utils.KindConflict, utils.KindOf(err))
			assert.Equal(t, tt.wantMsg, utils.MessageOf(err))
		})
	}
}
