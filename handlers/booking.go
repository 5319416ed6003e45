package handlers

import (
	"net/http"

	"caresaviour/services/booking"
	"caresaviour/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	BookingSvc  booking.BookingService
	MatchingSvc booking.MatchingService
	Logger      *zap.Logger
}

func NewBookingHandler(bookingSvc booking.BookingService, matchingSvc booking.MatchingService, logger *zap.Logger) *BookingHandler {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &BookingHandler{BookingSvc: bookingSvc, MatchingSvc: matchingSvc, Logger: logger}
}

type bookingIDRequest struct {
	BookingID string `json:"bookingId" binding:"required"`
}

// CreateBooking handles POST /api/booking/create.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var input booking.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.BookingSvc.CreateBooking(c.Request.Context(), caller, input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	message := "Request sent to nearby vendors"
	if result.Status == "queued" {
		message = "Booking saved, but no vendors are nearby. Request queued."
	}
	h.Logger.Info("booking created",
		zap.String("bookingId", result.BookingID),
		zap.Int("nearbyVendorsCount", result.NearbyVendorsCount))

	c.JSON(http.StatusCreated, gin.H{
		"success":            true,
		"message":            message,
		"bookingId":          result.BookingID,
		"nearbyVendorsCount": result.NearbyVendorsCount,
		"status":             result.Status,
		"bookingStatus":      result.BookingStatus,
	})
}

// AcceptBooking handles PATCH /api/booking/accept.
func (h *BookingHandler) AcceptBooking(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req bookingIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.BookingSvc.AcceptBooking(c.Request.Context(), caller, req.BookingID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Booking accepted. Navigate to location.",
		"booking": result.Booking,
	})
}

// StartJob handles POST /api/booking/start-job.
func (h *BookingHandler) StartJob(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req struct {
		BookingID string `json:"bookingId" binding:"required"`
		OTP       string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	b, err := h.BookingSvc.StartJob(c.Request.Context(), caller, req.BookingID, req.OTP)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "OTP Verified! Job Started.",
		"bookingId": b.ID,
		"status":    b.Status,
	})
}

// CompleteJob handles POST /api/booking/complete-job.
func (h *BookingHandler) CompleteJob(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var input booking.CompleteJobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	b, err := h.BookingSvc.CompleteJob(c.Request.Context(), caller, input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Job Completed Successfully!",
		"booking": b,
	})
}

// CancelBooking handles PUT /api/booking/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req struct {
		BookingID string `json:"bookingId" binding:"required"`
		Reason    string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	b, err := h.BookingSvc.CancelBooking(c.Request.Context(), caller, req.BookingID, req.Reason)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking Cancelled", "booking": b})
}

// UpdateBooking handles PUT /api/booking/update.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var input booking.UpdateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	b, err := h.BookingSvc.UpdateBooking(c.Request.Context(), caller, input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking Updated", "booking": b})
}

// GetBookingDetails handles GET /api/booking/:id.
func (h *BookingHandler) GetBookingDetails(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	b, err := h.BookingSvc.GetBookingDetails(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "booking": b})
}

// MyBookings handles GET /api/booking/my-bookings.
func (h *BookingHandler) MyBookings(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	bookings, err := h.BookingSvc.MyBookings(c.Request.Context(), caller)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(bookings), "bookings": bookings})
}
