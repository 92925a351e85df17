package handlers

import (
	"net/http"

	"fundihub/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes booking reads and the escrow fee lifecycle.
type BookingHandler struct {
	Svc booking.Service
}

// NewBookingHandler returns a booking handler.
func NewBookingHandler(svc booking.Service) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

// GetBookingHandler returns the customer view of a booking.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	logger := getLogger(c)
	id := c.Param("bookingID")

	b, err := h.Svc.GetBooking(c.Request.Context(), id)
	if err != nil {
		logger.Warn("booking not found", zap.String("bookingId", id), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b.CustomerView()})
}

// ListBookingsHandler returns the caller's bookings.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	logger := getLogger(c)
	customerID := c.GetString("userID")

	bookings, err := h.Svc.ListBookings(c.Request.Context(), customerID)
	if err != nil {
		logger.Error("failed to list bookings", zap.String("customerId", customerID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// CreateFeeIntentHandler opens payment collection for the booking fee.
func (h *BookingHandler) CreateFeeIntentHandler(c *gin.Context) {
	logger := getLogger(c)
	id := c.Param("bookingID")

	intent, err := h.Svc.CreateFeeIntent(c.Request.Context(), id)
	if err != nil {
		logger.Error("failed to create fee intent", zap.String("bookingId", id), zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, intent)
}

// ConfirmFeeHandler records a successful deposit payment, holding the fee in
// escrow. The response reveals the technician.
func (h *BookingHandler) ConfirmFeeHandler(c *gin.Context) {
	logger := getLogger(c)
	id := c.Param("bookingID")
	var input struct {
		PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Svc.ConfirmFeeHeld(c.Request.Context(), id, input.PaymentIntentID)
	if err != nil {
		logger.Error("failed to confirm booking fee", zap.String("bookingId", id), zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b.CustomerView()})
}

// CompleteBookingHandler marks the job done and schedules the escrow release.
func (h *BookingHandler) CompleteBookingHandler(c *gin.Context) {
	logger := getLogger(c)
	id := c.Param("bookingID")

	if err := h.Svc.MarkCompleted(c.Request.Context(), id); err != nil {
		logger.Error("failed to complete booking", zap.String("bookingId", id), zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

// RefundFeeHandler returns a held fee on cancellation or dispute.
func (h *BookingHandler) RefundFeeHandler(c *gin.Context) {
	logger := getLogger(c)
	id := c.Param("bookingID")

	if err := h.Svc.RefundFee(c.Request.Context(), id); err != nil {
		logger.Error("failed to refund booking fee", zap.String("bookingId", id), zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "refunded"})
}
