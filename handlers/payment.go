package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/srikanth-zersys/divedream-sub002/models"
	"github.com/srikanth-zersys/divedream-sub002/services/payment"
)

// PaymentHandler exposes payment intents, staff-recorded payments, and
// refunds over HTTP.
type PaymentHandler struct {
	Orchestrator payment.Orchestrator
	Logger       *zap.Logger
}

// NewPaymentHandler builds the handler.
func NewPaymentHandler(orchestrator payment.Orchestrator, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Orchestrator: orchestrator, Logger: logger}
}

// CreatePaymentIntent handles POST /api/payment-intents. The amount is
// recomputed server-side from the booking's outstanding balance; the
// body carries only the booking id.
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	var req struct {
		BookingID string `json:"booking_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.BookingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking_id is required"})
		return
	}

	intent, err := h.Orchestrator.CreateIntent(c.Request.Context(), req.BookingID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, intent)
}

// ConfirmPaymentIntent handles POST /api/payment-intents/confirm. The
// provider's asynchronous confirmation lands here; replays of the same
// intent are no-ops.
func (h *PaymentHandler) ConfirmPaymentIntent(c *gin.Context) {
	var req struct {
		IntentID string `json:"intent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IntentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "intent_id is required"})
		return
	}

	booking, err := h.Orchestrator.ConfirmIntent(c.Request.Context(), req.IntentID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// RecordPayment handles POST /api/bookings/:id/payments.
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	bookingID := c.Param("id")
	var req models.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	booking, err := h.Orchestrator.RecordPayment(c.Request.Context(), bookingID, req.Amount, req.Method)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking":        booking,
		"payment_status": booking.PaymentStatus,
	})
}

// Refund handles POST /api/bookings/:id/refunds.
func (h *PaymentHandler) Refund(c *gin.Context) {
	bookingID := c.Param("id")
	var req models.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	booking, err := h.Orchestrator.Refund(c.Request.Context(), bookingID, req.PaymentID, req.Amount)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking":        booking,
		"payment_status": booking.PaymentStatus,
	})
}
