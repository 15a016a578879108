package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	bookingRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/booking"
	"github.com/srikanth-zersys/divedream-sub002/models"
	"github.com/srikanth-zersys/divedream-sub002/services/booking"
)

// BookingHandler exposes booking creation, lookup, and lifecycle
// transitions over HTTP.
type BookingHandler struct {
	Checkout     booking.CheckoutService
	Lifecycle    booking.LifecycleService
	Availability booking.AvailabilityService
	Bookings     bookingRepo.BookingRepository
	Logger       *zap.Logger
}

// NewBookingHandler builds the handler.
func NewBookingHandler(checkout booking.CheckoutService, lifecycle booking.LifecycleService, availability booking.AvailabilityService, bookings bookingRepo.BookingRepository, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		Checkout:     checkout,
		Lifecycle:    lifecycle,
		Availability: availability,
		Bookings:     bookings,
		Logger:       logger,
	}
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	resp, err := h.Checkout.CreateBooking(c.Request.Context(), req)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID := c.Param("id")

	b, err := h.Bookings.GetByID(c.Request.Context(), bookingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	participants, err := h.Bookings.ListParticipants(c.Request.Context(), bookingID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b, "participants": participants})
}

// CheckIn handles POST /api/bookings/:id/check-in.
func (h *BookingHandler) CheckIn(c *gin.Context) {
	h.applyTransition(c, h.Lifecycle.CheckIn)
}

// CheckOut handles POST /api/bookings/:id/check-out.
func (h *BookingHandler) CheckOut(c *gin.Context) {
	h.applyTransition(c, h.Lifecycle.CheckOut)
}

// Cancel handles POST /api/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c *gin.Context) {
	h.applyTransition(c, h.Lifecycle.Cancel)
}

// NoShow handles POST /api/bookings/:id/no-show.
func (h *BookingHandler) NoShow(c *gin.Context) {
	h.applyTransition(c, h.Lifecycle.NoShow)
}

// Confirm handles POST /api/bookings/:id/confirm (staff action).
func (h *BookingHandler) Confirm(c *gin.Context) {
	h.applyTransition(c, h.Lifecycle.Confirm)
}

// GetScheduleAvailability handles GET /api/schedules/:id/availability.
func (h *BookingHandler) GetScheduleAvailability(c *gin.Context) {
	availability, err := h.Availability.GetScheduleAvailability(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, availability)
}

func (h *BookingHandler) applyTransition(c *gin.Context, fn func(ctx context.Context, bookingID string) (*models.Booking, error)) {
	bookingID := c.Param("id")

	b, err := fn(c.Request.Context(), bookingID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}
