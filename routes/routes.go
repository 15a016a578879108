package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/srikanth-zersys/divedream-sub002/handlers"
	"github.com/srikanth-zersys/divedream-sub002/utils"
)

// RegisterBookingRoutes registers checkout, lookup, and lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, bh *handlers.BookingHandler, ph *handlers.PaymentHandler) {
	api := r.Group("/api/bookings")
	{
		api.POST("", bh.CreateBooking)
		api.GET("/:id", bh.GetBooking)
		api.POST("/:id/confirm", bh.Confirm)
		api.POST("/:id/check-in", bh.CheckIn)
		api.POST("/:id/check-out", bh.CheckOut)
		api.POST("/:id/cancel", bh.Cancel)
		api.POST("/:id/no-show", bh.NoShow)
		api.POST("/:id/payments", ph.RecordPayment)
		api.POST("/:id/refunds", ph.Refund)
	}
}

// RegisterPaymentRoutes registers payment intent endpoints.
func RegisterPaymentRoutes(r *gin.Engine, ph *handlers.PaymentHandler) {
	api := r.Group("/api/payment-intents")
	{
		api.POST("", ph.CreatePaymentIntent)
		api.POST("/confirm", ph.ConfirmPaymentIntent)
	}
}

// RegisterDiscountRoutes registers discount code endpoints.
func RegisterDiscountRoutes(r *gin.Engine, dh *handlers.DiscountHandler) {
	api := r.Group("/api/discount-codes")
	{
		api.POST("/validate", dh.ValidateDiscountCode)
	}
}

// RegisterQuoteRoutes registers quote lifecycle and conversion endpoints.
func RegisterQuoteRoutes(r *gin.Engine, qh *handlers.QuoteHandler) {
	api := r.Group("/api/quotes")
	{
		api.POST("", qh.CreateQuote)
		api.GET("/:id", qh.GetQuote)
		api.POST("/:id/send", qh.SendQuote)
		api.POST("/:id/view", qh.ViewQuote)
		api.POST("/:id/accept", qh.AcceptQuote)
		api.POST("/:id/reject", qh.RejectQuote)
		api.POST("/:id/convert", qh.ConvertQuote)
	}
}

// RegisterScheduleRoutes registers schedule availability endpoints.
func RegisterScheduleRoutes(r *gin.Engine, bh *handlers.BookingHandler) {
	api := r.Group("/api/schedules")
	{
		api.GET("/:id/availability", bh.GetScheduleAvailability)
	}
}

// RegisterHealthRoutes exposes the health snapshot.
func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})
}

// RegisterRoutes wires every endpoint group onto the router.
func RegisterRoutes(r *gin.Engine, bh *handlers.BookingHandler, ph *handlers.PaymentHandler, dh *handlers.DiscountHandler, qh *handlers.QuoteHandler) {
	RegisterBookingRoutes(r, bh, ph)
	RegisterPaymentRoutes(r, ph)
	RegisterDiscountRoutes(r, dh)
	RegisterQuoteRoutes(r, qh)
	RegisterScheduleRoutes(r, bh)
	RegisterHealthRoutes(r)
}
