// Package notification dispatches customer-facing messages as a side
// effect of booking events. Delivery channels live outside the booking
// core; the default implementation just records the event.
package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/srikanth-zersys/divedream-sub002/models"
)

// Service is the notification dispatch interface consumed by the
// booking core.
type Service interface {
	BookingConfirmed(ctx context.Context, booking *models.Booking)
	BookingCancelled(ctx context.Context, booking *models.Booking)
	PaymentReceived(ctx context.Context, booking *models.Booking, payment *models.Payment)
}

// LogNotifier implements Service by logging the event. A real channel
// (email/SMS) slots in behind the same interface.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) BookingConfirmed(_ context.Context, booking *models.Booking) {
	n.Logger.Info("notify: booking confirmed",
		zap.String("bookingId", booking.ID),
		zap.String("email", booking.Contact.Email))
}

func (n *LogNotifier) BookingCancelled(_ context.Context, booking *models.Booking) {
	n.Logger.Info("notify: booking cancelled",
		zap.String("bookingId", booking.ID),
		zap.String("email", booking.Contact.Email))
}

func (n *LogNotifier) PaymentReceived(_ context.Context, booking *models.Booking, payment *models.Payment) {
	n.Logger.Info("notify: payment received",
		zap.String("bookingId", booking.ID),
		zap.String("paymentId", payment.ID),
		zap.Float64("amount", payment.Amount))
}
