package bookingRepo

import (
	"context"
	"time"

	"github.com/srikanth-zersys/divedream-sub002/models"
)

// CreateParams bundles everything persisted when a booking becomes
// durable: the booking, its participants, the capacity hold to commit,
// and an optional discount code to redeem. The whole set commits or
// none of it does.
type CreateParams struct {
	Booking      *models.Booking
	Participants []models.Participant
	HoldID       string
	DiscountCode string
}

// BookingRepository is the data access layer for bookings, their
// participants and their payment records.
type BookingRepository interface {
	// CreateWithReservation persists the booking transactionally.
	// The hold flip and the discount redemption are conditional
	// updates inside the transaction; either failing aborts it.
	CreateWithReservation(ctx context.Context, params CreateParams) error

	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
	ListParticipants(ctx context.Context, bookingID string) ([]models.Participant, error)

	// TransitionStatus flips status only when the booking currently
	// holds fromStatus; moved == false means the guard did not match.
	TransitionStatus(ctx context.Context, bookingID string, from, to models.BookingStatus) (moved bool, err error)

	CreatePayment(ctx context.Context, payment *models.Payment) error
	UpdatePayment(ctx context.Context, payment *models.Payment) error
	GetPaymentByID(ctx context.Context, paymentID string) (*models.Payment, error)
	GetPaymentByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error)
	ListPayments(ctx context.Context, bookingID string) ([]models.Payment, error)

	// UpdatePaymentTotals writes the recomputed ledger totals only when
	// the booking's updated_at still matches seenAt; updated == false
	// means a concurrent write landed first and the caller must
	// recompute.
	UpdatePaymentTotals(ctx context.Context, bookingID string, amountPaid float64, status models.PaymentStatus, seenAt time.Time) (updated bool, err error)
}

// ErrDiscountExhausted is returned by CreateWithReservation when the
// redemption increment found the code spent by a concurrent checkout.
type ErrDiscountExhausted struct{ Code string }

func (e *ErrDiscountExhausted) Error() string {
	return "discount code " + e.Code + " has no redemptions left"
}

// ErrHoldNotPending is returned when the capacity hold was already
// committed or reclaimed by the expiry sweep.
type ErrHoldNotPending struct{ HoldID string }

func (e *ErrHoldNotPending) Error() string {
	return "capacity hold " + e.HoldID + " is no longer pending"
}
