// Package payment orchestrates monetary movements against bookings:
// provider intents for online checkout, staff-recorded shop payments,
// and refunds. Every provider call carries an idempotency key derived
// from the booking, so client-initiated retries are safe.
package payment

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/booking"
	"github.com/srikanth-zersys/divedream-sub002/models"
	"github.com/srikanth-zersys/divedream-sub002/services/notification"
	"github.com/srikanth-zersys/divedream-sub002/services/pricing"
)

// Orchestrator is the payment entry point used by checkout and the
// back office.
type Orchestrator interface {
	// CreateIntent opens a provider intent for the booking's
	// outstanding balance. The amount is computed server-side; a
	// client-supplied amount is never trusted.
	CreateIntent(ctx context.Context, bookingID string) (*models.PaymentIntentRef, error)

	// ConfirmIntent finalizes an intent after the client completed it
	// (or a provider callback arrived). Replays are no-ops.
	ConfirmIntent(ctx context.Context, intentID string) (*models.Booking, error)

	// RecordPayment records a staff-entered payment (cash, card at
	// the shop) through the same payment-record path.
	RecordPayment(ctx context.Context, bookingID string, amount float64, method models.PaymentMethod) (*models.Booking, error)

	// Refund returns part or all of one payment to the customer.
	Refund(ctx context.Context, bookingID, paymentID string, amount float64) (*models.Booking, error)
}

// DefaultOrchestrator implements Orchestrator.
type DefaultOrchestrator struct {
	Bookings bookingRepo.BookingRepository
	Provider Provider
	Notifier notification.Service
	Timeout  time.Duration
	Logger   *zap.Logger
}

// NewOrchestrator builds the production orchestrator.
func NewOrchestrator(bookings bookingRepo.BookingRepository, provider Provider, notifier notification.Service, timeout time.Duration, logger *zap.Logger) *DefaultOrchestrator {
	return &DefaultOrchestrator{
		Bookings: bookings,
		Provider: provider,
		Notifier: notifier,
		Timeout:  timeout,
		Logger:   logger,
	}
}

func (o *DefaultOrchestrator) CreateIntent(ctx context.Context, bookingID string) (*models.PaymentIntentRef, error) {
	booking, err := o.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status.Terminal() {
		return nil, fmt.Errorf("booking %s is %s; no payment can be taken", bookingID, booking.Status)
	}

	outstanding := pricing.RoundCurrency(booking.TotalAmount - booking.AmountPaid)
	if outstanding <= 0 {
		return nil, fmt.Errorf("booking %s has no outstanding balance", bookingID)
	}

	// A retried request after a timeout finds the earlier pending
	// record and returns the same intent instead of opening a second
	// one. A pending intent whose amount no longer matches the balance
	// (a staff payment landed in between) is canceled and replaced.
	if existing, err := o.pendingIntentRecord(ctx, bookingID); err != nil {
		return nil, err
	} else if existing != nil {
		if existing.Amount == outstanding {
			intent, err := o.getIntent(ctx, existing.TransactionID)
			if err != nil {
				return nil, err
			}
			return &models.PaymentIntentRef{
				PaymentID:    existing.ID,
				IntentID:     intent.ID,
				ClientSecret: intent.ClientSecret,
				Amount:       existing.Amount,
				Currency:     existing.Currency,
			}, nil
		}
		if err := o.supersedeIntent(ctx, existing); err != nil {
			return nil, err
		}
	}

	recordID := uuid.New().String()
	idempotencyKey := bookingID + ":intent:" + recordID

	callCtx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	intent, err := o.Provider.CreateIntent(callCtx, minorUnits(outstanding), booking.Currency, idempotencyKey, map[string]string{
		"booking_id": booking.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("payment intent creation failed: %w", err)
	}

	now := time.Now()
	record := &models.Payment{
		ID:             recordID,
		BookingID:      booking.ID,
		Amount:         outstanding,
		Currency:       booking.Currency,
		Method:         models.PaymentMethodOnline,
		State:          models.PaymentStatePending,
		TransactionID:  intent.ID,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := o.Bookings.CreatePayment(ctx, record); err != nil {
		return nil, err
	}

	return &models.PaymentIntentRef{
		PaymentID:    record.ID,
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       outstanding,
		Currency:     booking.Currency,
	}, nil
}

// pendingIntentRecord finds the open provider intent for a booking, if
// any. At most one can be pending at a time.
func (o *DefaultOrchestrator) pendingIntentRecord(ctx context.Context, bookingID string) (*models.Payment, error) {
	payments, err := o.Bookings.ListPayments(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	for i := range payments {
		p := &payments[i]
		if p.State == models.PaymentStatePending && p.Method == models.PaymentMethodOnline && p.TransactionID != "" {
			return p, nil
		}
	}
	return nil, nil
}

func (o *DefaultOrchestrator) supersedeIntent(ctx context.Context, record *models.Payment) error {
	callCtx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	if err := o.Provider.CancelIntent(callCtx, record.TransactionID); err != nil {
		return fmt.Errorf("could not cancel stale intent %s: %w", record.TransactionID, err)
	}

	record.State = models.PaymentStateFailed
	record.FailureReason = "superseded: outstanding balance changed"
	record.UpdatedAt = time.Now()
	return o.Bookings.UpdatePayment(ctx, record)
}

func (o *DefaultOrchestrator) ConfirmIntent(ctx context.Context, intentID string) (*models.Booking, error) {
	record, err := o.Bookings.GetPaymentByTransactionID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("no payment record for intent %s", intentID)
	}

	// A replayed confirmation is a no-op: the record already moved.
	if record.State == models.PaymentStateCompleted || record.State == models.PaymentStateRefunded {
		return o.Bookings.GetByID(ctx, record.BookingID)
	}

	intent, err := o.getIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}

	switch intent.Status {
	case IntentStatusSucceeded:
		// The balance may have shrunk since the intent opened; a stale
		// intent must never push amount_paid past total_amount.
		booking, err := o.Bookings.GetByID(ctx, record.BookingID)
		if err != nil {
			return nil, err
		}
		outstanding := pricing.RoundCurrency(booking.TotalAmount - booking.AmountPaid)
		if record.Amount > outstanding {
			record.State = models.PaymentStateFailed
			record.FailureReason = "amount exceeds outstanding balance"
			record.UpdatedAt = time.Now()
			if err := o.Bookings.UpdatePayment(ctx, record); err != nil {
				return nil, err
			}
			return nil, &FailedError{IntentID: intentID, Reason: "amount exceeds outstanding balance"}
		}
		record.State = models.PaymentStateCompleted
		record.UpdatedAt = time.Now()
		if err := o.Bookings.UpdatePayment(ctx, record); err != nil {
			return nil, err
		}
	case IntentStatusCanceled:
		record.State = models.PaymentStateFailed
		record.FailureReason = "canceled by provider"
		record.UpdatedAt = time.Now()
		if err := o.Bookings.UpdatePayment(ctx, record); err != nil {
			return nil, err
		}
		return nil, &FailedError{IntentID: intentID, Reason: "canceled by provider"}
	default:
		// Not completed yet; leave the record pending for a retry.
		return nil, &FailedError{IntentID: intentID, Reason: "payment not completed"}
	}

	booking, err := o.reconcileTotals(ctx, record.BookingID)
	if err != nil {
		return nil, err
	}
	if o.Notifier != nil {
		o.Notifier.PaymentReceived(ctx, booking, record)
	}
	return booking, nil
}

func (o *DefaultOrchestrator) RecordPayment(ctx context.Context, bookingID string, amount float64, method models.PaymentMethod) (*models.Booking, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}

	booking, err := o.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status.Terminal() && booking.Status != models.BookingStatusCompleted {
		return nil, fmt.Errorf("booking %s is %s; no payment can be recorded", bookingID, booking.Status)
	}

	amount = pricing.RoundCurrency(amount)
	outstanding := pricing.RoundCurrency(booking.TotalAmount - booking.AmountPaid)
	if amount > outstanding {
		return nil, fmt.Errorf("payment of %.2f exceeds outstanding balance of %.2f", amount, outstanding)
	}

	now := time.Now()
	record := &models.Payment{
		ID:             uuid.New().String(),
		BookingID:      booking.ID,
		Amount:         amount,
		Currency:       booking.Currency,
		Method:         method,
		State:          models.PaymentStateCompleted,
		IdempotencyKey: uuid.New().String(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := o.Bookings.CreatePayment(ctx, record); err != nil {
		return nil, err
	}

	updated, err := o.reconcileTotals(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if o.Notifier != nil {
		o.Notifier.PaymentReceived(ctx, updated, record)
	}
	return updated, nil
}

func (o *DefaultOrchestrator) Refund(ctx context.Context, bookingID, paymentID string, amount float64) (*models.Booking, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("refund amount must be positive")
	}

	record, err := o.Bookings.GetPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if record == nil || record.BookingID != bookingID {
		return nil, fmt.Errorf("payment %s not found on booking %s", paymentID, bookingID)
	}

	amount = pricing.RoundCurrency(amount)
	available := record.Refundable()
	if amount > available {
		return nil, &RefundExceedsAvailableError{
			PaymentID: paymentID,
			Requested: amount,
			Available: available,
		}
	}

	if record.Method == models.PaymentMethodOnline && record.TransactionID != "" {
		callCtx, cancel := context.WithTimeout(ctx, o.Timeout)
		defer cancel()

		idempotencyKey := fmt.Sprintf("%s:refund:%s", bookingID, paymentID)
		if _, err := o.Provider.Refund(callCtx, record.TransactionID, minorUnits(amount), idempotencyKey); err != nil {
			return nil, fmt.Errorf("provider refund failed: %w", err)
		}
	}

	record.RefundedAmount = pricing.RoundCurrency(record.RefundedAmount + amount)
	if record.RefundedAmount >= record.Amount {
		record.State = models.PaymentStateRefunded
	}
	record.UpdatedAt = time.Now()
	if err := o.Bookings.UpdatePayment(ctx, record); err != nil {
		return nil, err
	}

	return o.reconcileTotals(ctx, bookingID)
}

// reconcileTotals recomputes amount_paid and payment_status from the
// payment records, then verifies the ledger invariant:
// sum(completed) - sum(refunded) == amount_paid.
// The write is conditional on the booking revision it was computed
// from; a concurrent payment event forces a re-read.
func (o *DefaultOrchestrator) reconcileTotals(ctx context.Context, bookingID string) (*models.Booking, error) {
	for attempt := 0; attempt < 3; attempt++ {
		booking, err := o.Bookings.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		payments, err := o.Bookings.ListPayments(ctx, bookingID)
		if err != nil {
			return nil, err
		}

		var collected, refunded float64
		for _, p := range payments {
			switch p.State {
			case models.PaymentStateCompleted, models.PaymentStateRefunded:
				collected += p.Amount
				refunded += p.RefundedAmount
			}
		}

		amountPaid := pricing.RoundCurrency(collected - refunded)
		if amountPaid < 0 {
			o.Logger.Error("payment ledger went negative",
				zap.String("bookingId", bookingID), zap.Float64("amountPaid", amountPaid))
			amountPaid = 0
		}
		if amountPaid > booking.TotalAmount {
			o.Logger.Error("amount paid exceeds booking total",
				zap.String("bookingId", bookingID),
				zap.Float64("amountPaid", amountPaid),
				zap.Float64("total", booking.TotalAmount))
		}

		status := models.DerivePaymentStatus(amountPaid, pricing.RoundCurrency(refunded), booking.TotalAmount)
		updated, err := o.Bookings.UpdatePaymentTotals(ctx, bookingID, amountPaid, status, booking.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if !updated {
			continue
		}

		booking.AmountPaid = amountPaid
		booking.PaymentStatus = status
		return booking, nil
	}
	return nil, fmt.Errorf("could not reconcile payment totals for booking %s: too many concurrent updates", bookingID)
}

func (o *DefaultOrchestrator) getIntent(ctx context.Context, intentID string) (*Intent, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	intent, err := o.Provider.GetIntent(callCtx, intentID)
	if err != nil {
		return nil, fmt.Errorf("payment intent lookup failed: %w", err)
	}
	return intent, nil
}

func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
