package models

import "time"

// PaymentMethod is how money moved (or will move) for a payment record.
type PaymentMethod string

const (
	PaymentMethodOnline    PaymentMethod = "online"
	PaymentMethodPayAtShop PaymentMethod = "pay_at_shop"
	PaymentMethodCash      PaymentMethod = "cash"
	PaymentMethodCard      PaymentMethod = "card"
)

// PaymentState is the state of a single payment record.
type PaymentState string

const (
	PaymentStatePending   PaymentState = "pending"
	PaymentStateCompleted PaymentState = "completed"
	PaymentStateFailed    PaymentState = "failed"
	PaymentStateRefunded  PaymentState = "refunded"
)

// Payment is an immutable record of a monetary movement against a
// booking. A booking may accumulate several: partial payments, a
// staff-recorded shop payment, later refunds.
type Payment struct {
	ID             string        `bson:"id" json:"id"`
	BookingID      string        `bson:"booking_id" json:"booking_id"`
	Amount         float64       `bson:"amount" json:"amount"`
	RefundedAmount float64       `bson:"refunded_amount" json:"refunded_amount"`
	Currency       string        `bson:"currency" json:"currency"`
	Method         PaymentMethod `bson:"method" json:"method"`
	State          PaymentState  `bson:"state" json:"state"`
	TransactionID  string        `bson:"transaction_id,omitempty" json:"transaction_id,omitempty"`
	IdempotencyKey string        `bson:"idempotency_key" json:"-"`
	FailureReason  string        `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`
	CreatedAt      time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `bson:"updated_at" json:"updated_at"`
}

// Refundable returns how much of this payment can still be refunded.
func (p Payment) Refundable() float64 {
	if p.State != PaymentStateCompleted && p.State != PaymentStateRefunded {
		return 0
	}
	remaining := p.Amount - p.RefundedAmount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// PaymentIntentRef is the server's view of a provider payment intent
// handed back to the client for completion.
type PaymentIntentRef struct {
	PaymentID    string  `json:"payment_id"`
	IntentID     string  `json:"intent_id"`
	ClientSecret string  `json:"client_secret,omitempty"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}
