package models

import "time"

// ParticipantInput names one seat-holder on an incoming booking request.
type ParticipantInput struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Primary bool   `json:"primary"`
}

// CheckoutRequest is the body of a booking creation call, from the
// public storefront or the staff back office.
type CheckoutRequest struct {
	ScheduleID       string             `json:"schedule_id"`
	ParticipantCount int                `json:"participant_count"`
	MemberID         string             `json:"member_id,omitempty"`
	Contact          Contact            `json:"contact"`
	Participants     []ParticipantInput `json:"participants"`
	DiscountCode     string             `json:"discount_code,omitempty"`
	PaymentMethod    PaymentMethod      `json:"payment_method"`
	Source           BookingSource      `json:"source,omitempty"`
}

// CheckoutResponse returns the created booking plus, for online
// payment, the provider intent the client completes.
type CheckoutResponse struct {
	Booking *Booking          `json:"booking"`
	Intent  *PaymentIntentRef `json:"payment_intent,omitempty"`
}

// RecordPaymentRequest records a staff-entered payment against a booking.
type RecordPaymentRequest struct {
	Amount float64       `json:"amount"`
	Method PaymentMethod `json:"method"`
}

// RefundRequest asks for a partial or full refund of one payment.
type RefundRequest struct {
	PaymentID string  `json:"payment_id"`
	Amount    float64 `json:"amount"`
}

// ValidateDiscountRequest checks a code against a schedule and subtotal.
type ValidateDiscountRequest struct {
	Code       string  `json:"code"`
	ScheduleID string  `json:"schedule_id"`
	Subtotal   float64 `json:"subtotal"`
}

// CreateQuoteRequest opens a draft quote with free-form line items.
type CreateQuoteRequest struct {
	MemberID         string      `json:"member_id,omitempty"`
	Contact          Contact     `json:"contact"`
	Items            []QuoteItem `json:"items"`
	DiscountPercent  float64     `json:"discount_percent"`
	TaxRate          float64     `json:"tax_rate"`
	DepositPercent   float64     `json:"deposit_percent"`
	Currency         string      `json:"currency"`
	ScheduleID       string      `json:"schedule_id,omitempty"`
	ParticipantCount int         `json:"participant_count"`
	ExpiresAt        *time.Time  `json:"expires_at,omitempty"`
}
