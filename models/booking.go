package models

import "time"

// BookingStatus is the operational state of a booking. It is tracked
// separately from PaymentStatus so each dimension evolves through its
// own guarded transition function.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCheckedIn BookingStatus = "checked_in"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no_show"
)

// Terminal reports whether no further status transitions are permitted.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingStatusCancelled, BookingStatusCompleted, BookingStatusNoShow:
		return true
	}
	return false
}

// PaymentStatus is the money dimension of a booking.
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPartial  PaymentStatus = "partial"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// DerivePaymentStatus computes the payment status from the amounts on
// record. Refunded applies once everything collected has been returned.
func DerivePaymentStatus(amountPaid, totalRefunded, totalAmount float64) PaymentStatus {
	switch {
	case totalRefunded > 0 && amountPaid <= 0:
		return PaymentStatusRefunded
	case amountPaid <= 0:
		return PaymentStatusUnpaid
	case amountPaid < totalAmount:
		return PaymentStatusPartial
	default:
		return PaymentStatusPaid
	}
}

// BookingSource records which entry point created the booking.
type BookingSource string

const (
	BookingSourcePublic BookingSource = "public"
	BookingSourceAdmin  BookingSource = "admin"
	BookingSourceQuote  BookingSource = "quote"
)

// Contact identifies a walk-in customer who is not a registered member.
type Contact struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// Booking is a pending or confirmed claim on seats of a schedule,
// together with its pricing and payment state. Bookings are never
// deleted; cancellation is a status transition so capacity accounting
// history survives.
type Booking struct {
	ID               string        `bson:"id" json:"id"`
	ScheduleID       string        `bson:"schedule_id,omitempty" json:"schedule_id,omitempty"`
	QuoteID          string        `bson:"quote_id,omitempty" json:"quote_id,omitempty"`
	MemberID         string        `bson:"member_id,omitempty" json:"member_id,omitempty"`
	Contact          Contact       `bson:"contact" json:"contact"`
	Source           BookingSource `bson:"source" json:"source"`
	Status           BookingStatus `bson:"status" json:"status"`
	PaymentStatus    PaymentStatus `bson:"payment_status" json:"payment_status"`
	ParticipantCount int           `bson:"participant_count" json:"participant_count"`
	Subtotal         float64       `bson:"subtotal" json:"subtotal"`
	DiscountAmount   float64       `bson:"discount_amount" json:"discount_amount"`
	DiscountCode     string        `bson:"discount_code,omitempty" json:"discount_code,omitempty"`
	TaxAmount        float64       `bson:"tax_amount" json:"tax_amount"`
	TotalAmount      float64       `bson:"total_amount" json:"total_amount"`
	AmountPaid       float64       `bson:"amount_paid" json:"amount_paid"`
	Currency         string        `bson:"currency" json:"currency"`
	CreatedAt        time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `bson:"updated_at" json:"updated_at"`
}

// Participant is a named seat-holder within a booking. Exactly one
// participant per booking is marked primary.
type Participant struct {
	ID              string    `bson:"id" json:"id"`
	BookingID       string    `bson:"booking_id" json:"booking_id"`
	Name            string    `bson:"name" json:"name"`
	Email           string    `bson:"email,omitempty" json:"email,omitempty"`
	Primary         bool      `bson:"primary" json:"primary"`
	WaiverSigned    bool      `bson:"waiver_signed" json:"waiver_signed"`
	MedicalFormDone bool      `bson:"medical_form_done" json:"medical_form_done"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}
