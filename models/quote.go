package models

import "time"

// QuoteStatus is the lifecycle of a negotiated proposal, independent
// of any booking lifecycle. Converted is terminal and links to exactly
// one resulting booking.
type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "draft"
	QuoteStatusSent      QuoteStatus = "sent"
	QuoteStatusViewed    QuoteStatus = "viewed"
	QuoteStatusAccepted  QuoteStatus = "accepted"
	QuoteStatusRejected  QuoteStatus = "rejected"
	QuoteStatusExpired   QuoteStatus = "expired"
	QuoteStatusConverted QuoteStatus = "converted"
)

// QuoteItem is one free-form line on a quote.
type QuoteItem struct {
	Name            string  `bson:"name" json:"name"`
	Quantity        int     `bson:"quantity" json:"quantity"`
	UnitPrice       float64 `bson:"unit_price" json:"unit_price"`
	DiscountPercent float64 `bson:"discount_percent" json:"discount_percent"`
}

// Quote is a pre-booking proposal with arbitrary line items and
// quote-level discount/tax/deposit terms. Accepting a quote does not
// commit capacity; conversion does.
type Quote struct {
	ID               string      `bson:"id" json:"id"`
	MemberID         string      `bson:"member_id,omitempty" json:"member_id,omitempty"`
	Contact          Contact     `bson:"contact" json:"contact"`
	Items            []QuoteItem `bson:"items" json:"items"`
	DiscountPercent  float64     `bson:"discount_percent" json:"discount_percent"`
	TaxRate          float64     `bson:"tax_rate" json:"tax_rate"`
	DepositPercent   float64     `bson:"deposit_percent" json:"deposit_percent"`
	Currency         string      `bson:"currency" json:"currency"`
	Status           QuoteStatus `bson:"status" json:"status"`
	ScheduleID       string      `bson:"schedule_id,omitempty" json:"schedule_id,omitempty"`
	ParticipantCount int         `bson:"participant_count" json:"participant_count"`
	Subtotal         float64     `bson:"subtotal" json:"subtotal"`
	DiscountAmount   float64     `bson:"discount_amount" json:"discount_amount"`
	TaxAmount        float64     `bson:"tax_amount" json:"tax_amount"`
	TotalAmount      float64     `bson:"total_amount" json:"total_amount"`
	BookingID        string      `bson:"booking_id,omitempty" json:"booking_id,omitempty"`
	ExpiresAt        *time.Time  `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	CreatedAt        time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time   `bson:"updated_at" json:"updated_at"`
}
