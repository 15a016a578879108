package models

import "time"

// Product is the read model of a bookable activity (a dive course, a
// fun-dive trip, a snorkel tour). Pricing metadata here feeds the
// booking core; catalogue management happens elsewhere.
type Product struct {
	ID               string    `bson:"id" json:"id"`
	Name             string    `bson:"name" json:"name"`
	BasePrice        float64   `bson:"base_price" json:"base_price"`
	TaxRate          float64   `bson:"tax_rate" json:"tax_rate"` // percent
	Currency         string    `bson:"currency" json:"currency"`
	MinCertification string    `bson:"min_certification,omitempty" json:"min_certification,omitempty"`
	Active           bool      `bson:"active" json:"active"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}

// Member is the read model of a registered customer, looked up by id
// when a booking is owned by a member rather than a walk-in contact.
type Member struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
