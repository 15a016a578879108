package models

import (
	"strings"
	"time"
)

// DiscountType is a closed variant: every switch over it must handle
// both arms (and reject anything else) so a new type cannot slip
// through pricing unnoticed.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// DiscountCode is a reusable coupon with applicability constraints.
// Codes are stored normalized upper-case and matched case-insensitively.
type DiscountCode struct {
	ID             string       `bson:"id" json:"id"`
	Code           string       `bson:"code" json:"code"`
	Type           DiscountType `bson:"type" json:"type"`
	Value          float64      `bson:"value" json:"value"`
	ValidFrom      *time.Time   `bson:"valid_from,omitempty" json:"valid_from,omitempty"`
	ValidTo        *time.Time   `bson:"valid_to,omitempty" json:"valid_to,omitempty"`
	ScheduleIDs    []string     `bson:"schedule_ids,omitempty" json:"schedule_ids,omitempty"`
	ProductIDs     []string     `bson:"product_ids,omitempty" json:"product_ids,omitempty"`
	MaxRedemptions int          `bson:"max_redemptions" json:"max_redemptions"` // 0 = unlimited
	RedeemedCount  int          `bson:"redeemed_count" json:"redeemed_count"`
	Active         bool         `bson:"active" json:"active"`
	CreatedAt      time.Time    `bson:"created_at" json:"created_at"`
}

// NormalizeDiscountCode canonicalizes user input before lookup.
func NormalizeDiscountCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DiscountOutcome is a successful validation result. DiscountAmount is
// precomputed with the same rounding the pricing calculator uses, so
// the quoted discount and the persisted booking never disagree.
type DiscountOutcome struct {
	Code           string       `json:"code"`
	Type           DiscountType `json:"type"`
	Value          float64      `json:"value"`
	DiscountAmount float64      `json:"discount_amount"`
}
