// Package pricing computes booking and quote totals. It is pure and
// stateless so the storefront checkout, the back office, and quote
// conversion all arrive at identical amounts for the same inputs.
package pricing

import (
	"fmt"
	"math"

	"github.com/srikanth-zersys/divedream-sub002/models"
)

// LineItem is one priced line: a named thing, a quantity, a unit
// price, and an optional per-line discount percent.
type LineItem struct {
	Name            string
	Quantity        int
	UnitPrice       float64
	DiscountPercent float64
}

// Breakdown is the result of pricing a set of line items.
type Breakdown struct {
	Subtotal       float64
	DiscountAmount float64
	TaxAmount      float64
	TotalAmount    float64
}

// ValidationError marks malformed pricing input. The caller's fault;
// nothing was attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// RoundCurrency rounds to two minor units, half away from zero. Used
// for every persisted monetary amount so repeated computation of the
// same inputs is byte-identical.
func RoundCurrency(v float64) float64 {
	if v < 0 {
		return -math.Floor(-v*100+0.5) / 100
	}
	return math.Floor(v*100+0.5) / 100
}

// ClampPercent bounds a percentage to [0, 100].
func ClampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// ComputeLineTotal prices a single line item, applying its own
// discount percent and rounding to minor units.
func ComputeLineTotal(item LineItem) (float64, error) {
	if item.Quantity < 0 {
		return 0, &ValidationError{Field: "quantity", Message: "must not be negative"}
	}
	if item.UnitPrice < 0 {
		return 0, &ValidationError{Field: "unit_price", Message: "must not be negative"}
	}
	discount := ClampPercent(item.DiscountPercent)
	total := float64(item.Quantity) * item.UnitPrice * (1 - discount/100)
	return RoundCurrency(total), nil
}

// Subtotal sums the rounded line totals.
func Subtotal(items []LineItem) (float64, error) {
	var sum float64
	for _, item := range items {
		lineTotal, err := ComputeLineTotal(item)
		if err != nil {
			return 0, err
		}
		sum += lineTotal
	}
	return RoundCurrency(sum), nil
}

// DiscountAmount computes how much a discount takes off the given
// subtotal. Fixed discounts never exceed the subtotal.
func DiscountAmount(subtotal float64, discountType models.DiscountType, value float64) (float64, error) {
	if subtotal < 0 {
		return 0, &ValidationError{Field: "subtotal", Message: "must not be negative"}
	}
	switch discountType {
	case models.DiscountTypePercentage:
		return RoundCurrency(subtotal * ClampPercent(value) / 100), nil
	case models.DiscountTypeFixed:
		if value < 0 {
			return 0, &ValidationError{Field: "value", Message: "must not be negative"}
		}
		if value > subtotal {
			return subtotal, nil
		}
		return RoundCurrency(value), nil
	default:
		return 0, &ValidationError{Field: "type", Message: fmt.Sprintf("unknown discount type %q", discountType)}
	}
}

// ComputeTotals prices a full set of line items with an overall
// discount percent and a tax rate, both expressed as percentages.
func ComputeTotals(items []LineItem, overallDiscountPercent, taxRate float64) (Breakdown, error) {
	subtotal, err := Subtotal(items)
	if err != nil {
		return Breakdown{}, err
	}
	discountAmount, err := DiscountAmount(subtotal, models.DiscountTypePercentage, overallDiscountPercent)
	if err != nil {
		return Breakdown{}, err
	}
	return totalsFromDiscount(subtotal, discountAmount, taxRate), nil
}

// ComputeTotalsWithDiscountAmount prices line items against an already
// resolved discount amount (a validated discount code outcome).
func ComputeTotalsWithDiscountAmount(items []LineItem, discountAmount, taxRate float64) (Breakdown, error) {
	subtotal, err := Subtotal(items)
	if err != nil {
		return Breakdown{}, err
	}
	if discountAmount < 0 {
		return Breakdown{}, &ValidationError{Field: "discount_amount", Message: "must not be negative"}
	}
	if discountAmount > subtotal {
		discountAmount = subtotal
	}
	return totalsFromDiscount(subtotal, RoundCurrency(discountAmount), taxRate), nil
}

func totalsFromDiscount(subtotal, discountAmount, taxRate float64) Breakdown {
	afterDiscount := RoundCurrency(subtotal - discountAmount)
	taxAmount := RoundCurrency(afterDiscount * ClampPercent(taxRate) / 100)
	return Breakdown{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		TotalAmount:    RoundCurrency(afterDiscount + taxAmount),
	}
}
