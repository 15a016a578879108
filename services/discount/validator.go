// Package discount validates discount codes against a schedule and a
// subtotal. Validation never consumes a redemption; the count is
// incremented only when the booking actually persists.
package discount

import (
	"context"
	"fmt"
	"time"

	discountRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/discount"
	scheduleRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/schedule"
	"github.com/srikanth-zersys/divedream-sub002/models"
	"github.com/srikanth-zersys/divedream-sub002/services/pricing"
)

// Validator checks a code's applicability and computes the discount it
// would grant on the given subtotal.
type Validator interface {
	Validate(ctx context.Context, code, scheduleID string, subtotal float64) (*models.DiscountOutcome, error)
}

// DefaultValidator implements Validator.
type DefaultValidator struct {
	Codes     discountRepo.DiscountRepository
	Schedules scheduleRepo.ScheduleRepository
	Now       func() time.Time
}

// NewValidator builds a validator using wall-clock time.
func NewValidator(codes discountRepo.DiscountRepository, schedules scheduleRepo.ScheduleRepository) *DefaultValidator {
	return &DefaultValidator{Codes: codes, Schedules: schedules, Now: time.Now}
}

// Validate normalizes and looks up the code, then checks its date
// window, schedule/product restrictions, and redemption limit. The
// returned amount uses the same rounding the pricing calculator
// applies, so the quoted discount matches the persisted booking.
//
// The redemption-limit check here can race with a concurrent checkout;
// the conditional increment at booking persistence is what actually
// enforces the limit.
func (v *DefaultValidator) Validate(ctx context.Context, code, scheduleID string, subtotal float64) (*models.DiscountOutcome, error) {
	normalized := models.NormalizeDiscountCode(code)

	dc, err := v.Codes.GetByCode(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("discount lookup failed: %w", err)
	}
	if dc == nil || !dc.Active {
		return nil, &RejectionError{Code: normalized, Reason: ReasonNotFound}
	}

	now := v.Now()
	if dc.ValidFrom != nil && now.Before(*dc.ValidFrom) {
		return nil, &RejectionError{Code: normalized, Reason: ReasonExpired}
	}
	if dc.ValidTo != nil && now.After(*dc.ValidTo) {
		return nil, &RejectionError{Code: normalized, Reason: ReasonExpired}
	}

	if err := v.checkApplicability(ctx, dc, scheduleID); err != nil {
		return nil, err
	}

	if dc.MaxRedemptions > 0 && dc.RedeemedCount >= dc.MaxRedemptions {
		return nil, &RejectionError{Code: normalized, Reason: ReasonLimitReached}
	}

	amount, err := pricing.DiscountAmount(subtotal, dc.Type, dc.Value)
	if err != nil {
		return nil, err
	}

	return &models.DiscountOutcome{
		Code:           dc.Code,
		Type:           dc.Type,
		Value:          dc.Value,
		DiscountAmount: amount,
	}, nil
}

func (v *DefaultValidator) checkApplicability(ctx context.Context, dc *models.DiscountCode, scheduleID string) error {
	if len(dc.ScheduleIDs) == 0 && len(dc.ProductIDs) == 0 {
		return nil
	}

	for _, id := range dc.ScheduleIDs {
		if id == scheduleID {
			return nil
		}
	}

	if len(dc.ProductIDs) > 0 && scheduleID != "" {
		schedule, err := v.Schedules.GetByID(ctx, scheduleID)
		if err != nil {
			return fmt.Errorf("schedule lookup for discount applicability failed: %w", err)
		}
		for _, id := range dc.ProductIDs {
			if id == schedule.ProductID {
				return nil
			}
		}
	}

	return &RejectionError{Code: dc.Code, Reason: ReasonNotApplicable}
}
