package discountRepo

import (
	"context"

	"github.com/srikanth-zersys/divedream-sub002/models"
)

// DiscountRepository is the data access layer for discount codes.
// Redemption counting is not here: the increment happens inside the
// booking-creation transaction so abandoned checkouts never spend a code.
type DiscountRepository interface {
	GetByCode(ctx context.Context, code string) (*models.DiscountCode, error)
	Create(ctx context.Context, code *models.DiscountCode) error
}
