package scheduleRepo

import (
	"context"

	"github.com/srikanth-zersys/divedream-sub002/models"
)

// ScheduleRepository is the data access layer for schedules and their
// capacity holds. ReserveSeats and ReleaseSeats are the only mutations
// of a schedule's booked count anywhere in the system.
type ScheduleRepository interface {
	GetByID(ctx context.Context, scheduleID string) (*models.Schedule, error)
	Create(ctx context.Context, schedule *models.Schedule) error

	// ReserveSeats atomically increments booked_count by units, but
	// only when the increment keeps it within max_participants. It
	// returns models.ErrNoSeats-style failure through the boolean:
	// reserved == false means the conditional update matched nothing.
	ReserveSeats(ctx context.Context, scheduleID string, units int) (reserved bool, err error)

	// ReleaseSeats decrements booked_count by units, clamping at zero.
	// clamped == true signals the decrement would have gone negative,
	// which is a bookkeeping bug worth logging upstream.
	ReleaseSeats(ctx context.Context, scheduleID string, units int) (clamped bool, err error)

	CreateHold(ctx context.Context, hold *models.CapacityHold) error

	// MarkHoldReleased flips a hold from pending to released. Exactly
	// one of a racing sweep and a committing checkout wins.
	MarkHoldReleased(ctx context.Context, holdID string) (released bool, err error)

	FindExpiredPendingHolds(ctx context.Context, limit int) ([]models.CapacityHold, error)
}
