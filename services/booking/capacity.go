package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	scheduleRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/schedule"
	"github.com/srikanth-zersys/divedream-sub002/models"
)

// CapacityManager owns the invariant that a schedule's booked count
// never exceeds its maximum. Every seat a booking occupies passes
// through Reserve; every cancellation or abandonment passes through
// Release.
type CapacityManager interface {
	// Reserve atomically takes units seats and opens a provisional
	// hold. The hold must be committed when the owning booking is
	// persisted, or it is reclaimed by the expiry sweep.
	Reserve(ctx context.Context, scheduleID string, units int) (*models.CapacityHold, error)

	// Release puts units seats back, for cancellations and no-shows.
	Release(ctx context.Context, scheduleID string, units int) error

	// ReleaseHold reclaims a pending hold and its seats. Safe against
	// a concurrent commit: only one side wins the hold's status flip.
	ReleaseHold(ctx context.Context, hold *models.CapacityHold) error

	// SweepExpired reclaims all pending holds past their expiry and
	// returns how many were released.
	SweepExpired(ctx context.Context) (int, error)
}

// DefaultCapacityManager is the production implementation over the
// schedule repository's conditional updates.
type DefaultCapacityManager struct {
	Repo    scheduleRepo.ScheduleRepository
	HoldTTL time.Duration
	Logger  *zap.Logger
}

// NewCapacityManager builds a manager with the given hold window.
func NewCapacityManager(repo scheduleRepo.ScheduleRepository, holdTTL time.Duration, logger *zap.Logger) *DefaultCapacityManager {
	return &DefaultCapacityManager{Repo: repo, HoldTTL: holdTTL, Logger: logger}
}

func (cm *DefaultCapacityManager) Reserve(ctx context.Context, scheduleID string, units int) (*models.CapacityHold, error) {
	if units <= 0 {
		return nil, &ValidationError{Field: "participant_count", Message: "must be positive"}
	}

	reserved, err := cm.Repo.ReserveSeats(ctx, scheduleID, units)
	if err != nil {
		return nil, fmt.Errorf("capacity reservation failed: %w", err)
	}
	if !reserved {
		// Read back the schedule to report how many seats remain.
		schedule, lookupErr := cm.Repo.GetByID(ctx, scheduleID)
		if lookupErr != nil {
			return nil, fmt.Errorf("capacity reservation failed: %w", lookupErr)
		}
		return nil, &CapacityError{
			ScheduleID: scheduleID,
			Requested:  units,
			Available:  schedule.Available(),
		}
	}

	now := time.Now()
	hold := &models.CapacityHold{
		ID:         uuid.New().String(),
		ScheduleID: scheduleID,
		Units:      units,
		Status:     models.HoldStatusPending,
		CreatedAt:  now,
		ExpiresAt:  now.Add(cm.HoldTTL),
	}
	if err := cm.Repo.CreateHold(ctx, hold); err != nil {
		// Seats were taken but the hold record failed; put them back.
		if _, relErr := cm.Repo.ReleaseSeats(ctx, scheduleID, units); relErr != nil {
			cm.Logger.Error("failed to release seats after hold creation failure",
				zap.String("scheduleId", scheduleID), zap.Int("units", units), zap.Error(relErr))
		}
		return nil, fmt.Errorf("capacity hold creation failed: %w", err)
	}

	return hold, nil
}

func (cm *DefaultCapacityManager) Release(ctx context.Context, scheduleID string, units int) error {
	if units <= 0 {
		return &ValidationError{Field: "units", Message: "must be positive"}
	}

	clamped, err := cm.Repo.ReleaseSeats(ctx, scheduleID, units)
	if err != nil {
		return fmt.Errorf("capacity release failed: %w", err)
	}
	if clamped {
		// Releasing more than was booked signals a bookkeeping bug
		// upstream, not a user error.
		cm.Logger.Error("booked count underflow clamped to zero",
			zap.String("scheduleId", scheduleID), zap.Int("units", units))
	}
	return nil
}

func (cm *DefaultCapacityManager) ReleaseHold(ctx context.Context, hold *models.CapacityHold) error {
	released, err := cm.Repo.MarkHoldReleased(ctx, hold.ID)
	if err != nil {
		return fmt.Errorf("hold release failed: %w", err)
	}
	if !released {
		// Already committed or already swept; the seats are accounted for.
		return nil
	}
	return cm.Release(ctx, hold.ScheduleID, hold.Units)
}

func (cm *DefaultCapacityManager) SweepExpired(ctx context.Context) (int, error) {
	holds, err := cm.Repo.FindExpiredPendingHolds(ctx, 100)
	if err != nil {
		return 0, fmt.Errorf("expired hold scan failed: %w", err)
	}

	swept := 0
	for i := range holds {
		if err := cm.ReleaseHold(ctx, &holds[i]); err != nil {
			cm.Logger.Error("failed to reclaim expired hold",
				zap.String("holdId", holds[i].ID), zap.Error(err))
			continue
		}
		swept++
	}
	if swept > 0 {
		cm.Logger.Info("reclaimed expired capacity holds", zap.Int("count", swept))
	}
	return swept, nil
}
