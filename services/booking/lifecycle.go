package booking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	bookingRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/booking"
	scheduleRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/schedule"
	"github.com/srikanth-zersys/divedream-sub002/models"
	"github.com/srikanth-zersys/divedream-sub002/services/notification"
)

// LifecycleService drives a booking through its status state machine.
// Payment status is the other, independent dimension and is advanced
// by the payment orchestrator.
type LifecycleService interface {
	Confirm(ctx context.Context, bookingID string) (*models.Booking, error)
	CheckIn(ctx context.Context, bookingID string) (*models.Booking, error)
	CheckOut(ctx context.Context, bookingID string) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID string) (*models.Booking, error)
	NoShow(ctx context.Context, bookingID string) (*models.Booking, error)
}

// DefaultLifecycleService implements LifecycleService.
type DefaultLifecycleService struct {
	Bookings  bookingRepo.BookingRepository
	Schedules scheduleRepo.ScheduleRepository
	Capacity  CapacityManager
	Notifier  notification.Service
	Logger    *zap.Logger
}

// Confirm moves a pending booking to confirmed (explicit staff action
// or post-payment confirmation).
func (s *DefaultLifecycleService) Confirm(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.transition(ctx, bookingID, "confirm",
		[]models.BookingStatus{models.BookingStatusPending},
		models.BookingStatusConfirmed)
}

// CheckIn admits a confirmed booking at the shop. Only confirmed
// bookings can check in; a pending one fails the guard.
func (s *DefaultLifecycleService) CheckIn(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.transition(ctx, bookingID, "check-in",
		[]models.BookingStatus{models.BookingStatusConfirmed},
		models.BookingStatusCheckedIn)
}

// CheckOut completes a checked-in booking.
func (s *DefaultLifecycleService) CheckOut(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.transition(ctx, bookingID, "check-out",
		[]models.BookingStatus{models.BookingStatusCheckedIn},
		models.BookingStatusCompleted)
}

// Cancel cancels a pending or confirmed booking and puts its seats
// back. Refunding anything already collected is a separate staff
// action, never automatic.
func (s *DefaultLifecycleService) Cancel(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.transition(ctx, bookingID, "cancel",
		[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed},
		models.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}

	if err := s.releaseSeats(ctx, booking); err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		s.Notifier.BookingCancelled(ctx, booking)
	}
	return booking, nil
}

// NoShow marks a confirmed booking whose schedule has already started
// as a no-show and releases its seats.
func (s *DefaultLifecycleService) NoShow(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.ScheduleID != "" {
		schedule, err := s.Schedules.GetByID(ctx, booking.ScheduleID)
		if err != nil {
			return nil, err
		}
		startsAt, err := schedule.StartsAt(time.Local)
		if err != nil {
			return nil, fmt.Errorf("bad schedule date on %s: %w", schedule.ID, err)
		}
		if time.Now().Before(startsAt) {
			return nil, &InvalidTransitionError{
				BookingID: bookingID,
				From:      string(booking.Status),
				Event:     "no-show before scheduled time",
			}
		}
	}

	booking, err = s.transition(ctx, bookingID, "no-show",
		[]models.BookingStatus{models.BookingStatusConfirmed},
		models.BookingStatusNoShow)
	if err != nil {
		return nil, err
	}

	if err := s.releaseSeats(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// transition attempts the conditional status flip from each permitted
// source state. The storage-level guard makes concurrent transitions
// resolve to exactly one winner.
func (s *DefaultLifecycleService) transition(ctx context.Context, bookingID, event string, from []models.BookingStatus, to models.BookingStatus) (*models.Booking, error) {
	for _, fromStatus := range from {
		moved, err := s.Bookings.TransitionStatus(ctx, bookingID, fromStatus, to)
		if err != nil {
			return nil, err
		}
		if moved {
			s.Logger.Info("booking transition applied",
				zap.String("bookingId", bookingID),
				zap.String("from", string(fromStatus)),
				zap.String("to", string(to)))
			return s.Bookings.GetByID(ctx, bookingID)
		}
	}

	// Guard failed; read the booking back to report its actual state.
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return nil, &InvalidTransitionError{
		BookingID: bookingID,
		From:      string(booking.Status),
		Event:     event,
	}
}

func (s *DefaultLifecycleService) releaseSeats(ctx context.Context, booking *models.Booking) error {
	if booking.ScheduleID == "" || booking.ParticipantCount == 0 {
		return nil
	}
	return s.Capacity.Release(ctx, booking.ScheduleID, booking.ParticipantCount)
}
