package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	bookingRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/booking"
	"github.com/srikanth-zersys/divedream-sub002/models"
)

// fakeScheduleRepo mirrors the conditional-update semantics of the
// Mongo implementation with an in-memory map and a mutex.
type fakeScheduleRepo struct {
	mu        sync.Mutex
	schedules map[string]*models.Schedule
	holds     map[string]*models.CapacityHold
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{
		schedules: make(map[string]*models.Schedule),
		holds:     make(map[string]*models.CapacityHold),
	}
}

func (r *fakeScheduleRepo) GetByID(_ context.Context, scheduleID string) (*models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[scheduleID]
	if !ok {
		return nil, fmt.Errorf("schedule %s not found", scheduleID)
	}
	copied := *s
	return &copied, nil
}

func (r *fakeScheduleRepo) Create(_ context.Context, schedule *models.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *schedule
	r.schedules[schedule.ID] = &copied
	return nil
}

func (r *fakeScheduleRepo) ReserveSeats(_ context.Context, scheduleID string, units int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[scheduleID]
	if !ok {
		return false, fmt.Errorf("schedule %s not found", scheduleID)
	}
	if s.BookedCount+units > s.MaxParticipants {
		return false, nil
	}
	s.BookedCount += units
	return true, nil
}

func (r *fakeScheduleRepo) ReleaseSeats(_ context.Context, scheduleID string, units int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[scheduleID]
	if !ok {
		return false, fmt.Errorf("schedule %s not found", scheduleID)
	}
	if s.BookedCount < units {
		s.BookedCount = 0
		return true, nil
	}
	s.BookedCount -= units
	return false, nil
}

func (r *fakeScheduleRepo) CreateHold(_ context.Context, hold *models.CapacityHold) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *hold
	r.holds[hold.ID] = &copied
	return nil
}

func (r *fakeScheduleRepo) MarkHoldReleased(_ context.Context, holdID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.holds[holdID]
	if !ok || h.Status != models.HoldStatusPending {
		return false, nil
	}
	h.Status = models.HoldStatusReleased
	return true, nil
}

func (r *fakeScheduleRepo) FindExpiredPendingHolds(_ context.Context, limit int) ([]models.CapacityHold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var expired []models.CapacityHold
	now := time.Now()
	for _, h := range r.holds {
		if h.Status == models.HoldStatusPending && h.ExpiresAt.Before(now) {
			expired = append(expired, *h)
			if limit > 0 && len(expired) >= limit {
				break
			}
		}
	}
	return expired, nil
}

func (r *fakeScheduleRepo) commitHold(holdID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.holds[holdID]
	if !ok || h.Status != models.HoldStatusPending {
		return false
	}
	h.Status = models.HoldStatusCommitted
	return true
}

func (r *fakeScheduleRepo) bookedCount(scheduleID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.schedules[scheduleID].BookedCount
}

// fakeBookingRepo is an in-memory BookingRepository. CreateWithReservation
// reproduces the transactional guards: the hold must still be pending
// and the discount code must have redemptions left.
type fakeBookingRepo struct {
	mu           sync.Mutex
	bookings     map[string]*models.Booking
	participants map[string][]models.Participant
	payments     map[string]*models.Payment
	schedules    *fakeScheduleRepo
	discounts    map[string]*models.DiscountCode

	createErr error
}

func newFakeBookingRepo(schedules *fakeScheduleRepo) *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings:     make(map[string]*models.Booking),
		participants: make(map[string][]models.Participant),
		payments:     make(map[string]*models.Payment),
		schedules:    schedules,
		discounts:    make(map[string]*models.DiscountCode),
	}
}

func (r *fakeBookingRepo) CreateWithReservation(_ context.Context, params bookingRepo.CreateParams) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if params.DiscountCode != "" {
		dc, ok := r.discounts[params.DiscountCode]
		if ok && dc.MaxRedemptions > 0 && dc.RedeemedCount >= dc.MaxRedemptions {
			return &bookingRepo.ErrDiscountExhausted{Code: params.DiscountCode}
		}
		if ok {
			dc.RedeemedCount++
		}
	}

	if params.HoldID != "" && r.schedules != nil {
		if !r.schedules.commitHold(params.HoldID) {
			return &bookingRepo.ErrHoldNotPending{HoldID: params.HoldID}
		}
	}

	copied := *params.Booking
	r.bookings[copied.ID] = &copied
	r.participants[copied.ID] = append([]models.Participant(nil), params.Participants...)
	return nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, bookingID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookingRepo) ListParticipants(_ context.Context, bookingID string) ([]models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Participant(nil), r.participants[bookingID]...), nil
}

func (r *fakeBookingRepo) TransitionStatus(_ context.Context, bookingID string, from, to models.BookingStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeBookingRepo) CreatePayment(_ context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *payment
	r.payments[payment.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) UpdatePayment(_ context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *payment
	r.payments[payment.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) GetPaymentByID(_ context.Context, paymentID string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[paymentID]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *fakeBookingRepo) GetPaymentByTransactionID(_ context.Context, transactionID string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.TransactionID == transactionID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) ListPayments(_ context.Context, bookingID string) ([]models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Payment
	for _, p := range r.payments {
		if p.BookingID == bookingID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) UpdatePaymentTotals(_ context.Context, bookingID string, amountPaid float64, status models.PaymentStatus, seenAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return false, fmt.Errorf("booking %s not found", bookingID)
	}
	if !b.UpdatedAt.Equal(seenAt) {
		return false, nil
	}
	b.AmountPaid = amountPaid
	b.PaymentStatus = status
	b.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeBookingRepo) put(b *models.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *b
	r.bookings[b.ID] = &copied
}

// fakeProductRepo serves products from a map.
type fakeProductRepo struct {
	products map[string]*models.Product
}

func (r *fakeProductRepo) GetByID(_ context.Context, productID string) (*models.Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, fmt.Errorf("product %s not found", productID)
	}
	copied := *p
	return &copied, nil
}
