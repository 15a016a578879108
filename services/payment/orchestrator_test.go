package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/booking"
	"github.com/srikanth-zersys/divedream-sub002/models"
)

// memBookingRepo is the subset of BookingRepository the orchestrator
// touches, backed by maps.
type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
	payments map[string]*models.Payment

	// staleTotalsOnce makes the next UpdatePaymentTotals lose its
	// revision guard, as if a concurrent payment event wrote first.
	staleTotalsOnce bool
	totalsAttempts  int
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{
		bookings: make(map[string]*models.Booking),
		payments: make(map[string]*models.Payment),
	}
}

func (r *memBookingRepo) CreateWithReservation(context.Context, bookingRepo.CreateParams) error {
	return fmt.Errorf("not used")
}

func (r *memBookingRepo) GetByID(_ context.Context, bookingID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}
	copied := *b
	return &copied, nil
}

func (r *memBookingRepo) ListParticipants(context.Context, string) ([]models.Participant, error) {
	return nil, nil
}

func (r *memBookingRepo) TransitionStatus(_ context.Context, bookingID string, from, to models.BookingStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	return true, nil
}

func (r *memBookingRepo) CreatePayment(_ context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *payment
	r.payments[payment.ID] = &copied
	return nil
}

func (r *memBookingRepo) UpdatePayment(_ context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *payment
	r.payments[payment.ID] = &copied
	return nil
}

func (r *memBookingRepo) GetPaymentByID(_ context.Context, paymentID string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[paymentID]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *memBookingRepo) GetPaymentByTransactionID(_ context.Context, transactionID string) (*models.Payment, error) {
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

func (r *memBookingRepo) ListPayments(_ context.Context, bookingID string) ([]models.Payment, error) {
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

func (r *memBookingRepo) UpdatePaymentTotals(_ context.Context, bookingID string, amountPaid float64, status models.PaymentStatus, seenAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.totalsAttempts++
	b, ok := r.bookings[bookingID]
	if !ok {
		return false, fmt.Errorf("booking %s not found", bookingID)
	}
	if r.staleTotalsOnce {
		r.staleTotalsOnce = false
		b.UpdatedAt = time.Now()
		return false, nil
	}
	if !b.UpdatedAt.Equal(seenAt) {
		return false, nil
	}
	b.AmountPaid = amountPaid
	b.PaymentStatus = status
	b.UpdatedAt = time.Now()
	return true, nil
}

func (r *memBookingRepo) completedPayments(bookingID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.payments {
		if p.BookingID == bookingID && p.State == models.PaymentStateCompleted {
			n++
		}
	}
	return n
}

// fakeProvider records calls and serves canned intent statuses.
type fakeProvider struct {
	mu            sync.Mutex
	intents       map[string]*Intent
	createCalls   int
	cancelCalls   int
	refundCalls   int
	lastRefundKey string
	refundErr     error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{intents: make(map[string]*Intent)}
}

func (p *fakeProvider) CreateIntent(_ context.Context, _ int64, _ string, idempotencyKey string, _ map[string]string) (*Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.createCalls++
	intent := &Intent{ID: "pi_" + idempotencyKey, ClientSecret: "cs_test", Status: IntentStatusPending}
	p.intents[intent.ID] = intent
	return intent, nil
}

func (p *fakeProvider) GetIntent(_ context.Context, intentID string) (*Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	intent, ok := p.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("intent %s not found", intentID)
	}
	return intent, nil
}

func (p *fakeProvider) CancelIntent(_ context.Context, intentID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	intent, ok := p.intents[intentID]
	if !ok {
		return fmt.Errorf("intent %s not found", intentID)
	}
	intent.Status = IntentStatusCanceled
	p.cancelCalls++
	return nil
}

func (p *fakeProvider) Refund(_ context.Context, intentID string, _ int64, idempotencyKey string) (*RefundResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refundErr != nil {
		return nil, p.refundErr
	}
	p.refundCalls++
	p.lastRefundKey = idempotencyKey
	return &RefundResult{ID: "re_" + intentID, Status: "succeeded"}, nil
}

func (p *fakeProvider) setStatus(intentID string, status IntentStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.intents[intentID].Status = status
}

func newTestOrchestrator() (*DefaultOrchestrator, *memBookingRepo, *fakeProvider) {
	repo := newMemBookingRepo()
	provider := newFakeProvider()
	o := NewOrchestrator(repo, provider, nil, 5*time.Second, zap.NewNop())
	return o, repo, provider
}

func seedBooking(repo *memBookingRepo, id string, total, paid float64) {
	repo.bookings[id] = &models.Booking{
		ID:            id,
		Status:        models.BookingStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
		TotalAmount:   total,
		AmountPaid:    paid,
		Currency:      "USD",
	}
}

func TestCreateIntentForOutstandingBalance(t *testing.T) {
	o, repo, _ := newTestOrchestrator()
	seedBooking(repo, "bk-1", 200, 50)

	ref, err := o.CreateIntent(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.InDelta(t, 150.0, ref.Amount, 0.001)
	assert.Equal(t, "USD", ref.Currency)
	assert.NotEmpty(t, ref.ClientSecret)
}

func TestCreateIntentRetryReturnsSameIntent(t *testing.T) {
	o, repo, provider := newTestOrchestrator()
	seedBooking(repo, "bk-1", 200, 0)

	first, err := o.CreateIntent(context.Background(), "bk-1")
	require.NoError(t, err)
	second, err := o.CreateIntent(context.Background(), "bk-1")
	require.NoError(t, err)

	assert.Equal(t, first.IntentID, second.IntentID)
	assert.Equal(t, first.PaymentID, second.PaymentID)
	assert.Equal(t, 1, provider.createCalls, "the retried request must not open a second intent")
}

func TestCreateIntentReplacesStaleAmountAfterStaffPayment(t *testing.T) {
	o, repo, provider := newTestOrchestrator()
	seedBooking(repo, "bk-1", 200, 0)

	first, err := o.CreateIntent(context.Background(), "bk-1")
	require.NoError(t, err)

	_, err = o.RecordPayment(context.Background(), "bk-1", 120, models.PaymentMethodCash)
	require.NoError(t, err)

	second, err := o.CreateIntent(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.IntentID, second.IntentID)
	assert.InDelta(t, 80.0, second.Amount, 0.001, "the new intent must carry the current balance")
	assert.Equal(t, 1, provider.cancelCalls, "the stale intent must be canceled at the provider")

	stale, err := repo.GetPaymentByID(context.Background(), first.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStateFailed, stale.State)

	provider.setStatus(second.IntentID, IntentStatusSucceeded)
	b, err := o.ConfirmIntent(context.Background(), second.IntentID)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, b.AmountPaid, 0.001)
	assert.LessOrEqual(t, b.AmountPaid, b.TotalAmount)
	assert.Equal(t, models.PaymentStatusPaid, b.PaymentStatus)
}

func TestConfirmIntentRejectsAmountOverOutstanding(t *testing.T) {
	o, repo, provider := newTestOrchestrator()
	seedBooking(repo, "bk-1", 200, 0)

	ref, err := o.CreateIntent(context.Background(), "bk-1")
	require.NoError(t, err)

	_, err = o.RecordPayment(context.Background(), "bk-1", 120, models.PaymentMethodCash)
	require.NoError(t, err)

	provider.setStatus(ref.IntentID, IntentStatusSucceeded)
	_, err = o.ConfirmIntent(context.Background(), ref.IntentID)
	var failed *FailedError
	require.True(t, errors.As(err, &failed))

	b, err := repo.GetByID(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.InDelta(t, 120.0, b.AmountPaid, 0.001, "a stale intent must never push the ledger past the total")
	assert.Equal(t, models.PaymentStatusPartial, b.PaymentStatus)

	p, err := repo.GetPaymentByID(context.Background(), ref.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStateFailed, p.State)
}

func TestReconcileRetriesAfterConcurrentWrite(t *testing.T) {
	o, repo, _ := newTestOrchestrator()
	seedBooking(repo, "bk-1", 200, 0)

	repo.staleTotalsOnce = true
	b, err := o.RecordPayment(context.Background(), "bk-1", 120, models.PaymentMethodCash)
	require.NoError(t, err)
	assert.InDelta(t, 120.0, b.AmountPaid, 0.001)
	assert.Equal(t, 2, repo.totalsAttempts, "a lost revision guard forces a recompute")
}

func TestCreateIntentRejectsSettledBooking(t *testing.T) {
	o, repo, _ := newTestOrchestrator()
	seedBooking(repo, "bk-1", 200, 200)

	_, err := o.CreateIntent(context.Background(), "bk-1")
	require.Error(t, err)
}

func TestConfirmIntentCompletesPayment(t *testing.T) {
	o, repo, provider := newTestOrchestrator()
	seedBooking(repo, "bk-1", 200, 0)

	ref, err := o.CreateIntent(context.Background(), "bk-1")
	require.NoError(t, err)
	provider.setStatus(ref.IntentID, IntentStatusSucceeded)

	b, err := o.ConfirmIntent(context.Background(), ref.IntentID)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, b.AmountPaid, 0.001)
	assert.Equal(t, models.PaymentStatusPaid, b.PaymentStatus)
}

func TestConfirmIntentReplayIsNoop(t *testing.T) {
	o, repo, provider := newTestOrchestrator()
	seedBooking(repo, "bk-1", 200, 0)

	ref, err := o.CreateIntent(context.Background(), "bk-1")
	require.NoError(t, err)
	provider.setStatus(ref.IntentID, IntentStatusSucceeded)

	_, err = o.ConfirmIntent(context.Background(), ref.IntentID)
	require.NoError(t, err)
	b, err := o.ConfirmIntent(context.Background(), ref.IntentID)
	require.NoError(t, err)

	assert.InDelta(t, 200.0, b.AmountPaid, 0.001, "replay must not double-count the payment")
	assert.Equal(t, 1, repo.completedPayments("bk-1"))
}

func TestConfirmIntentCanceledMarksFailure(t *testing.T) {
	o, repo, provider := newTestOrchestrator()
	seedBooking(repo, "bk-1", 200, 0)

	ref, err := o.CreateIntent(context.Background(), "bk-1")
	require.NoError(t, err)
	provider.setStatus(ref.IntentID, IntentStatusCanceled)

	_, err = o.ConfirmIntent(context.Background(), ref.IntentID)
	var failed *FailedError
	require.True(t, errors.As(err, &failed))

	b, err := repo.GetByID(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, b.AmountPaid, 0.001)
	assert.Equal(t, models.PaymentStatusUnpaid, b.PaymentStatus)
}

func TestConfirmIntentStillPendingLeavesRecordRetryable(t *testing.T) {
	o, repo, _ := newTestOrchestrator()
	seedBooking(repo, "bk-1", 200, 0)

	ref, err := o.CreateIntent(context.Background(), "bk-1")
	require.NoError(t, err)

	_, err = o.ConfirmIntent(context.Background(), ref.IntentID)
	var failed *FailedError
	require.True(t, errors.As(err, &failed))

	p, err := repo.GetPaymentByID(context.Background(), ref.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatePending, p.State)
}

func TestRecordPaymentPartialThenPaid(t *testing.T) {
	o, repo, _ := newTestOrchestrator()
	seedBooking(repo, "bk-1", 200, 0)

	b, err := o.RecordPayment(context.Background(), "bk-1", 120, models.PaymentMethodCash)
	require.NoError(t, err)
	assert.InDelta(t, 120.0, b.AmountPaid, 0.001)
	assert.Equal(t, models.PaymentStatusPartial, b.PaymentStatus)

	b, err = o.RecordPayment(context.Background(), "bk-1", 80, models.PaymentMethodCard)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, b.AmountPaid, 0.001)
	assert.Equal(t, models.PaymentStatusPaid, b.PaymentStatus)
}

func TestRecordPaymentCannotExceedOutstanding(t *testing.T) {
	o, repo, _ := newTestOrchestrator()
	seedBooking(repo, "bk-1", 200, 150)

	_, err := o.RecordPayment(context.Background(), "bk-1", 60, models.PaymentMethodCash)
	require.Error(t, err)
}

func TestRefundPartialAndFull(t *testing.T) {
	o, repo, provider := newTestOrchestrator()
	seedBooking(repo, "bk-1", 200, 0)

	_, err := o.RecordPayment(context.Background(), "bk-1", 200, models.PaymentMethodCash)
	require.NoError(t, err)

	var paymentID string
	for id := range repo.payments {
		paymentID = id
	}

	b, err := o.Refund(context.Background(), "bk-1", paymentID, 50)
	require.NoError(t, err)
	assert.InDelta(t, 150.0, b.AmountPaid, 0.001)
	assert.Equal(t, models.PaymentStatusPartial, b.PaymentStatus)

	b, err = o.Refund(context.Background(), "bk-1", paymentID, 150)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, b.AmountPaid, 0.001)
	assert.Equal(t, models.PaymentStatusRefunded, b.PaymentStatus)

	p, err := repo.GetPaymentByID(context.Background(), paymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStateRefunded, p.State)
	assert.Equal(t, 0, provider.refundCalls, "cash refunds never reach the provider")
}

func TestRefundExceedsAvailable(t *testing.T) {
	o, repo, _ := newTestOrchestrator()
	seedBooking(repo, "bk-1", 200, 0)

	_, err := o.RecordPayment(context.Background(), "bk-1", 100, models.PaymentMethodCash)
	require.NoError(t, err)

	var paymentID string
	for id := range repo.payments {
		paymentID = id
	}

	_, err = o.Refund(context.Background(), "bk-1", paymentID, 150)
	var exceeds *RefundExceedsAvailableError
	require.True(t, errors.As(err, &exceeds))
	assert.InDelta(t, 150.0, exceeds.Requested, 0.001)
	assert.InDelta(t, 100.0, exceeds.Available, 0.001)
}

func TestRefundOnlinePaymentCallsProvider(t *testing.T) {
	o, repo, provider := newTestOrchestrator()
	seedBooking(repo, "bk-1", 200, 0)

	ref, err := o.CreateIntent(context.Background(), "bk-1")
	require.NoError(t, err)
	provider.setStatus(ref.IntentID, IntentStatusSucceeded)
	_, err = o.ConfirmIntent(context.Background(), ref.IntentID)
	require.NoError(t, err)

	_, err = o.Refund(context.Background(), "bk-1", ref.PaymentID, 75)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.refundCalls)
	assert.Equal(t, "bk-1:refund:"+ref.PaymentID, provider.lastRefundKey)
}

func TestRefundProviderFailureLeavesLedgerUntouched(t *testing.T) {
	o, repo, provider := newTestOrchestrator()
	seedBooking(repo, "bk-1", 200, 0)

	ref, err := o.CreateIntent(context.Background(), "bk-1")
	require.NoError(t, err)
	provider.setStatus(ref.IntentID, IntentStatusSucceeded)
	_, err = o.ConfirmIntent(context.Background(), ref.IntentID)
	require.NoError(t, err)

	provider.refundErr = fmt.Errorf("provider down")
	_, err = o.Refund(context.Background(), "bk-1", ref.PaymentID, 75)
	require.Error(t, err)

	b, err := repo.GetByID(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.InDelta(t, 200.0, b.AmountPaid, 0.001)
}
