package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/srikanth-zersys/divedream-sub002/models"
	"github.com/srikanth-zersys/divedream-sub002/services/discount"
)

type fakeDiscountValidator struct {
	outcome *models.DiscountOutcome
	err     error
}

func (v *fakeDiscountValidator) Validate(_ context.Context, code, _ string, _ float64) (*models.DiscountOutcome, error) {
	if v.err != nil {
		return nil, v.err
	}
	if v.outcome != nil {
		return v.outcome, nil
	}
	return nil, &discount.RejectionError{Code: code, Reason: discount.ReasonNotFound}
}

type fakeOrchestrator struct {
	intent    *models.PaymentIntentRef
	createErr error
	calls     int
}

func (o *fakeOrchestrator) CreateIntent(_ context.Context, bookingID string) (*models.PaymentIntentRef, error) {
	o.calls++
	if o.createErr != nil {
		return nil, o.createErr
	}
	if o.intent != nil {
		return o.intent, nil
	}
	return &models.PaymentIntentRef{IntentID: "pi_" + bookingID, Amount: 0}, nil
}

func (o *fakeOrchestrator) ConfirmIntent(context.Context, string) (*models.Booking, error) {
	return nil, fmt.Errorf("not implemented")
}

func (o *fakeOrchestrator) RecordPayment(context.Context, string, float64, models.PaymentMethod) (*models.Booking, error) {
	return nil, fmt.Errorf("not implemented")
}

func (o *fakeOrchestrator) Refund(context.Context, string, string, float64) (*models.Booking, error) {
	return nil, fmt.Errorf("not implemented")
}

type checkoutFixture struct {
	svc       *DefaultCheckoutService
	schedules *fakeScheduleRepo
	bookings  *fakeBookingRepo
	payments  *fakeOrchestrator
	discounts *fakeDiscountValidator
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	schedules := newFakeScheduleRepo()
	bookings := newFakeBookingRepo(schedules)
	payments := &fakeOrchestrator{}
	discounts := &fakeDiscountValidator{}

	seedSchedule(schedules, "sch-1", 10, 0)
	products := &fakeProductRepo{products: map[string]*models.Product{
		"prod-1": {ID: "prod-1", Name: "Open Water Course", BasePrice: 50, TaxRate: 10, Currency: "USD", Active: true},
	}}

	svc := &DefaultCheckoutService{
		Schedules: schedules,
		Products:  products,
		Bookings:  bookings,
		Capacity:  newTestCapacityManager(schedules),
		Discounts: discounts,
		Payments:  payments,
		Logger:    zap.NewNop(),
	}
	return &checkoutFixture{svc: svc, schedules: schedules, bookings: bookings, payments: payments, discounts: discounts}
}

func validRequest() models.CheckoutRequest {
	return models.CheckoutRequest{
		ScheduleID:       "sch-1",
		ParticipantCount: 2,
		Contact:          models.Contact{Name: "Ana Reyes", Email: "ana@example.com"},
		Participants: []models.ParticipantInput{
			{Name: "Ana Reyes", Email: "ana@example.com", Primary: true},
			{Name: "Luis Reyes"},
		},
		PaymentMethod: models.PaymentMethodPayAtShop,
	}
}

func TestCheckoutCreatesPendingBooking(t *testing.T) {
	fx := newCheckoutFixture(t)

	resp, err := fx.svc.CreateBooking(context.Background(), validRequest())
	require.NoError(t, err)

	b := resp.Booking
	assert.Equal(t, models.BookingStatusPending, b.Status)
	assert.Equal(t, models.PaymentStatusUnpaid, b.PaymentStatus)
	assert.Equal(t, models.BookingSourcePublic, b.Source)
	assert.InDelta(t, 100.0, b.Subtotal, 0.001)
	assert.InDelta(t, 10.0, b.TaxAmount, 0.001)
	assert.InDelta(t, 110.0, b.TotalAmount, 0.001)
	assert.Equal(t, 2, fx.schedules.bookedCount("sch-1"))

	participants, err := fx.bookings.ListParticipants(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Len(t, participants, 2)
	assert.Equal(t, 0, fx.payments.calls, "pay_at_shop must not open a payment intent")
}

func TestCheckoutAdminBookingConfirmedImmediately(t *testing.T) {
	fx := newCheckoutFixture(t)
	req := validRequest()
	req.Source = models.BookingSourceAdmin

	resp, err := fx.svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, resp.Booking.Status)
}

func TestCheckoutOnlineAttachesPaymentIntent(t *testing.T) {
	fx := newCheckoutFixture(t)
	fx.payments.intent = &models.PaymentIntentRef{IntentID: "pi_123", ClientSecret: "secret", Amount: 110, Currency: "USD"}
	req := validRequest()
	req.PaymentMethod = models.PaymentMethodOnline

	resp, err := fx.svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp.Intent)
	assert.Equal(t, "pi_123", resp.Intent.IntentID)
}

func TestCheckoutSurvivesIntentFailure(t *testing.T) {
	fx := newCheckoutFixture(t)
	fx.payments.createErr = fmt.Errorf("provider down")
	req := validRequest()
	req.PaymentMethod = models.PaymentMethodOnline

	resp, err := fx.svc.CreateBooking(context.Background(), req)
	require.NoError(t, err, "booking stands even when the intent cannot be opened")
	assert.Nil(t, resp.Intent)
	assert.Equal(t, 2, fx.schedules.bookedCount("sch-1"))
}

func TestCheckoutAppliesDiscount(t *testing.T) {
	fx := newCheckoutFixture(t)
	fx.discounts.outcome = &models.DiscountOutcome{
		Code: "SAVE10", Type: models.DiscountTypePercentage, Value: 10, DiscountAmount: 10,
	}
	req := validRequest()
	req.DiscountCode = "save10"

	resp, err := fx.svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)

	b := resp.Booking
	assert.Equal(t, "SAVE10", b.DiscountCode)
	assert.InDelta(t, 10.0, b.DiscountAmount, 0.001)
	assert.InDelta(t, 9.0, b.TaxAmount, 0.001)
	assert.InDelta(t, 99.0, b.TotalAmount, 0.001)
}

func TestCheckoutRejectedDiscountReleasesHold(t *testing.T) {
	fx := newCheckoutFixture(t)
	fx.discounts.err = &discount.RejectionError{Code: "GONE", Reason: discount.ReasonExpired}
	req := validRequest()
	req.DiscountCode = "GONE"

	_, err := fx.svc.CreateBooking(context.Background(), req)
	var rejection *discount.RejectionError
	require.True(t, errors.As(err, &rejection))
	assert.Equal(t, discount.ReasonExpired, rejection.Reason)
	assert.Equal(t, 0, fx.schedules.bookedCount("sch-1"), "rejected checkout must release the hold")
}

func TestCheckoutExhaustedDiscountAtCommit(t *testing.T) {
	fx := newCheckoutFixture(t)
	fx.discounts.outcome = &models.DiscountOutcome{
		Code: "LAST1", Type: models.DiscountTypeFixed, Value: 5, DiscountAmount: 5,
	}
	fx.bookings.discounts["LAST1"] = &models.DiscountCode{
		Code: "LAST1", MaxRedemptions: 1, RedeemedCount: 1, Active: true,
	}
	req := validRequest()
	req.DiscountCode = "LAST1"

	_, err := fx.svc.CreateBooking(context.Background(), req)
	var rejection *discount.RejectionError
	require.True(t, errors.As(err, &rejection))
	assert.Equal(t, discount.ReasonLimitReached, rejection.Reason)
	assert.Equal(t, 0, fx.schedules.bookedCount("sch-1"))
}

func TestCheckoutValidation(t *testing.T) {
	fx := newCheckoutFixture(t)

	cases := []struct {
		name   string
		mutate func(*models.CheckoutRequest)
		field  string
	}{
		{"missing schedule", func(r *models.CheckoutRequest) { r.ScheduleID = "" }, "schedule_id"},
		{"zero participants", func(r *models.CheckoutRequest) { r.ParticipantCount = 0; r.Participants = nil }, "participant_count"},
		{"count mismatch", func(r *models.CheckoutRequest) { r.ParticipantCount = 3 }, "participants"},
		{"no primary", func(r *models.CheckoutRequest) { r.Participants[0].Primary = false }, "participants"},
		{"two primaries", func(r *models.CheckoutRequest) { r.Participants[1].Primary = true }, "participants"},
		{"bad payment method", func(r *models.CheckoutRequest) { r.PaymentMethod = "wire" }, "payment_method"},
		{"no identity", func(r *models.CheckoutRequest) { r.Contact = models.Contact{} }, "contact"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := fx.svc.CreateBooking(context.Background(), req)
			var valErr *ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.Equal(t, tc.field, valErr.Field)
		})
	}

	assert.Equal(t, 0, fx.schedules.bookedCount("sch-1"), "validation failures must not touch capacity")
}

func TestCheckoutFullScheduleReturnsCapacityError(t *testing.T) {
	fx := newCheckoutFixture(t)
	seedSchedule(fx.schedules, "sch-1", 2, 1)

	_, err := fx.svc.CreateBooking(context.Background(), validRequest())
	var capErr *CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, 1, capErr.Available)
	assert.Equal(t, 1, fx.schedules.bookedCount("sch-1"))
}
