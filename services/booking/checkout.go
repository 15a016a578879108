package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/booking"
	memberRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/member"
	productRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/product"
	scheduleRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/schedule"
	"github.com/srikanth-zersys/divedream-sub002/models"
	"github.com/srikanth-zersys/divedream-sub002/services/discount"
	"github.com/srikanth-zersys/divedream-sub002/services/notification"
	"github.com/srikanth-zersys/divedream-sub002/services/payment"
	"github.com/srikanth-zersys/divedream-sub002/services/pricing"
)

// CheckoutService creates bookings from every entry point: public
// storefront, back office, and (indirectly) quote conversion, which
// shares the reserve/price primitives.
type CheckoutService interface {
	CreateBooking(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error)
}

// DefaultCheckoutService implements CheckoutService.
type DefaultCheckoutService struct {
	Schedules scheduleRepo.ScheduleRepository
	Products  productRepo.ProductRepository
	Members   memberRepo.MemberRepository
	Bookings  bookingRepo.BookingRepository
	Capacity  CapacityManager
	Discounts discount.Validator
	Payments  payment.Orchestrator
	Notifier  notification.Service
	Logger    *zap.Logger
}

// CreateBooking runs the checkout flow: reserve capacity, validate the
// discount code, price the booking, persist it transactionally, then
// open a payment intent for online payment. Any failure after the
// reservation releases the hold so seats never leak.
func (s *DefaultCheckoutService) CreateBooking(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	if err := validateCheckoutRequest(req); err != nil {
		return nil, err
	}

	schedule, err := s.Schedules.GetByID(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	product, err := s.Products.GetByID(ctx, schedule.ProductID)
	if err != nil {
		return nil, err
	}

	// A member booking inherits the member's contact details unless
	// the request supplies its own.
	if req.MemberID != "" && req.Contact.Name == "" && s.Members != nil {
		member, err := s.Members.GetByID(ctx, req.MemberID)
		if err != nil {
			return nil, err
		}
		req.Contact = models.Contact{Name: member.Name, Email: member.Email, Phone: member.Phone}
	}

	unitPrice := product.BasePrice
	if schedule.PriceOverride != nil {
		unitPrice = *schedule.PriceOverride
	}

	hold, err := s.Capacity.Reserve(ctx, schedule.ID, req.ParticipantCount)
	if err != nil {
		return nil, err
	}

	booking, err := s.buildBooking(ctx, req, schedule, product, unitPrice)
	if err != nil {
		s.compensate(ctx, hold)
		return nil, err
	}

	participants := buildParticipants(booking.ID, req.Participants)

	createParams := bookingRepo.CreateParams{
		Booking:      booking,
		Participants: participants,
		HoldID:       hold.ID,
		DiscountCode: booking.DiscountCode,
	}
	if err := s.Bookings.CreateWithReservation(ctx, createParams); err != nil {
		s.compensate(ctx, hold)

		var exhausted *bookingRepo.ErrDiscountExhausted
		if errors.As(err, &exhausted) {
			return nil, &discount.RejectionError{Code: exhausted.Code, Reason: discount.ReasonLimitReached}
		}
		return nil, err
	}

	response := &models.CheckoutResponse{Booking: booking}

	if req.PaymentMethod == models.PaymentMethodOnline {
		intent, err := s.Payments.CreateIntent(ctx, booking.ID)
		if err != nil {
			// The booking stands; the client retries payment through
			// the payment-intents endpoint.
			s.Logger.Warn("payment intent creation failed after booking persisted",
				zap.String("bookingId", booking.ID), zap.Error(err))
		} else {
			response.Intent = intent
		}
	}

	if booking.Status == models.BookingStatusConfirmed && s.Notifier != nil {
		s.Notifier.BookingConfirmed(ctx, booking)
	}

	return response, nil
}

func (s *DefaultCheckoutService) buildBooking(ctx context.Context, req models.CheckoutRequest, schedule *models.Schedule, product *models.Product, unitPrice float64) (*models.Booking, error) {
	items := []pricing.LineItem{{
		Name:      product.Name,
		Quantity:  req.ParticipantCount,
		UnitPrice: unitPrice,
	}}

	var breakdown pricing.Breakdown
	var appliedCode string
	if req.DiscountCode != "" {
		subtotal, err := pricing.Subtotal(items)
		if err != nil {
			return nil, err
		}
		outcome, err := s.Discounts.Validate(ctx, req.DiscountCode, schedule.ID, subtotal)
		if err != nil {
			return nil, err
		}
		appliedCode = outcome.Code
		breakdown, err = pricing.ComputeTotalsWithDiscountAmount(items, outcome.DiscountAmount, product.TaxRate)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		breakdown, err = pricing.ComputeTotals(items, 0, product.TaxRate)
		if err != nil {
			return nil, err
		}
	}

	source := req.Source
	if source == "" {
		source = models.BookingSourcePublic
	}
	status := models.BookingStatusPending
	if source == models.BookingSourceAdmin {
		// Staff-created bookings are vetted on the spot.
		status = models.BookingStatusConfirmed
	}

	currency := schedule.Currency
	if currency == "" {
		currency = product.Currency
	}

	now := time.Now()
	return &models.Booking{
		ID:               uuid.New().String(),
		ScheduleID:       schedule.ID,
		MemberID:         req.MemberID,
		Contact:          req.Contact,
		Source:           source,
		Status:           status,
		PaymentStatus:    models.PaymentStatusUnpaid,
		ParticipantCount: req.ParticipantCount,
		Subtotal:         breakdown.Subtotal,
		DiscountAmount:   breakdown.DiscountAmount,
		DiscountCode:     appliedCode,
		TaxAmount:        breakdown.TaxAmount,
		TotalAmount:      breakdown.TotalAmount,
		AmountPaid:       0,
		Currency:         currency,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// compensate releases a provisional hold after a downstream failure.
func (s *DefaultCheckoutService) compensate(ctx context.Context, hold *models.CapacityHold) {
	if err := s.Capacity.ReleaseHold(ctx, hold); err != nil {
		s.Logger.Error("failed to release capacity hold after checkout failure",
			zap.String("holdId", hold.ID), zap.Error(err))
	}
}

func validateCheckoutRequest(req models.CheckoutRequest) error {
	if req.ScheduleID == "" {
		return &ValidationError{Field: "schedule_id", Message: "is required"}
	}
	if req.ParticipantCount <= 0 {
		return &ValidationError{Field: "participant_count", Message: "must be positive"}
	}
	if len(req.Participants) != req.ParticipantCount {
		return &ValidationError{Field: "participants", Message: "must match participant_count"}
	}
	primaries := 0
	for _, p := range req.Participants {
		if p.Name == "" {
			return &ValidationError{Field: "participants", Message: "every participant needs a name"}
		}
		if p.Primary {
			primaries++
		}
	}
	if primaries != 1 {
		return &ValidationError{Field: "participants", Message: "exactly one participant must be primary"}
	}
	switch req.PaymentMethod {
	case models.PaymentMethodOnline, models.PaymentMethodPayAtShop:
	default:
		return &ValidationError{Field: "payment_method", Message: "must be online or pay_at_shop"}
	}
	if req.MemberID == "" && req.Contact.Name == "" {
		return &ValidationError{Field: "contact", Message: "a member id or contact is required"}
	}
	return nil
}

func buildParticipants(bookingID string, inputs []models.ParticipantInput) []models.Participant {
	now := time.Now()
	participants := make([]models.Participant, 0, len(inputs))
	for _, in := range inputs {
		participants = append(participants, models.Participant{
			ID:        uuid.New().String(),
			BookingID: bookingID,
			Name:      in.Name,
			Email:     in.Email,
			Primary:   in.Primary,
			CreatedAt: now,
		})
	}
	return participants
}
