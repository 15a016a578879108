// Package quote manages negotiated proposals and their conversion
// into concrete capacity-backed bookings.
package quote

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	quoteRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/quote"
	"github.com/srikanth-zersys/divedream-sub002/models"
	"github.com/srikanth-zersys/divedream-sub002/services/booking"
	"github.com/srikanth-zersys/divedream-sub002/services/notification"
	"github.com/srikanth-zersys/divedream-sub002/services/pricing"
)

// Service is the quote entry point for the back office and the
// customer portal.
type Service interface {
	Create(ctx context.Context, req models.CreateQuoteRequest) (*models.Quote, error)
	GetByID(ctx context.Context, quoteID string) (*models.Quote, error)
	Send(ctx context.Context, quoteID string) (*models.Quote, error)
	MarkViewed(ctx context.Context, quoteID string) (*models.Quote, error)
	Accept(ctx context.Context, quoteID string) (*models.Quote, error)
	Reject(ctx context.Context, quoteID string) (*models.Quote, error)

	// Convert turns an accepted quote into a confirmed booking,
	// reserving capacity on the quote's schedule. Re-invoking on a
	// converted quote fails instead of duplicating the booking.
	Convert(ctx context.Context, quoteID string) (*models.Booking, error)
}

// DefaultService implements Service.
type DefaultService struct {
	Quotes   quoteRepo.QuoteRepository
	Capacity booking.CapacityManager
	Notifier notification.Service
	Logger   *zap.Logger
}

func (s *DefaultService) Create(ctx context.Context, req models.CreateQuoteRequest) (*models.Quote, error) {
	if len(req.Items) == 0 {
		return nil, &booking.ValidationError{Field: "items", Message: "at least one line item is required"}
	}

	breakdown, err := quoteTotals(req.Items, req.DiscountPercent, req.TaxRate)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	q := &models.Quote{
		ID:               uuid.New().String(),
		MemberID:         req.MemberID,
		Contact:          req.Contact,
		Items:            req.Items,
		DiscountPercent:  pricing.ClampPercent(req.DiscountPercent),
		TaxRate:          pricing.ClampPercent(req.TaxRate),
		DepositPercent:   pricing.ClampPercent(req.DepositPercent),
		Currency:         req.Currency,
		Status:           models.QuoteStatusDraft,
		ScheduleID:       req.ScheduleID,
		ParticipantCount: req.ParticipantCount,
		Subtotal:         breakdown.Subtotal,
		DiscountAmount:   breakdown.DiscountAmount,
		TaxAmount:        breakdown.TaxAmount,
		TotalAmount:      breakdown.TotalAmount,
		ExpiresAt:        req.ExpiresAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.Quotes.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *DefaultService) GetByID(ctx context.Context, quoteID string) (*models.Quote, error) {
	return s.Quotes.GetByID(ctx, quoteID)
}

func (s *DefaultService) Send(ctx context.Context, quoteID string) (*models.Quote, error) {
	return s.transition(ctx, quoteID, "send",
		[]models.QuoteStatus{models.QuoteStatusDraft},
		models.QuoteStatusSent)
}

func (s *DefaultService) MarkViewed(ctx context.Context, quoteID string) (*models.Quote, error) {
	return s.transition(ctx, quoteID, "view",
		[]models.QuoteStatus{models.QuoteStatusSent},
		models.QuoteStatusViewed)
}

func (s *DefaultService) Accept(ctx context.Context, quoteID string) (*models.Quote, error) {
	q, err := s.Quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if s.expireIfPast(ctx, q) {
		return nil, &InvalidStatusError{QuoteID: quoteID, From: string(models.QuoteStatusExpired), Event: "accept"}
	}
	return s.transition(ctx, quoteID, "accept",
		[]models.QuoteStatus{models.QuoteStatusSent, models.QuoteStatusViewed},
		models.QuoteStatusAccepted)
}

func (s *DefaultService) Reject(ctx context.Context, quoteID string) (*models.Quote, error) {
	return s.transition(ctx, quoteID, "reject",
		[]models.QuoteStatus{models.QuoteStatusSent, models.QuoteStatusViewed},
		models.QuoteStatusRejected)
}

// Convert reprices the quote's own line items through the shared
// calculator, so the resulting booking total provably equals the quote
// total. Quote-level discounts are already embedded; promotional
// discount codes do not apply to quotes.
func (s *DefaultService) Convert(ctx context.Context, quoteID string) (*models.Booking, error) {
	q, err := s.Quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if q.Status == models.QuoteStatusConverted {
		return nil, &AlreadyConvertedError{QuoteID: q.ID, BookingID: q.BookingID}
	}
	if s.expireIfPast(ctx, q) {
		return nil, &InvalidStatusError{QuoteID: q.ID, From: string(models.QuoteStatusExpired), Event: "convert"}
	}
	if q.Status != models.QuoteStatusAccepted {
		return nil, &InvalidStatusError{QuoteID: q.ID, From: string(q.Status), Event: "convert"}
	}

	breakdown, err := quoteTotals(q.Items, q.DiscountPercent, q.TaxRate)
	if err != nil {
		return nil, err
	}

	// The quote may be converted long after pricing was fixed; the
	// schedule could have filled in the meantime.
	var hold *models.CapacityHold
	if q.ScheduleID != "" && q.ParticipantCount > 0 {
		hold, err = s.Capacity.Reserve(ctx, q.ScheduleID, q.ParticipantCount)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	b := &models.Booking{
		ID:               uuid.New().String(),
		ScheduleID:       q.ScheduleID,
		QuoteID:          q.ID,
		MemberID:         q.MemberID,
		Contact:          q.Contact,
		Source:           models.BookingSourceQuote,
		Status:           models.BookingStatusConfirmed,
		PaymentStatus:    models.PaymentStatusUnpaid,
		ParticipantCount: q.ParticipantCount,
		Subtotal:         breakdown.Subtotal,
		DiscountAmount:   breakdown.DiscountAmount,
		TaxAmount:        breakdown.TaxAmount,
		TotalAmount:      breakdown.TotalAmount,
		Currency:         q.Currency,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	holdID := ""
	if hold != nil {
		holdID = hold.ID
	}
	if err := s.Quotes.ConvertTransactionally(ctx, q, b, holdID); err != nil {
		if hold != nil {
			if relErr := s.Capacity.ReleaseHold(ctx, hold); relErr != nil {
				s.Logger.Error("failed to release hold after quote conversion failure",
					zap.String("holdId", hold.ID), zap.Error(relErr))
			}
		}

		var notAccepted *quoteRepo.ErrQuoteNotAccepted
		if errors.As(err, &notAccepted) {
			// Lost the flip race: someone else converted first.
			fresh, lookupErr := s.Quotes.GetByID(ctx, quoteID)
			if lookupErr == nil && fresh.Status == models.QuoteStatusConverted {
				return nil, &AlreadyConvertedError{QuoteID: quoteID, BookingID: fresh.BookingID}
			}
			return nil, &InvalidStatusError{QuoteID: quoteID, From: string(q.Status), Event: "convert"}
		}
		return nil, err
	}

	if s.Notifier != nil {
		s.Notifier.BookingConfirmed(ctx, b)
	}
	return b, nil
}

// expireIfPast flips an out-of-date quote to expired, the same lazy
// way the sweep reclaims stale holds. Terminal quotes are left alone.
func (s *DefaultService) expireIfPast(ctx context.Context, q *models.Quote) bool {
	if q.ExpiresAt == nil || time.Now().Before(*q.ExpiresAt) {
		return false
	}
	switch q.Status {
	case models.QuoteStatusDraft, models.QuoteStatusSent, models.QuoteStatusViewed, models.QuoteStatusAccepted:
	default:
		return false
	}

	if _, err := s.Quotes.TransitionStatus(ctx, q.ID, q.Status, models.QuoteStatusExpired); err != nil {
		s.Logger.Error("failed to expire quote",
			zap.String("quoteId", q.ID), zap.Error(err))
	}
	return true
}

func (s *DefaultService) transition(ctx context.Context, quoteID, event string, from []models.QuoteStatus, to models.QuoteStatus) (*models.Quote, error) {
	for _, fromStatus := range from {
		moved, err := s.Quotes.TransitionStatus(ctx, quoteID, fromStatus, to)
		if err != nil {
			return nil, err
		}
		if moved {
			return s.Quotes.GetByID(ctx, quoteID)
		}
	}

	q, err := s.Quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	return nil, &InvalidStatusError{QuoteID: quoteID, From: string(q.Status), Event: event}
}

func quoteTotals(items []models.QuoteItem, discountPercent, taxRate float64) (pricing.Breakdown, error) {
	lineItems := make([]pricing.LineItem, 0, len(items))
	for _, item := range items {
		lineItems = append(lineItems, pricing.LineItem{
			Name:            item.Name,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
		})
	}
	return pricing.ComputeTotals(lineItems, discountPercent, taxRate)
}
