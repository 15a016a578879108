package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	productRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/product"
	scheduleRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/schedule"
	"github.com/srikanth-zersys/divedream-sub002/models"
)

// AvailabilityService serves the storefront's view of a schedule:
// remaining seats and the effective per-seat price. Reads go through a
// short-lived cache; the capacity counters themselves are only ever
// mutated through the conditional updates.
type AvailabilityService interface {
	GetScheduleAvailability(ctx context.Context, scheduleID string) (*models.ScheduleAvailability, error)
}

// DefaultAvailabilityService implements AvailabilityService.
type DefaultAvailabilityService struct {
	Schedules   scheduleRepo.ScheduleRepository
	Products    productRepo.ProductRepository
	CacheClient *redis.Client
	CacheTTL    time.Duration
	Logger      *zap.Logger
}

func (s *DefaultAvailabilityService) GetScheduleAvailability(ctx context.Context, scheduleID string) (*models.ScheduleAvailability, error) {
	cacheKey := "availability:" + scheduleID

	if s.CacheClient != nil {
		if cached, err := s.CacheClient.Get(ctx, cacheKey).Result(); err == nil {
			var availability models.ScheduleAvailability
			if err := json.Unmarshal([]byte(cached), &availability); err == nil {
				return &availability, nil
			}
		}
	}

	schedule, err := s.Schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	product, err := s.Products.GetByID(ctx, schedule.ProductID)
	if err != nil {
		return nil, err
	}

	price := product.BasePrice
	if schedule.PriceOverride != nil {
		price = *schedule.PriceOverride
	}
	currency := schedule.Currency
	if currency == "" {
		currency = product.Currency
	}

	availability := &models.ScheduleAvailability{
		ScheduleID:     schedule.ID,
		ProductID:      schedule.ProductID,
		Date:           schedule.Date,
		StartMinute:    schedule.StartMinute,
		EndMinute:      schedule.EndMinute,
		SeatsRemaining: schedule.Available(),
		PricePerSeat:   price,
		Currency:       currency,
	}
	if schedule.MaxParticipants > 0 {
		remainingShare := float64(availability.SeatsRemaining) / float64(schedule.MaxParticipants)
		if remainingShare < 0.3 {
			availability.Message = fmt.Sprintf("Only %d seats remaining", availability.SeatsRemaining)
		}
	}

	if s.CacheClient != nil {
		if data, err := json.Marshal(availability); err == nil {
			if err := s.CacheClient.Set(ctx, cacheKey, data, s.CacheTTL).Err(); err != nil {
				s.Logger.Warn("failed to cache availability", zap.String("scheduleId", scheduleID), zap.Error(err))
			}
		}
	}

	return availability, nil
}
