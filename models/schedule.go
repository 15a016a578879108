package models

import "time"

// Schedule is one sellable departure of a product: a date, a time
// window, and a seat counter. BookedCount is only ever mutated through
// the repository's conditional updates, so it can never pass
// MaxParticipants.
type Schedule struct {
	ID              string    `bson:"id" json:"id"`
	ProductID       string    `bson:"product_id" json:"product_id"`
	Date            string    `bson:"date" json:"date"` // YYYY-MM-DD
	StartMinute     int       `bson:"start_minute" json:"start_minute"`
	EndMinute       int       `bson:"end_minute" json:"end_minute"`
	MaxParticipants int       `bson:"max_participants" json:"max_participants"`
	BookedCount     int       `bson:"booked_count" json:"booked_count"`
	PriceOverride   *float64  `bson:"price_override,omitempty" json:"price_override,omitempty"`
	Currency        string    `bson:"currency,omitempty" json:"currency,omitempty"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updated_at"`
}

// Available returns the number of unreserved seats.
func (s *Schedule) Available() int {
	available := s.MaxParticipants - s.BookedCount
	if available < 0 {
		return 0
	}
	return available
}

// StartsAt resolves the schedule's start instant in the given location.
func (s *Schedule) StartsAt(loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", s.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(s.StartMinute) * time.Minute), nil
}

// ScheduleAvailability is the storefront read model of a schedule.
type ScheduleAvailability struct {
	ScheduleID     string  `json:"schedule_id"`
	ProductID      string  `json:"product_id"`
	Date           string  `json:"date"`
	StartMinute    int     `json:"start_minute"`
	EndMinute      int     `json:"end_minute"`
	SeatsRemaining int     `json:"seats_remaining"`
	PricePerSeat   float64 `json:"price_per_seat"`
	Currency       string  `json:"currency"`
	Message        string  `json:"message,omitempty"`
}
