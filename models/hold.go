package models

import "time"

// HoldStatus tracks a provisional capacity reservation.
type HoldStatus string

const (
	HoldStatusPending   HoldStatus = "pending"
	HoldStatusCommitted HoldStatus = "committed"
	HoldStatusReleased  HoldStatus = "released"
)

// CapacityHold records seats incremented on a schedule before the
// owning booking is durably persisted. A pending hold past ExpiresAt
// is reclaimed by the background sweep, which puts the seats back.
type CapacityHold struct {
	ID         string     `bson:"id" json:"id"`
	ScheduleID string     `bson:"schedule_id" json:"schedule_id"`
	Units      int        `bson:"units" json:"units"`
	Status     HoldStatus `bson:"status" json:"status"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	ExpiresAt  time.Time  `bson:"expires_at" json:"expires_at"`
}
