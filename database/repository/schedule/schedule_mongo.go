package scheduleRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/srikanth-zersys/divedream-sub002/database"
	"github.com/srikanth-zersys/divedream-sub002/models"
)

// MongoScheduleRepo implements ScheduleRepository backed by MongoDB.
type MongoScheduleRepo struct {
	scheduleColl *mongo.Collection
	holdColl     *mongo.Collection
}

// NewMongoScheduleRepo wires the repo to the application database.
func NewMongoScheduleRepo() *MongoScheduleRepo {
	db := database.GetDatabase()
	return &MongoScheduleRepo{
		scheduleColl: db.Collection("schedules"),
		holdColl:     db.Collection("capacity_holds"),
	}
}

func (repo *MongoScheduleRepo) GetByID(ctx context.Context, scheduleID string) (*models.Schedule, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var schedule models.Schedule
	err := repo.scheduleColl.FindOne(ctxWithTimeout, bson.M{"id": scheduleID}).Decode(&schedule)
	if err != nil {
		return nil, fmt.Errorf("schedule %s not found: %w", scheduleID, err)
	}
	return &schedule, nil
}

func (repo *MongoScheduleRepo) Create(ctx context.Context, schedule *models.Schedule) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.scheduleColl.InsertOne(ctxWithTimeout, schedule); err != nil {
		return fmt.Errorf("error creating schedule: %w", err)
	}
	return nil
}

// ReserveSeats performs the check-and-increment as one conditional
// update: the filter only matches while booked_count + units stays
// within max_participants, so two racing requests for the last seat
// cannot both succeed.
func (repo *MongoScheduleRepo) ReserveSeats(ctx context.Context, scheduleID string, units int) (bool, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id": scheduleID,
		"$expr": bson.M{
			"$lte": bson.A{
				bson.M{"$add": bson.A{"$booked_count", units}},
				"$max_participants",
			},
		},
	}
	update := bson.M{
		"$inc": bson.M{"booked_count": units},
		"$set": bson.M{"updated_at": time.Now()},
	}

	res, err := repo.scheduleColl.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return false, fmt.Errorf("error reserving %d seats on schedule %s: %w", units, scheduleID, err)
	}
	return res.ModifiedCount > 0, nil
}

// ReleaseSeats decrements booked_count, clamping at zero rather than
// letting the counter go negative.
func (repo *MongoScheduleRepo) ReleaseSeats(ctx context.Context, scheduleID string, units int) (bool, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":           scheduleID,
		"booked_count": bson.M{"$gte": units},
	}
	update := bson.M{
		"$inc": bson.M{"booked_count": -units},
		"$set": bson.M{"updated_at": time.Now()},
	}

	res, err := repo.scheduleColl.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return false, fmt.Errorf("error releasing %d seats on schedule %s: %w", units, scheduleID, err)
	}
	if res.ModifiedCount > 0 {
		return false, nil
	}

	// Fewer booked seats on record than we are releasing. Clamp to
	// zero and report it so the caller can log the discrepancy.
	clampUpdate := bson.M{
		"$set": bson.M{"booked_count": 0, "updated_at": time.Now()},
	}
	if _, err := repo.scheduleColl.UpdateOne(ctxWithTimeout, bson.M{"id": scheduleID}, clampUpdate); err != nil {
		return true, fmt.Errorf("error clamping booked count on schedule %s: %w", scheduleID, err)
	}
	return true, nil
}

func (repo *MongoScheduleRepo) CreateHold(ctx context.Context, hold *models.CapacityHold) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.holdColl.InsertOne(ctxWithTimeout, hold); err != nil {
		return fmt.Errorf("error creating capacity hold: %w", err)
	}
	return nil
}

func (repo *MongoScheduleRepo) MarkHoldReleased(ctx context.Context, holdID string) (bool, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": holdID, "status": models.HoldStatusPending}
	update := bson.M{"$set": bson.M{"status": models.HoldStatusReleased}}

	res, err := repo.holdColl.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return false, fmt.Errorf("error releasing hold %s: %w", holdID, err)
	}
	return res.ModifiedCount > 0, nil
}

func (repo *MongoScheduleRepo) FindExpiredPendingHolds(ctx context.Context, limit int) ([]models.CapacityHold, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"status":     models.HoldStatusPending,
		"expires_at": bson.M{"$lt": time.Now()},
	}
	cursor, err := repo.holdColl.Find(ctxWithTimeout, filter)
	if err != nil {
		return nil, fmt.Errorf("error querying expired holds: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var holds []models.CapacityHold
	for cursor.Next(ctxWithTimeout) {
		var hold models.CapacityHold
		if err := cursor.Decode(&hold); err != nil {
			return nil, fmt.Errorf("error decoding capacity hold: %w", err)
		}
		holds = append(holds, hold)
		if limit > 0 && len(holds) >= limit {
			break
		}
	}
	return holds, nil
}
