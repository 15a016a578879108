package quoteRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/srikanth-zersys/divedream-sub002/database"
	"github.com/srikanth-zersys/divedream-sub002/models"
)

// MongoQuoteRepo implements QuoteRepository backed by MongoDB.
type MongoQuoteRepo struct {
	quoteColl   *mongo.Collection
	bookingColl *mongo.Collection
	holdColl    *mongo.Collection
}

// NewMongoQuoteRepo wires the repo to the application database.
func NewMongoQuoteRepo() *MongoQuoteRepo {
	db := database.GetDatabase()
	return &MongoQuoteRepo{
		quoteColl:   db.Collection("quotes"),
		bookingColl: db.Collection("bookings"),
		holdColl:    db.Collection("capacity_holds"),
	}
}

func (repo *MongoQuoteRepo) GetByID(ctx context.Context, quoteID string) (*models.Quote, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var quote models.Quote
	err := repo.quoteColl.FindOne(ctxWithTimeout, bson.M{"id": quoteID}).Decode(&quote)
	if err != nil {
		return nil, fmt.Errorf("quote %s not found: %w", quoteID, err)
	}
	return &quote, nil
}

func (repo *MongoQuoteRepo) Create(ctx context.Context, quote *models.Quote) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.quoteColl.InsertOne(ctxWithTimeout, quote); err != nil {
		return fmt.Errorf("error creating quote: %w", err)
	}
	return nil
}

func (repo *MongoQuoteRepo) TransitionStatus(ctx context.Context, quoteID string, from, to models.QuoteStatus) (bool, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": quoteID, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}}

	res, err := repo.quoteColl.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return false, fmt.Errorf("error transitioning quote %s to %s: %w", quoteID, to, err)
	}
	return res.ModifiedCount > 0, nil
}

// ConvertTransactionally makes conversion atomic: the conditional
// accepted-to-converted flip is the guard, so a replayed convert aborts
// before the duplicate booking is visible.
func (repo *MongoQuoteRepo) ConvertTransactionally(ctx context.Context, quote *models.Quote, booking *models.Booking, holdID string) error {
	client := repo.quoteColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		filter := bson.M{"id": quote.ID, "status": models.QuoteStatusAccepted}
		update := bson.M{"$set": bson.M{
			"status":     models.QuoteStatusConverted,
			"booking_id": booking.ID,
			"updated_at": time.Now(),
		}}
		res, err := repo.quoteColl.UpdateOne(sc, filter, update)
		if err != nil {
			return fmt.Errorf("quote conversion flip failed: %w", err)
		}
		if res.ModifiedCount == 0 {
			return &ErrQuoteNotAccepted{QuoteID: quote.ID}
		}

		if _, err := repo.bookingColl.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert converted booking failed: %w", err)
		}

		if holdID != "" {
			holdFilter := bson.M{"id": holdID, "status": models.HoldStatusPending}
			holdUpdate := bson.M{"$set": bson.M{"status": models.HoldStatusCommitted}}
			holdRes, err := repo.holdColl.UpdateOne(sc, holdFilter, holdUpdate)
			if err != nil {
				return fmt.Errorf("commit capacity hold failed: %w", err)
			}
			if holdRes.ModifiedCount == 0 {
				return fmt.Errorf("capacity hold %s is no longer pending", holdID)
			}
		}

		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return err
	}

	return nil
}
