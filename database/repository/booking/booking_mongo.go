package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/srikanth-zersys/divedream-sub002/database"
	"github.com/srikanth-zersys/divedream-sub002/models"
)

// MongoBookingRepo implements BookingRepository backed by MongoDB.
type MongoBookingRepo struct {
	bookingColl     *mongo.Collection
	participantColl *mongo.Collection
	paymentColl     *mongo.Collection
	holdColl        *mongo.Collection
	discountColl    *mongo.Collection
}

// NewMongoBookingRepo wires the repo to the application database.
func NewMongoBookingRepo() *MongoBookingRepo {
	db := database.GetDatabase()
	return &MongoBookingRepo{
		bookingColl:     db.Collection("bookings"),
		participantColl: db.Collection("participants"),
		paymentColl:     db.Collection("payments"),
		holdColl:        db.Collection("capacity_holds"),
		discountColl:    db.Collection("discount_codes"),
	}
}

// CreateWithReservation persists a booking, its participants, the
// capacity hold commit, and the discount redemption as one MongoDB
// transaction. Conditional updates on the hold and the code make the
// races resolve to exactly one winner.
func (repo *MongoBookingRepo) CreateWithReservation(ctx context.Context, params CreateParams) error {
	client := repo.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		if _, err := repo.bookingColl.InsertOne(sc, params.Booking); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}

		for i := range params.Participants {
			if _, err := repo.participantColl.InsertOne(sc, params.Participants[i]); err != nil {
				return fmt.Errorf("insert participant failed: %w", err)
			}
		}

		if params.HoldID != "" {
			holdFilter := bson.M{"id": params.HoldID, "status": models.HoldStatusPending}
			holdUpdate := bson.M{"$set": bson.M{"status": models.HoldStatusCommitted}}
			res, err := repo.holdColl.UpdateOne(sc, holdFilter, holdUpdate)
			if err != nil {
				return fmt.Errorf("commit capacity hold failed: %w", err)
			}
			if res.ModifiedCount == 0 {
				return &ErrHoldNotPending{HoldID: params.HoldID}
			}
		}

		if params.DiscountCode != "" {
			// Redemption counting happens here, not at validation
			// time, so abandoned checkouts never consume a code.
			codeFilter := bson.M{
				"code": params.DiscountCode,
				"$or": bson.A{
					bson.M{"max_redemptions": 0},
					bson.M{"$expr": bson.M{"$lt": bson.A{"$redeemed_count", "$max_redemptions"}}},
				},
			}
			codeUpdate := bson.M{"$inc": bson.M{"redeemed_count": 1}}
			res, err := repo.discountColl.UpdateOne(sc, codeFilter, codeUpdate)
			if err != nil {
				return fmt.Errorf("redeem discount code failed: %w", err)
			}
			if res.ModifiedCount == 0 {
				return &ErrDiscountExhausted{Code: params.DiscountCode}
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

func (repo *MongoBookingRepo) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := repo.bookingColl.FindOne(ctxWithTimeout, bson.M{"id": bookingID}).Decode(&booking)
	if err != nil {
		return nil, fmt.Errorf("booking %s not found: %w", bookingID, err)
	}
	return &booking, nil
}

func (repo *MongoBookingRepo) ListParticipants(ctx context.Context, bookingID string) ([]models.Participant, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.participantColl.Find(ctxWithTimeout, bson.M{"booking_id": bookingID})
	if err != nil {
		return nil, fmt.Errorf("error listing participants for booking %s: %w", bookingID, err)
	}
	defer cursor.Close(ctxWithTimeout)

	var participants []models.Participant
	if err := cursor.All(ctxWithTimeout, &participants); err != nil {
		return nil, fmt.Errorf("error decoding participants: %w", err)
	}
	return participants, nil
}

// TransitionStatus enforces the lifecycle guard at the storage level:
// the update matches only when the booking still holds the expected
// source status.
func (repo *MongoBookingRepo) TransitionStatus(ctx context.Context, bookingID string, from, to models.BookingStatus) (bool, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": bookingID, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}}

	res, err := repo.bookingColl.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return false, fmt.Errorf("error transitioning booking %s to %s: %w", bookingID, to, err)
	}
	return res.ModifiedCount > 0, nil
}

func (repo *MongoBookingRepo) CreatePayment(ctx context.Context, payment *models.Payment) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.paymentColl.InsertOne(ctxWithTimeout, payment); err != nil {
		return fmt.Errorf("error creating payment: %w", err)
	}
	return nil
}

func (repo *MongoBookingRepo) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": payment.ID}
	update := bson.M{"$set": payment}
	if _, err := repo.paymentColl.UpdateOne(ctxWithTimeout, filter, update); err != nil {
		return fmt.Errorf("error updating payment %s: %w", payment.ID, err)
	}
	return nil
}

func (repo *MongoBookingRepo) GetPaymentByID(ctx context.Context, paymentID string) (*models.Payment, error) {
	return repo.findPayment(ctx, bson.M{"id": paymentID})
}

func (repo *MongoBookingRepo) GetPaymentByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	return repo.findPayment(ctx, bson.M{"transaction_id": transactionID})
}

func (repo *MongoBookingRepo) findPayment(ctx context.Context, filter bson.M) (*models.Payment, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var payment models.Payment
	err := repo.paymentColl.FindOne(ctxWithTimeout, filter).Decode(&payment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error looking up payment: %w", err)
	}
	return &payment, nil
}

func (repo *MongoBookingRepo) ListPayments(ctx context.Context, bookingID string) ([]models.Payment, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.paymentColl.Find(ctxWithTimeout, bson.M{"booking_id": bookingID})
	if err != nil {
		return nil, fmt.Errorf("error listing payments for booking %s: %w", bookingID, err)
	}
	defer cursor.Close(ctxWithTimeout)

	var payments []models.Payment
	if err := cursor.All(ctxWithTimeout, &payments); err != nil {
		return nil, fmt.Errorf("error decoding payments: %w", err)
	}
	return payments, nil
}

// UpdatePaymentTotals is guarded on updated_at the same way the status
// transitions are guarded on status: the write matches only the
// booking revision the totals were computed from.
func (repo *MongoBookingRepo) UpdatePaymentTotals(ctx context.Context, bookingID string, amountPaid float64, status models.PaymentStatus, seenAt time.Time) (bool, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": bookingID, "updated_at": seenAt}
	update := bson.M{"$set": bson.M{
		"amount_paid":    amountPaid,
		"payment_status": status,
		"updated_at":     time.Now(),
	}}
	res, err := repo.bookingColl.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return false, fmt.Errorf("error updating payment totals for booking %s: %w", bookingID, err)
	}
	return res.ModifiedCount > 0, nil
}
