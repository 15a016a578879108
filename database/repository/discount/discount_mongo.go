package discountRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/srikanth-zersys/divedream-sub002/database"
	"github.com/srikanth-zersys/divedream-sub002/models"
)

// MongoDiscountRepo implements DiscountRepository backed by MongoDB.
type MongoDiscountRepo struct {
	discountColl *mongo.Collection
}

// NewMongoDiscountRepo wires the repo to the application database.
func NewMongoDiscountRepo() *MongoDiscountRepo {
	return &MongoDiscountRepo{
		discountColl: database.GetDatabase().Collection("discount_codes"),
	}
}

// GetByCode looks up a code already normalized by the caller. A
// missing code returns (nil, nil).
func (repo *MongoDiscountRepo) GetByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var dc models.DiscountCode
	err := repo.discountColl.FindOne(ctxWithTimeout, bson.M{"code": code}).Decode(&dc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error looking up discount code: %w", err)
	}
	return &dc, nil
}

func (repo *MongoDiscountRepo) Create(ctx context.Context, code *models.DiscountCode) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	code.Code = models.NormalizeDiscountCode(code.Code)
	if _, err := repo.discountColl.InsertOne(ctxWithTimeout, code); err != nil {
		return fmt.Errorf("error creating discount code: %w", err)
	}
	return nil
}
