package productRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/srikanth-zersys/divedream-sub002/database"
	"github.com/srikanth-zersys/divedream-sub002/models"
)

// ProductRepository reads product metadata (base price, tax rate,
// minimum certification). The catalogue itself is managed elsewhere.
type ProductRepository interface {
	GetByID(ctx context.Context, productID string) (*models.Product, error)
}

// MongoProductRepo implements ProductRepository backed by MongoDB.
type MongoProductRepo struct {
	productColl *mongo.Collection
}

// NewMongoProductRepo wires the repo to the application database.
func NewMongoProductRepo() *MongoProductRepo {
	return &MongoProductRepo{
		productColl: database.GetDatabase().Collection("products"),
	}
}

func (repo *MongoProductRepo) GetByID(ctx context.Context, productID string) (*models.Product, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var product models.Product
	err := repo.productColl.FindOne(ctxWithTimeout, bson.M{"id": productID}).Decode(&product)
	if err != nil {
		return nil, fmt.Errorf("product %s not found: %w", productID, err)
	}
	return &product, nil
}
