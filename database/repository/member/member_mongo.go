package memberRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/srikanth-zersys/divedream-sub002/database"
	"github.com/srikanth-zersys/divedream-sub002/models"
)

// MemberRepository looks up registered customers by id. Membership
// management lives outside the booking core.
type MemberRepository interface {
	GetByID(ctx context.Context, memberID string) (*models.Member, error)
}

// MongoMemberRepo implements MemberRepository backed by MongoDB.
type MongoMemberRepo struct {
	memberColl *mongo.Collection
}

// NewMongoMemberRepo wires the repo to the application database.
func NewMongoMemberRepo() *MongoMemberRepo {
	return &MongoMemberRepo{
		memberColl: database.GetDatabase().Collection("members"),
	}
}

func (repo *MongoMemberRepo) GetByID(ctx context.Context, memberID string) (*models.Member, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var member models.Member
	err := repo.memberColl.FindOne(ctxWithTimeout, bson.M{"id": memberID}).Decode(&member)
	if err != nil {
		return nil, fmt.Errorf("member %s not found: %w", memberID, err)
	}
	return &member, nil
}
