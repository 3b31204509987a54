package listingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ensureIndexes creates indexes for fields frequently used in queries.
// transactionId is unique among non-empty values so two listings can never
// claim the same attempt; cleared ids ("") are excluded.
func (r *MongoListingRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "transactionId", Value: 1}},
			Options: options.Index().
				SetName("transactionId_outstanding").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"transactionId": bson.M{"$gt": ""}}),
		},
		{Keys: bson.D{{Key: "publishStatus", Value: 1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
