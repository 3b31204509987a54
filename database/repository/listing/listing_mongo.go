package listingRepo

import (
	"context"
	"fmt"
	"time"

	"nestmart/database"
	"nestmart/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// CollectionName is where listings are stored.
const CollectionName = "properties"

const opTimeout = 5 * time.Second

// MongoListingRepo implements ListingRepository using MongoDB.
type MongoListingRepo struct {
	coll *mongo.Collection
}

// NewMongoListingRepo creates a repository over db's listing collection and
// makes sure its indexes exist.
func NewMongoListingRepo(db *mongo.Database, logger *zap.Logger) *MongoListingRepo {
	repo := &MongoListingRepo{coll: db.Collection(CollectionName)}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("listing indexes not created", zap.Error(err))
	}
	return repo
}

// GetByID retrieves a listing by its ObjectID.
func (r *MongoListingRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByTransactionID retrieves the listing whose current transaction is tranID.
func (r *MongoListingRepo) GetByTransactionID(ctx context.Context, tranID string) (*models.Listing, error) {
	if tranID == "" {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"transactionId": tranID})
}

func (r *MongoListingRepo) findOne(ctx context.Context, filter bson.M) (*models.Listing, error) {
	ctx, cancel := database.NewContext(ctx, opTimeout)
	defer cancel()

	var listing models.Listing
	if err := r.coll.FindOne(ctx, filter).Decode(&listing); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	return &listing, nil
}

// AttachTransaction writes tranID and the merged fields onto the listing.
func (r *MongoListingRepo) AttachTransaction(ctx context.Context, id primitive.ObjectID, tranID string, fields bson.M) (bool, error) {
	ctx, cancel := database.NewContext(ctx, opTimeout)
	defer cancel()

	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	set["transactionId"] = tranID
	set["updatedAt"] = time.Now()

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to attach transaction to listing %s: %w", id.Hex(), err)
	}
	return result.MatchedCount > 0, nil
}

// MarkPaid flips the listing holding tranID to paid and public and records
// tranID as settled. A transaction that already settled matches nothing, so a
// later attempt on a paid listing can still be reconciled.
func (r *MongoListingRepo) MarkPaid(ctx context.Context, tranID string, at time.Time) (models.UpdateResult, error) {
	if tranID == "" {
		return models.UpdateResult{Acknowledged: true}, nil
	}
	filter := bson.M{
		"transactionId":     tranID,
		"paidTransactionId": bson.M{"$ne": tranID},
	}
	update := bson.M{"$set": bson.M{
		"paidTransactionId": tranID,
		"paymentStatus":     models.PaymentStatusPaid,
		"publishStatus":     models.PublishStatusPublic,
		"paidAt":            at,
		"updatedAt":         at,
	}}
	return r.updateOne(ctx, filter, update)
}

// MarkUnpaid flips the listing holding tranID back to due and hidden and
// clears the transaction id.
func (r *MongoListingRepo) MarkUnpaid(ctx context.Context, tranID string, at time.Time) (models.UpdateResult, error) {
	if tranID == "" {
		return models.UpdateResult{Acknowledged: true}, nil
	}
	filter := bson.M{"transactionId": tranID}
	update := bson.M{"$set": bson.M{
		"paymentStatus": models.PaymentStatusDue,
		"publishStatus": models.PublishStatusHidden,
		"transactionId": "",
		"tryToPayAt":    at,
		"updatedAt":     at,
	}}
	return r.updateOne(ctx, filter, update)
}

func (r *MongoListingRepo) updateOne(ctx context.Context, filter, update bson.M) (models.UpdateResult, error) {
	ctx, cancel := database.NewContext(ctx, opTimeout)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("failed to update listing payment state: %w", err)
	}
	return models.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  result.MatchedCount,
		ModifiedCount: result.ModifiedCount,
	}, nil
}
