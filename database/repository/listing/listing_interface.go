package listingRepo

import (
	"context"
	"time"

	"nestmart/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingRepository covers the payment-owned slice of the listing store.
// Every mutation is a single-document update; there is no cross-document
// locking.
type ListingRepository interface {
	// GetByID returns the listing or nil when none exists.
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error)
	// AttachTransaction sets transactionId together with the merged body
	// fields. It reports whether a listing matched id.
	AttachTransaction(ctx context.Context, id primitive.ObjectID, tranID string, fields bson.M) (bool, error)
	// MarkPaid settles the listing currently holding tranID, unless tranID
	// itself already settled it. The transaction id is kept.
	MarkPaid(ctx context.Context, tranID string, at time.Time) (models.UpdateResult, error)
	// MarkUnpaid releases tranID from the listing holding it and hides the
	// listing until a new attempt succeeds.
	MarkUnpaid(ctx context.Context, tranID string, at time.Time) (models.UpdateResult, error)
	// GetByTransactionID returns the listing holding tranID or nil.
	GetByTransactionID(ctx context.Context, tranID string) (*models.Listing, error)
}
