package payment

import (
	"context"

	"nestmart/models"
	"nestmart/services/gateway"
)

// PaymentService is the payment transaction lifecycle of a listing.
type PaymentService interface {
	Initiate(ctx context.Context, listingID string, body map[string]interface{}) (*models.Initiation, error)
	Succeed(ctx context.Context, tranID string) (models.UpdateResult, error)
	Fail(ctx context.Context, tranID string) (models.UpdateResult, error)
	Cancel(ctx context.Context, tranID string) (models.UpdateResult, error)
	Lookup(ctx context.Context, tranID string) (*models.Listing, error)
	ProcessNotification(ctx context.Context, n gateway.Notification) (gateway.Outcome, models.UpdateResult, error)
}

// Settings are the fixed parts of every gateway request.
type Settings struct {
	// ServerURL is the public base URL the gateway calls back into.
	ServerURL string
	// Currency is the fixed currency code for every charge.
	Currency string
}
