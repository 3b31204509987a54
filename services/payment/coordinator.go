package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"time"

	listingRepo "nestmart/database/repository/listing"
	"nestmart/models"
	"nestmart/services/gateway"
	"nestmart/utils"

	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Coordinator drives a listing through initiation and gateway callbacks.
// The store's single-document update is the only synchronization: a callback
// carrying a transaction id that has since been replaced matches nothing.
type Coordinator struct {
	listings listingRepo.ListingRepository
	gateway  gateway.Gateway
	logger   *zap.Logger
	settings Settings

	now       func() time.Time
	newTranID func() (string, error)
}

// NewCoordinator wires a Coordinator to its store and gateway.
func NewCoordinator(listings listingRepo.ListingRepository, gw gateway.Gateway, logger *zap.Logger, settings Settings) *Coordinator {
	if settings.Currency == "" {
		settings.Currency = "BDT"
	}
	return &Coordinator{
		listings:  listings,
		gateway:   gw,
		logger:    logger,
		settings:  settings,
		now:       time.Now,
		newTranID: utils.NewTransactionID,
	}
}

// Initiate starts a payment attempt for listingID. The transaction id and the
// body fields are stored before the gateway is contacted; if the gateway then
// fails the id stays on the listing until the next attempt overwrites it.
func (c *Coordinator) Initiate(ctx context.Context, listingID string, body map[string]interface{}) (*models.Initiation, error) {
	oid, err := primitive.ObjectIDFromHex(listingID)
	if err != nil {
		return nil, ErrInvalidListingID
	}
	amount, err := parseAmount(body["amount"])
	if err != nil {
		return nil, err
	}

	tranID, err := c.newTranID()
	if err != nil {
		return nil, fmt.Errorf("payment: %w", err)
	}

	fields := mergeableFields(body)
	fields["amount"] = amount

	matched, err := c.listings.AttachTransaction(ctx, oid, tranID, fields)
	if err != nil {
		return nil, fmt.Errorf("payment: attach transaction: %w", err)
	}
	if !matched {
		return nil, ErrListingNotFound
	}

	req := gateway.SessionRequest{
		TranID:          tranID,
		Amount:          amount,
		Currency:        c.settings.Currency,
		ProductName:     productName(body),
		ProductCategory: "property",
		ShippingMethod:  "Courier",
		SuccessURL:      c.callbackURL("success", tranID),
		FailURL:         c.callbackURL("fail", tranID),
		CancelURL:       c.callbackURL("cancel", tranID),
		IPNURL:          c.callbackURL("ipn", tranID),
		Customer:        gateway.PlaceholderCustomer(),
	}

	sess, err := c.gateway.InitSession(ctx, req)
	if err == nil && sess.URL == "" {
		err = errors.New("empty redirect url")
	}
	if err != nil {
		c.logger.Warn("gateway session failed; transaction id left on listing",
			zap.String("listingId", listingID),
			zap.String("tranId", tranID),
			zap.Error(err),
		)
		return nil, &GatewayError{TranID: tranID, Err: err}
	}

	c.logger.Info("payment initiated",
		zap.String("listingId", listingID),
		zap.String("tranId", tranID),
		zap.Float64("amount", amount),
	)
	return &models.Initiation{ListingID: listingID, TransactionID: tranID, URL: sess.URL}, nil
}

// Succeed marks the listing holding tranID as paid and public. The id is kept
// as a receipt. A second call for the same id modifies nothing.
func (c *Coordinator) Succeed(ctx context.Context, tranID string) (models.UpdateResult, error) {
	res, err := c.listings.MarkPaid(ctx, tranID, c.now())
	if err != nil {
		return res, fmt.Errorf("payment: mark paid: %w", err)
	}
	c.logReconcile("success", tranID, res)
	return res, nil
}

// Fail releases tranID and hides the listing.
func (c *Coordinator) Fail(ctx context.Context, tranID string) (models.UpdateResult, error) {
	return c.release(ctx, "fail", tranID)
}

// Cancel releases tranID and hides the listing.
func (c *Coordinator) Cancel(ctx context.Context, tranID string) (models.UpdateResult, error) {
	return c.release(ctx, "cancel", tranID)
}

func (c *Coordinator) release(ctx context.Context, kind, tranID string) (models.UpdateResult, error) {
	res, err := c.listings.MarkUnpaid(ctx, tranID, c.now())
	if err != nil {
		return res, fmt.Errorf("payment: mark %s: %w", kind, err)
	}
	c.logReconcile(kind, tranID, res)
	return res, nil
}

// Lookup returns the listing whose current transaction id is tranID, or nil.
func (c *Coordinator) Lookup(ctx context.Context, tranID string) (*models.Listing, error) {
	listing, err := c.listings.GetByTransactionID(ctx, tranID)
	if err != nil {
		return nil, fmt.Errorf("payment: lookup: %w", err)
	}
	return listing, nil
}

// ProcessNotification verifies a gateway IPN and applies its outcome through
// the same transitions as the browser callbacks.
func (c *Coordinator) ProcessNotification(ctx context.Context, n gateway.Notification) (gateway.Outcome, models.UpdateResult, error) {
	if n.TranID == "" {
		return gateway.OutcomeUnknown, models.UpdateResult{Acknowledged: true}, nil
	}
	outcome, err := c.gateway.Validate(ctx, n)
	if err != nil {
		return gateway.OutcomeUnknown, models.UpdateResult{}, &GatewayError{TranID: n.TranID, Err: err}
	}

	var res models.UpdateResult
	switch outcome {
	case gateway.OutcomePaid:
		res, err = c.Succeed(ctx, n.TranID)
	case gateway.OutcomeFailed:
		res, err = c.Fail(ctx, n.TranID)
	case gateway.OutcomeCancelled:
		res, err = c.Cancel(ctx, n.TranID)
	default:
		c.logger.Info("ipn ignored", zap.String("tranId", n.TranID), zap.String("status", n.Status))
		res = models.UpdateResult{Acknowledged: true}
	}
	return outcome, res, err
}

func (c *Coordinator) callbackURL(kind, tranID string) string {
	return c.settings.ServerURL + "/payment/" + kind + "?tran_id=" + url.QueryEscape(tranID)
}

func (c *Coordinator) logReconcile(kind, tranID string, res models.UpdateResult) {
	if res.ModifiedCount == 0 {
		c.logger.Info("payment callback matched nothing",
			zap.String("callback", kind),
			zap.String("tranId", tranID),
		)
		return
	}
	c.logger.Info("payment reconciled",
		zap.String("callback", kind),
		zap.String("tranId", tranID),
	)
}

func parseAmount(v interface{}) (float64, error) {
	switch v.(type) {
	case nil, bool:
		return 0, ErrInvalidAmount
	}
	amount, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

// mergeableFields drops the keys the payment lifecycle owns.
func mergeableFields(body map[string]interface{}) bson.M {
	fields := bson.M{}
	for k, v := range body {
		fields[k] = v
	}
	for _, k := range models.PaymentOwnedFields {
		delete(fields, k)
	}
	return fields
}

func productName(body map[string]interface{}) string {
	if title, ok := body["title"].(string); ok && title != "" {
		return title
	}
	return "Listing payment"
}
