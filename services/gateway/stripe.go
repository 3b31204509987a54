package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Checkout session events that carry a payment outcome.
const (
	StripeEventSessionCompleted      = "checkout.session.completed"
	StripeEventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	StripeEventAsyncPaymentFailed    = "checkout.session.async_payment_failed"
	StripeEventSessionExpired        = "checkout.session.expired"
)

// Stripe serves the hosted page through Stripe Checkout. The browser comes
// back to SuccessURL with a session_id and to CancelURL without one; the
// final outcome also arrives through signed webhook events. Stripe has no
// failure redirect, so FailURL is unused.
type Stripe struct {
	api *client.API
}

// NewStripe creates a Checkout gateway. backends may be nil for the default
// Stripe endpoints.
func NewStripe(key string, backends *stripe.Backends) *Stripe {
	return &Stripe{api: client.New(key, backends)}
}

// InitSession creates a one-item Checkout session for the transaction.
func (s *Stripe) InitSession(ctx context.Context, req SessionRequest) (*Session, error) {
	successURL := req.SuccessURL
	if strings.Contains(successURL, "?") {
		successURL += "&session_id={CHECKOUT_SESSION_ID}"
	} else {
		successURL += "?session_id={CHECKOUT_SESSION_ID}"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.TranID),
		CustomerEmail:     stripe.String(req.Customer.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(req.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProductName),
					},
					UnitAmount: stripe.Int64(int64(math.Round(req.Amount * 100))),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("tran_id", req.TranID)

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	if sess.URL == "" {
		return nil, fmt.Errorf("%w: checkout session %s has no url", ErrRejected, sess.ID)
	}
	return &Session{URL: sess.URL, SessionKey: sess.ID}, nil
}

// Validate looks the Checkout session up by n.ValID and maps its state. A
// completed session that is still unpaid is waiting on a delayed payment
// method and stays unknown until its async_payment_failed event.
func (s *Stripe) Validate(ctx context.Context, n Notification) (Outcome, error) {
	if n.ValID == "" {
		return OutcomeUnknown, nil
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.Get(n.ValID, params)
	if err != nil {
		return OutcomeUnknown, fmt.Errorf("stripe: get checkout session: %w", err)
	}
	if sess.ClientReferenceID != n.TranID {
		return OutcomeUnknown, fmt.Errorf("%w: session %s belongs to %q", ErrRejected, sess.ID, sess.ClientReferenceID)
	}

	switch {
	case sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		return OutcomePaid, nil
	case sess.Status == stripe.CheckoutSessionStatusExpired:
		return OutcomeCancelled, nil
	case sess.Status == stripe.CheckoutSessionStatusComplete && n.Status == StripeEventAsyncPaymentFailed:
		return OutcomeFailed, nil
	default:
		return OutcomeUnknown, nil
	}
}

// WebhookEvent is a verified gateway event reduced to a Notification.
type WebhookEvent struct {
	ID           string
	Notification Notification
}

// ParseStripeWebhook verifies the Stripe-Signature header against secret and
// extracts the Checkout session the event is about. Events without a payment
// outcome return nil and no error.
func ParseStripeWebhook(payload []byte, signature, secret string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("stripe: verify webhook: %w", err)
	}

	switch string(event.Type) {
	case StripeEventSessionCompleted, StripeEventAsyncPaymentSucceeded, StripeEventAsyncPaymentFailed, StripeEventSessionExpired:
	default:
		return nil, nil
	}
	if event.Data == nil {
		return nil, fmt.Errorf("%w: event %s has no data", ErrRejected, event.ID)
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("stripe: decode checkout session: %w", err)
	}
	tranID := sess.ClientReferenceID
	if tranID == "" {
		tranID = sess.Metadata["tran_id"]
	}
	return &WebhookEvent{
		ID: event.ID,
		Notification: Notification{
			TranID: tranID,
			ValID:  sess.ID,
			Status: string(event.Type),
		},
	}, nil
}
