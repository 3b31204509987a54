package gateway

import (
	"context"
	"errors"
)

// ErrRejected is returned when the gateway answers but refuses the request.
var ErrRejected = errors.New("gateway: request rejected")

// Outcome is the verified result of a payment attempt.
type Outcome string

const (
	OutcomePaid      Outcome = "paid"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeUnknown   Outcome = "unknown"
)

// Customer holds the buyer and shipping fields the hosted page requires.
type Customer struct {
	Name     string
	Email    string
	Address  string
	City     string
	State    string
	Postcode string
	Country  string
	Phone    string
}

// PlaceholderCustomer fills the gateway's mandatory buyer/shipping schema when
// the payer has not supplied details.
func PlaceholderCustomer() Customer {
	return Customer{
		Name:     "Customer Name",
		Email:    "customer@example.com",
		Address:  "Dhaka",
		City:     "Dhaka",
		State:    "Dhaka",
		Postcode: "1000",
		Country:  "Bangladesh",
		Phone:    "01711111111",
	}
}

// SessionRequest starts a hosted payment page for one transaction.
type SessionRequest struct {
	TranID          string
	Amount          float64
	Currency        string
	ProductName     string
	ProductCategory string
	ShippingMethod  string
	SuccessURL      string
	FailURL         string
	CancelURL       string
	IPNURL          string
	Customer        Customer
}

// Session is the gateway's answer to a SessionRequest.
type Session struct {
	URL        string
	SessionKey string
}

// Notification is an asynchronous payment report from the gateway.
type Notification struct {
	TranID string
	ValID  string
	Status string
}

// Gateway is a hosted payment page provider.
type Gateway interface {
	InitSession(ctx context.Context, req SessionRequest) (*Session, error)
	Validate(ctx context.Context, n Notification) (Outcome, error)
}
