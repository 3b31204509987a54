package payment

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidListingID signals a listing id that is not an ObjectID.
	ErrInvalidListingID = errors.New("payment: invalid listing id")
	// ErrInvalidAmount signals a missing, non-numeric or non-positive amount.
	ErrInvalidAmount = errors.New("payment: amount must be a positive number")
	// ErrListingNotFound signals that no listing matched the id.
	ErrListingNotFound = errors.New("payment: listing not found")
)

// GatewayError wraps an upstream gateway failure. The transaction id named
// here has already been written to the listing and is left in place.
type GatewayError struct {
	TranID string
	Err    error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment: gateway failed for transaction %s: %v", e.TranID, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
