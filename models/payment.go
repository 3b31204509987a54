package models

import "time"

// Initiation is the outcome of starting a payment attempt.
type Initiation struct {
	ListingID     string `json:"listingId"`
	TransactionID string `json:"transactionId"`
	URL           string `json:"url"`
}

// IPNPayload is the queued form of a gateway instant payment notification.
type IPNPayload struct {
	RequestID string `json:"requestId"`
	// EventID is set when the gateway numbers its notifications.
	EventID    string    `json:"eventId,omitempty"`
	TranID     string    `json:"tranId"`
	ValID      string    `json:"valId"`
	Status     string    `json:"status"`
	ReceivedAt time.Time `json:"receivedAt"`
}
