package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentStatus tracks whether a listing's charge has been settled.
type PaymentStatus string

const (
	PaymentStatusDue  PaymentStatus = "due"
	PaymentStatusPaid PaymentStatus = "paid"
)

// PublishStatus controls consumer visibility independent of payment.
type PublishStatus string

const (
	PublishStatusHidden PublishStatus = "hidden"
	PublishStatusPublic PublishStatus = "public"
)

// Listing is a payable property or product record. The payment lifecycle owns
// TransactionID, PaidTransactionID, PaymentStatus, PublishStatus, PaidAt and
// TryToPayAt; every other client-supplied field lives in Details.
type Listing struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Amount            float64            `bson:"amount,omitempty" json:"amount,omitempty"`
	TransactionID     string             `bson:"transactionId" json:"transactionId"`
	PaidTransactionID string             `bson:"paidTransactionId,omitempty" json:"paidTransactionId,omitempty"`
	PaymentStatus     PaymentStatus      `bson:"paymentStatus,omitempty" json:"paymentStatus,omitempty"`
	PublishStatus     PublishStatus      `bson:"publishStatus,omitempty" json:"publishStatus,omitempty"`
	PaidAt            *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	TryToPayAt        *time.Time         `bson:"tryToPayAt,omitempty" json:"tryToPayAt,omitempty"`
	UpdatedAt         *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
	Details           bson.M             `bson:",inline" json:"-"`
}

// MarshalJSON flattens Details next to the typed fields so the listing is
// served the way it is stored. Typed fields win on key collisions.
func (l Listing) MarshalJSON() ([]byte, error) {
	type plain Listing
	base, err := json.Marshal(plain(l))
	if err != nil || len(l.Details) == 0 {
		return base, err
	}

	merged := make(map[string]interface{}, len(l.Details)+8)
	for k, v := range l.Details {
		merged[k] = v
	}
	var typed map[string]interface{}
	if err := json.Unmarshal(base, &typed); err != nil {
		return nil, err
	}
	for k, v := range typed {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// PaymentOwnedFields are never accepted from a client body at initiation.
var PaymentOwnedFields = []string{"_id", "transactionId", "paidTransactionId", "paymentStatus", "publishStatus", "paidAt", "tryToPayAt"}
