// Package testutil holds in-memory stand-ins for the store and gateway used
// across package tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"nestmart/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryListings is an in-memory ListingRepository with the same filter
// semantics as the Mongo implementation.
type MemoryListings struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]*models.Listing
}

// NewMemoryListings creates an empty store.
func NewMemoryListings() *MemoryListings {
	return &MemoryListings{docs: make(map[primitive.ObjectID]*models.Listing)}
}

// Seed inserts a hidden, unpaid listing and returns its id.
func (m *MemoryListings) Seed(details bson.M) primitive.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := primitive.NewObjectID()
	m.docs[id] = &models.Listing{
		ID:            id,
		PaymentStatus: models.PaymentStatusDue,
		PublishStatus: models.PublishStatusHidden,
		Details:       details,
	}
	return id
}

// Snapshot returns a copy of the stored listing.
func (m *MemoryListings) Snapshot(id primitive.ObjectID) (models.Listing, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.docs[id]
	if !ok {
		return models.Listing{}, false
	}
	return *l, true
}

func (m *MemoryListings) GetByID(_ context.Context, id primitive.ObjectID) (*models.Listing, error) {
	l, ok := m.Snapshot(id)
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (m *MemoryListings) AttachTransaction(_ context.Context, id primitive.ObjectID, tranID string, fields bson.M) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.docs[id]
	if !ok {
		return false, nil
	}
	if l.Details == nil {
		l.Details = bson.M{}
	}
	for k, v := range fields {
		if k == "amount" {
			if f, ok := v.(float64); ok {
				l.Amount = f
				continue
			}
		}
		l.Details[k] = v
	}
	l.TransactionID = tranID
	return true, nil
}

func (m *MemoryListings) MarkPaid(_ context.Context, tranID string, at time.Time) (models.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := models.UpdateResult{Acknowledged: true}
	l := m.byTran(tranID)
	if l == nil || l.PaidTransactionID == tranID {
		return res, nil
	}
	l.PaidTransactionID = tranID
	l.PaymentStatus = models.PaymentStatusPaid
	l.PublishStatus = models.PublishStatusPublic
	l.PaidAt = &at
	res.MatchedCount, res.ModifiedCount = 1, 1
	return res, nil
}

func (m *MemoryListings) MarkUnpaid(_ context.Context, tranID string, at time.Time) (models.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := models.UpdateResult{Acknowledged: true}
	l := m.byTran(tranID)
	if l == nil {
		return res, nil
	}
	l.PaymentStatus = models.PaymentStatusDue
	l.PublishStatus = models.PublishStatusHidden
	l.TransactionID = ""
	l.TryToPayAt = &at
	res.MatchedCount, res.ModifiedCount = 1, 1
	return res, nil
}

func (m *MemoryListings) GetByTransactionID(_ context.Context, tranID string) (*models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.byTran(tranID)
	if l == nil {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (m *MemoryListings) byTran(tranID string) *models.Listing {
	if tranID == "" {
		return nil
	}
	for _, l := range m.docs {
		if l.TransactionID == tranID {
			return l
		}
	}
	return nil
}
