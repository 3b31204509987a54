package listingRepo

import (
	"context"
	"sync"
	"testing"
	"time"

	"nestmart/models"
	"nestmart/testutil"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func seedListing(t *testing.T, repo *MongoListingRepo, extra bson.M) primitive.ObjectID {
	t.Helper()
	doc := bson.M{
		"title":         "Garden flat",
		"paymentStatus": models.PaymentStatusDue,
		"publishStatus": models.PublishStatusHidden,
		"transactionId": "",
	}
	for k, v := range extra {
		doc[k] = v
	}
	res, err := repo.coll.InsertOne(context.Background(), doc)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return res.InsertedID.(primitive.ObjectID)
}

func TestMongoListingRepo_Lifecycle(t *testing.T) {
	db := testutil.StartMongo(t)
	repo := NewMongoListingRepo(db, zap.NewNop())
	ctx := context.Background()
	id := seedListing(t, repo, nil)

	ok, err := repo.AttachTransaction(ctx, id, "tran-1", bson.M{"amount": 500.0, "note": "hi"})
	if err != nil || !ok {
		t.Fatalf("attach: %v %v", ok, err)
	}

	got, err := repo.GetByTransactionID(ctx, "tran-1")
	if err != nil || got == nil {
		t.Fatalf("lookup: %v %v", got, err)
	}
	if got.Amount != 500 || got.Details["note"] != "hi" || got.Details["title"] != "Garden flat" {
		t.Fatalf("unexpected listing %+v", got)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	res, err := repo.MarkPaid(ctx, "tran-1", now)
	if err != nil || res.ModifiedCount != 1 {
		t.Fatalf("mark paid: %+v %v", res, err)
	}
	res, err = repo.MarkPaid(ctx, "tran-1", now)
	if err != nil || res.ModifiedCount != 0 || res.MatchedCount != 0 {
		t.Fatalf("second mark paid must match nothing: %+v %v", res, err)
	}

	got, _ = repo.GetByID(ctx, id)
	if got.PaymentStatus != models.PaymentStatusPaid || got.PublishStatus != models.PublishStatusPublic {
		t.Fatalf("expected paid/public, got %s/%s", got.PaymentStatus, got.PublishStatus)
	}
	if got.PaidAt == nil || !got.PaidAt.Equal(now) {
		t.Fatalf("expected paidAt %v got %v", now, got.PaidAt)
	}

	res, err = repo.MarkUnpaid(ctx, "tran-1", now)
	if err != nil || res.ModifiedCount != 1 {
		t.Fatalf("mark unpaid: %+v %v", res, err)
	}
	got, _ = repo.GetByID(ctx, id)
	if got.TransactionID != "" || got.PaymentStatus != models.PaymentStatusDue {
		t.Fatalf("expected released listing, got %+v", got)
	}
	if l, _ := repo.GetByTransactionID(ctx, "tran-1"); l != nil {
		t.Fatal("released transaction id must not resolve")
	}
}

func TestMongoListingRepo_NewTransactionOnPaidListing(t *testing.T) {
	db := testutil.StartMongo(t)
	repo := NewMongoListingRepo(db, zap.NewNop())
	ctx := context.Background()
	id := seedListing(t, repo, nil)

	first := time.Now().UTC().Truncate(time.Millisecond)
	if _, err := repo.AttachTransaction(ctx, id, "tran-a", bson.M{"amount": 100.0}); err != nil {
		t.Fatalf("attach a: %v", err)
	}
	if res, err := repo.MarkPaid(ctx, "tran-a", first); err != nil || res.ModifiedCount != 1 {
		t.Fatalf("mark paid a: %+v %v", res, err)
	}

	if _, err := repo.AttachTransaction(ctx, id, "tran-b", bson.M{"amount": 120.0}); err != nil {
		t.Fatalf("attach b: %v", err)
	}
	second := first.Add(time.Hour)
	res, err := repo.MarkPaid(ctx, "tran-b", second)
	if err != nil || res.MatchedCount != 1 || res.ModifiedCount != 1 {
		t.Fatalf("new transaction on a paid listing must settle: %+v %v", res, err)
	}

	got, _ := repo.GetByID(ctx, id)
	if got.PaidTransactionID != "tran-b" || got.TransactionID != "tran-b" {
		t.Fatalf("expected tran-b settled, got %+v", got)
	}
	if got.PaidAt == nil || !got.PaidAt.Equal(second) {
		t.Fatalf("expected paidAt %v got %v", second, got.PaidAt)
	}

	if res, _ := repo.MarkPaid(ctx, "tran-b", time.Now()); res.MatchedCount != 0 {
		t.Fatalf("repeat mark paid must match nothing: %+v", res)
	}
	if res, _ := repo.MarkPaid(ctx, "tran-a", time.Now()); res.MatchedCount != 0 {
		t.Fatalf("replaced transaction must match nothing: %+v", res)
	}
}

func TestMongoListingRepo_ReleaseAfterSuccess(t *testing.T) {
	db := testutil.StartMongo(t)
	repo := NewMongoListingRepo(db, zap.NewNop())
	ctx := context.Background()
	id := seedListing(t, repo, nil)

	if _, err := repo.AttachTransaction(ctx, id, "tran-r", bson.M{}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if res, err := repo.MarkPaid(ctx, "tran-r", time.Now()); err != nil || res.ModifiedCount != 1 {
		t.Fatalf("mark paid: %+v %v", res, err)
	}
	res, err := repo.MarkUnpaid(ctx, "tran-r", time.Now())
	if err != nil || res.ModifiedCount != 1 {
		t.Fatalf("release after success: %+v %v", res, err)
	}

	got, _ := repo.GetByID(ctx, id)
	if got.PaymentStatus != models.PaymentStatusDue || got.PublishStatus != models.PublishStatusHidden || got.TransactionID != "" {
		t.Fatalf("expected released listing, got %+v", got)
	}
	if res, _ := repo.MarkPaid(ctx, "tran-r", time.Now()); res.MatchedCount != 0 {
		t.Fatalf("released transaction must not settle again: %+v", res)
	}
}

func TestMongoListingRepo_UnmatchedIsNoop(t *testing.T) {
	db := testutil.StartMongo(t)
	repo := NewMongoListingRepo(db, zap.NewNop())
	ctx := context.Background()
	seedListing(t, repo, nil)
	seedListing(t, repo, nil)

	for _, tranID := range []string{"", "missing"} {
		res, err := repo.MarkPaid(ctx, tranID, time.Now())
		if err != nil || res.ModifiedCount != 0 {
			t.Fatalf("MarkPaid(%q): %+v %v", tranID, res, err)
		}
		res, err = repo.MarkUnpaid(ctx, tranID, time.Now())
		if err != nil || res.ModifiedCount != 0 {
			t.Fatalf("MarkUnpaid(%q): %+v %v", tranID, res, err)
		}
	}

	ok, err := repo.AttachTransaction(ctx, primitive.NewObjectID(), "tran-x", bson.M{})
	if err != nil || ok {
		t.Fatalf("attach to unknown listing must report no match: %v %v", ok, err)
	}
}

func TestMongoListingRepo_ConcurrentSuccessAppliesOnce(t *testing.T) {
	db := testutil.StartMongo(t)
	repo := NewMongoListingRepo(db, zap.NewNop())
	ctx := context.Background()
	id := seedListing(t, repo, nil)
	if _, err := repo.AttachTransaction(ctx, id, "tran-c", bson.M{}); err != nil {
		t.Fatalf("attach: %v", err)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		modified int64
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := repo.MarkPaid(ctx, "tran-c", time.Now())
			if err != nil {
				t.Errorf("mark paid: %v", err)
				return
			}
			mu.Lock()
			modified += res.ModifiedCount
			mu.Unlock()
		}()
	}
	wg.Wait()

	if modified != 1 {
		t.Fatalf("expected exactly one modification, got %d", modified)
	}
}

func TestMongoListingRepo_TransactionIDUnique(t *testing.T) {
	db := testutil.StartMongo(t)
	repo := NewMongoListingRepo(db, zap.NewNop())
	ctx := context.Background()
	a := seedListing(t, repo, nil)
	b := seedListing(t, repo, nil)

	if _, err := repo.AttachTransaction(ctx, a, "dup", bson.M{}); err != nil {
		t.Fatalf("attach a: %v", err)
	}
	if _, err := repo.AttachTransaction(ctx, b, "dup", bson.M{}); err == nil {
		t.Fatal("expected unique index violation for a reused transaction id")
	}
}
