package recordsRepo_test

import (
	"context"
	"errors"
	"testing"

	recordsRepo "nestmart/database/repository/records"
	"nestmart/testutil"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoDocumentRepo_CRUD(t *testing.T) {
	repo := recordsRepo.NewMongoDocumentRepo(testutil.StartMongo(t), "products")
	ctx := context.Background()

	ins, err := repo.Insert(ctx, bson.M{"_id": "client-chosen", "title": "Walnut Desk", "category": "desk"})
	if err != nil || !ins.Acknowledged {
		t.Fatalf("insert: %+v %v", ins, err)
	}
	id, ok := ins.InsertedID.(primitive.ObjectID)
	if !ok {
		t.Fatalf("expected generated ObjectID, got %T", ins.InsertedID)
	}
	if _, err := repo.Insert(ctx, bson.M{"title": "Oak Shelf", "category": "shelf"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	found, err := repo.Find(ctx, recordsRepo.TitleSearch("WALNUT"))
	if err != nil || len(found) != 1 || found[0]["title"] != "Walnut Desk" {
		t.Fatalf("title search: %v %v", found, err)
	}

	none, err := repo.Find(ctx, bson.M{"category": "lamp"})
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v %v", none, err)
	}

	upd, err := repo.UpdateByID(ctx, id.Hex(), bson.M{"price": 120})
	if err != nil || upd.MatchedCount != 1 || upd.ModifiedCount != 1 {
		t.Fatalf("update: %+v %v", upd, err)
	}
	doc, err := repo.FindByID(ctx, id.Hex())
	if err != nil || doc["price"] != int32(120) {
		t.Fatalf("find by id: %v %v", doc, err)
	}

	n, err := repo.EstimatedCount(ctx)
	if err != nil || n != 2 {
		t.Fatalf("count: %d %v", n, err)
	}

	del, err := repo.DeleteByID(ctx, id.Hex())
	if err != nil || del.DeletedCount != 1 {
		t.Fatalf("delete: %+v %v", del, err)
	}
	if doc, err := repo.FindByID(ctx, id.Hex()); err != nil || doc != nil {
		t.Fatalf("deleted document must be (nil, nil), got %v %v", doc, err)
	}
}

func TestMongoDocumentRepo_InvalidID(t *testing.T) {
	repo := recordsRepo.NewMongoDocumentRepo(testutil.StartMongo(t), "blogs")
	ctx := context.Background()

	if _, err := repo.FindByID(ctx, "xyz"); !errors.Is(err, recordsRepo.ErrInvalidID) {
		t.Fatalf("find: expected ErrInvalidID, got %v", err)
	}
	if _, err := repo.UpdateByID(ctx, "xyz", bson.M{}); !errors.Is(err, recordsRepo.ErrInvalidID) {
		t.Fatalf("update: expected ErrInvalidID, got %v", err)
	}
	if _, err := repo.DeleteByID(ctx, "xyz"); !errors.Is(err, recordsRepo.ErrInvalidID) {
		t.Fatalf("delete: expected ErrInvalidID, got %v", err)
	}
}
