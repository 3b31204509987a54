package recordsRepo

import (
	"context"
	"fmt"
	"time"

	"nestmart/database"
	"nestmart/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const opTimeout = 5 * time.Second

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// Find returns every document matching filter, newest first.
func (r *mongoDocumentRepo) Find(ctx context.Context, filter bson.M) ([]bson.M, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	if filter == nil {
		filter = bson.M{}
	}
	cursor, err := r.coll.Find(ctx, filter, findOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := []bson.M{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", r.coll.Name(), err)
	}
	return docs, nil
}

// FindOne returns the first document matching filter.
func (r *mongoDocumentRepo) FindOne(ctx context.Context, filter bson.M) (bson.M, error) {
	ctx, cancel := database.NewContext(ctx, opTimeout)
	defer cancel()

	var doc bson.M
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch from %s: %w", r.coll.Name(), err)
	}
	return doc, nil
}

// FindByID returns the document with the given hex id.
func (r *mongoDocumentRepo) FindByID(ctx context.Context, id string) (bson.M, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.FindOne(ctx, bson.M{"_id": oid})
}

// Insert stores doc and returns the generated id.
func (r *mongoDocumentRepo) Insert(ctx context.Context, doc bson.M) (models.InsertResult, error) {
	ctx, cancel := database.NewContext(ctx, opTimeout)
	defer cancel()

	if doc == nil {
		doc = bson.M{}
	}
	delete(doc, "_id")
	now := time.Now()
	doc["createdAt"] = now
	doc["updatedAt"] = now

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("failed to insert into %s: %w", r.coll.Name(), err)
	}
	return models.InsertResult{Acknowledged: true, InsertedID: res.InsertedID}, nil
}

// UpdateByID applies fields with $set.
func (r *mongoDocumentRepo) UpdateByID(ctx context.Context, id string, fields bson.M) (models.UpdateResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.UpdateResult{}, err
	}
	ctx, cancel := database.NewContext(ctx, opTimeout)
	defer cancel()

	if fields == nil {
		fields = bson.M{}
	}
	delete(fields, "_id")
	fields["updatedAt"] = time.Now()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("failed to update %s %s: %w", r.coll.Name(), id, err)
	}
	return models.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}, nil
}

// DeleteByID removes the document with the given hex id.
func (r *mongoDocumentRepo) DeleteByID(ctx context.Context, id string) (models.DeleteResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.DeleteResult{}, err
	}
	ctx, cancel := database.NewContext(ctx, opTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("failed to delete %s %s: %w", r.coll.Name(), id, err)
	}
	return models.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

// EstimatedCount returns the collection's metadata document count.
func (r *mongoDocumentRepo) EstimatedCount(ctx context.Context) (int64, error) {
	ctx, cancel := database.NewContext(ctx, opTimeout)
	defer cancel()
	return r.coll.EstimatedDocumentCount(ctx)
}
