package recordsRepo

import (
	"context"
	"errors"

	"nestmart/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrInvalidID is returned when an id is not a 24 character hex ObjectID.
var ErrInvalidID = errors.New("records: invalid id")

// DocumentRepository is schemaless CRUD over one collection. Documents are
// keyed by ObjectID and returned as bson.M; a missing document is (nil, nil).
type DocumentRepository interface {
	Find(ctx context.Context, filter bson.M) ([]bson.M, error)
	FindOne(ctx context.Context, filter bson.M) (bson.M, error)
	FindByID(ctx context.Context, id string) (bson.M, error)
	Insert(ctx context.Context, doc bson.M) (models.InsertResult, error)
	UpdateByID(ctx context.Context, id string, fields bson.M) (models.UpdateResult, error)
	DeleteByID(ctx context.Context, id string) (models.DeleteResult, error)
	EstimatedCount(ctx context.Context) (int64, error)
}

type mongoDocumentRepo struct {
	coll *mongo.Collection
}

// NewMongoDocumentRepo returns a DocumentRepository over db.collection.
func NewMongoDocumentRepo(db *mongo.Database, collection string) DocumentRepository {
	return &mongoDocumentRepo{
		coll: db.Collection(collection),
	}
}

// TitleSearch builds a case-insensitive regex filter on "title".
func TitleSearch(text string) bson.M {
	return bson.M{"title": bson.M{"$regex": text, "$options": "i"}}
}

func findOptions() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
}
