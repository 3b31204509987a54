package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"nestmart/database"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoURIEnv points integration tests at an existing server instead of a
// container.
const MongoURIEnv = "NESTMART_TEST_MONGO_URI"

// StartMongo returns a fresh database for the calling test. It starts a
// mongo:7 container unless MongoURIEnv is set, and skips under -short or
// when Docker is unavailable.
func StartMongo(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping mongo integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	uri := os.Getenv(MongoURIEnv)
	if uri == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)

		container, err := mongodb.Run(ctx, "mongo:7")
		if err != nil {
			t.Fatalf("start mongo container: %v", err)
		}
		t.Cleanup(func() {
			_ = container.Terminate(context.Background())
		})
		uri, err = container.ConnectionString(ctx)
		if err != nil {
			t.Fatalf("mongo connection string: %v", err)
		}
	}

	client, err := database.Connect(ctx, uri)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	db := client.Database("nestmart_test_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = database.Disconnect(client)
	})
	return db
}
