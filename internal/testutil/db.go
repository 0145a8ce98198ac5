package testutil

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/stratasite/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DefaultMongoURI is used when STRATASITE_TEST_MONGO_URI is unset.
	DefaultMongoURI = "mongodb://localhost:27017"
	// dbPrefix starts every per-test database name.
	dbPrefix = "stratasite_test_"
	// maxDBName is MongoDB's database name limit.
	maxDBName = 63
)

var (
	mongoOnce   sync.Once
	mongoClient *mongo.Client
	mongoErr    error
)

func mongoURI() string {
	if uri := os.Getenv("STRATASITE_TEST_MONGO_URI"); uri != "" {
		return uri
	}
	return DefaultMongoURI
}

// sharedClient connects once per test binary.
func sharedClient() (*mongo.Client, error) {
	mongoOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Client().
			ApplyURI(mongoURI()).
			SetMaxPoolSize(200).
			SetMinPoolSize(5).
			SetMaxConnIdleTime(30 * time.Second).
			SetServerSelectionTimeout(5 * time.Second)

		mongoClient, mongoErr = mongo.Connect(ctx, opts)
		if mongoErr == nil {
			mongoErr = mongoClient.Ping(ctx, nil)
		}
	})
	return mongoClient, mongoErr
}

// SetupTestDB returns an empty database private to t with the content
// mirror indexes in place. The database is dropped on cleanup. Tests are
// skipped when no MongoDB server is reachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	client, err := sharedClient()
	if err != nil {
		t.Skipf("MongoDB unavailable at %s: %v", mongoURI(), err)
	}

	db := client.Database(dbName(t.Name()))
	ctx, cancel := TestContext()
	defer cancel()

	if err := db.Drop(ctx); err != nil {
		t.Fatalf("drop %s: %v", db.Name(), err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("indexes.EnsureAll: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("cleanup: drop %s: %v", db.Name(), err)
		}
	})
	return db
}

// dbName maps a test name onto a valid, length-bounded database name.
func dbName(testName string) string {
	suffix := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, testName)
	if n := maxDBName - len(dbPrefix); len(suffix) > n {
		suffix = suffix[:n]
	}
	return dbPrefix + suffix
}

// TestContext returns a context bounded for a single test operation.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
