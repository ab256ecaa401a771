package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Environment variables that enable the integration tests. Tests that need
// a backend skip when the variable is unset.
const (
	EnvMongoURI    = "VITRINE_TEST_MONGO_URI"
	EnvPostgresDSN = "VITRINE_TEST_POSTGRES_DSN"
	EnvRedisAddr   = "VITRINE_TEST_REDIS_ADDR"
)

// TestTimeout bounds every integration test context.
const TestTimeout = 30 * time.Second

// TestContext returns a context bounded by TestTimeout.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), TestTimeout)
}

// RequireEnv returns the value of key or skips the test.
func RequireEnv(t *testing.T, key string) string {
	t.Helper()
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		t.Skipf("%s not set; skipping integration test", key)
	}
	return v
}

// SetupTestDB connects to the Mongo server named by VITRINE_TEST_MONGO_URI
// and returns a fresh database that is dropped when the test ends.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := RequireEnv(t, EnvMongoURI)

	ctx, cancel := TestContext()
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("ping mongo: %v", err)
	}

	name := fmt.Sprintf("vitrine_test_%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	db := client.Database(name)

	t.Cleanup(func() {
		ctx, cancel := TestContext()
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}
