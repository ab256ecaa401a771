// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/vitrine/internal/app/catalog"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
// Only the clients for the configured backend are non-nil.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	PGPool        *pgxpool.Pool
	Redis         *redis.Client
	AMQPConn      *amqp.Connection

	// Store is the catalog store in use, cache wrapper included.
	Store catalog.Store
	// Sync owns the in-memory catalog and every write path to Store.
	Sync *catalog.Synchronizer
}
