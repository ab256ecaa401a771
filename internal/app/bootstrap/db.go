// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/vitrine/internal/app/catalog"
	"github.com/dalemusser/vitrine/internal/app/store/cache"
	"github.com/dalemusser/vitrine/internal/app/store/memory"
	"github.com/dalemusser/vitrine/internal/app/store/pgproperties"
	propertystore "github.com/dalemusser/vitrine/internal/app/store/properties"
	"github.com/dalemusser/vitrine/internal/app/system/indexes"
	"github.com/dalemusser/vitrine/internal/app/system/notify"
	"github.com/dalemusser/vitrine/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectDB opens the configured property store plus the optional Redis
// cache and RabbitMQ publisher, then builds the Synchronizer over them.
// On error every client opened so far is closed again.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (deps DBDeps, err error) {
	defer func() {
		if err != nil {
			_ = Shutdown(context.WithoutCancel(ctx), coreCfg, appCfg, deps, logger)
			deps = DBDeps{}
		}
	}()

	var store catalog.Store
	switch appCfg.StoreBackend {
	case BackendMongo:
		client, err := connectMongo(ctx, appCfg)
		if err != nil {
			return deps, err
		}
		deps.MongoClient = client
		deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
		store = propertystore.New(deps.MongoDatabase)
		logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	case BackendPostgres:
		pool, err := connectPostgres(ctx, appCfg)
		if err != nil {
			return deps, err
		}
		deps.PGPool = pool
		pg, err := pgproperties.New(pool)
		if err != nil {
			return deps, err
		}
		store = pg
		logger.Info("connected to PostgreSQL")

	case BackendMemory:
		store = memory.New()

	default:
		return deps, fmt.Errorf("unknown store_backend %q", appCfg.StoreBackend)
	}

	if appCfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     appCfg.RedisAddr,
			Password: appCfg.RedisPassword,
			DB:       appCfg.RedisDB,
		})
		deps.Redis = rdb
		pingCtx, cancel := context.WithTimeout(ctx, timeouts.DefaultPing)
		perr := rdb.Ping(pingCtx).Err()
		cancel()
		if perr != nil {
			// The cache degrades to read-through on every call; not fatal.
			logger.Warn("redis ping failed; catalog cache will miss until it recovers",
				zap.String("addr", appCfg.RedisAddr), zap.Error(perr))
		}
		store = cache.New(store, rdb, appCfg.CacheTTL, logger)
		logger.Info("catalog cache enabled", zap.String("addr", appCfg.RedisAddr), zap.Duration("ttl", appCfg.CacheTTL))
	}

	sinks := notify.Multi{notify.NewLog(logger)}
	if appCfg.NotifyAMQPURL != "" {
		pub, conn, err := notify.DialAMQP(notify.AMQPConfig{
			URL:        appCfg.NotifyAMQPURL,
			Exchange:   appCfg.NotifyAMQPExchange,
			RoutingKey: appCfg.NotifyAMQPRoutingKey,
			Timeout:    appCfg.TimeoutShort,
		}, logger)
		if err != nil {
			return deps, err
		}
		deps.AMQPConn = conn
		sinks = append(sinks, pub)
		logger.Info("publishing catalog notifications", zap.String("exchange", appCfg.NotifyAMQPExchange))
	}

	deps.Store = store
	deps.Sync = catalog.NewSynchronizer(store, catalog.New(), sinks, logger)
	return deps, nil
}

func connectMongo(ctx context.Context, appCfg AppConfig) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(appCfg.MongoURI)
	if appCfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeouts.DefaultPing)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

func connectPostgres(ctx context.Context, appCfg AppConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(appCfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeouts.DefaultPing)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// EnsureSchema sets up indexes or tables for the configured backend.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	switch {
	case deps.MongoDatabase != nil:
		if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
			logger.Error("ensure mongo indexes failed", zap.Error(err))
			return err
		}
	case deps.PGPool != nil:
		if err := pgproperties.EnsureSchema(ctx, deps.PGPool); err != nil {
			logger.Error("ensure postgres schema failed", zap.Error(err))
			return err
		}
	}
	return nil
}
