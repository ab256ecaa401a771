// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/vitrine/internal/app/store/cache"
	"github.com/dalemusser/vitrine/internal/app/system/auth"
	"github.com/dalemusser/vitrine/internal/app/system/notify"
	"github.com/dalemusser/vitrine/internal/app/system/paging"
	"github.com/dalemusser/vitrine/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Vitrine.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: VITRINE_MONGO_URI, VITRINE_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "store_backend", Default: BackendMongo, Desc: "Property store: 'mongo', 'postgres' or 'memory'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "vitrine", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 50, Desc: "MongoDB max connection pool size"},
	{Name: "postgres_dsn", Default: "", Desc: "PostgreSQL DSN (store_backend=postgres)"},

	// Cache
	{Name: "redis_addr", Default: "", Desc: "Redis address for the catalog cache (blank disables it)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis logical database"},
	{Name: "cache_ttl", Default: cache.DefaultTTL.String(), Desc: "How long a cached catalog snapshot lives (e.g., 5m)"},

	// Notifications
	{Name: "notify_amqp_url", Default: "", Desc: "RabbitMQ URL for catalog notifications (blank disables publishing)"},
	{Name: "notify_amqp_exchange", Default: "vitrine", Desc: "RabbitMQ topic exchange for notifications"},
	{Name: "notify_amqp_routing_key", Default: notify.DefaultRoutingKey, Desc: "Routing key for notifications"},

	// Admin access
	{Name: "admin_token_hash", Default: "", Desc: "bcrypt hash of the admin token (blank disables admin access)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: auth.DefaultSessionName, Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "12h", Desc: "Admin session lifetime"},

	// Listings
	{Name: "public_page_size", Default: paging.PublicPageSize, Desc: "Listings per public page"},

	// Timeouts
	{Name: "timeout_ping", Default: timeouts.DefaultPing.String(), Desc: "Health check timeout"},
	{Name: "timeout_short", Default: timeouts.DefaultShort.String(), Desc: "Single-property write timeout"},
	{Name: "timeout_medium", Default: timeouts.DefaultMedium.String(), Desc: "Reload and full edit timeout"},
	{Name: "timeout_batch", Default: timeouts.DefaultBatch.String(), Desc: "Whole workbook import timeout"},

	{Name: "cors_allowed_origins", Default: "", Desc: "Comma-separated browser origins allowed to call the API"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges, with precedence
// flags > env (VITRINE_*) > config files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "VITRINE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StoreBackend:     strings.ToLower(strings.TrimSpace(appValues.String("store_backend"))),
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		PostgresDSN:      appValues.String("postgres_dsn"),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),
		CacheTTL:      appValues.Duration("cache_ttl", cache.DefaultTTL),

		NotifyAMQPURL:        appValues.String("notify_amqp_url"),
		NotifyAMQPExchange:   appValues.String("notify_amqp_exchange"),
		NotifyAMQPRoutingKey: appValues.String("notify_amqp_routing_key"),

		AdminTokenHash: appValues.String("admin_token_hash"),
		SessionKey:     appValues.String("session_key"),
		SessionName:    appValues.String("session_name"),
		SessionDomain:  appValues.String("session_domain"),
		SessionMaxAge:  appValues.Duration("session_max_age", 12*time.Hour),

		PublicPageSize: appValues.Int("public_page_size"),

		TimeoutPing:   appValues.Duration("timeout_ping", timeouts.DefaultPing),
		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
		TimeoutBatch:  appValues.Duration("timeout_batch", timeouts.DefaultBatch),

		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),
	}

	return coreCfg, appCfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The backend-specific connection settings are checked here so that
// configuration errors surface before any connection attempt.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StoreBackend {
	case BackendMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if strings.TrimSpace(appCfg.MongoDatabase) == "" {
			return fmt.Errorf("mongo_database is required when store_backend=%s", BackendMongo)
		}
	case BackendPostgres:
		if strings.TrimSpace(appCfg.PostgresDSN) == "" {
			return fmt.Errorf("postgres_dsn is required when store_backend=%s", BackendPostgres)
		}
	case BackendMemory:
		logger.Warn("using the in-memory store; data is lost on restart")
	default:
		return fmt.Errorf("unknown store_backend %q (want %s, %s or %s)",
			appCfg.StoreBackend, BackendMongo, BackendPostgres, BackendMemory)
	}

	if appCfg.PublicPageSize <= 0 {
		return fmt.Errorf("public_page_size must be positive, got %d", appCfg.PublicPageSize)
	}
	if appCfg.AdminTokenHash == "" {
		logger.Warn("admin_token_hash is empty; admin endpoints will reject every caller")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && strings.HasPrefix(appCfg.SessionKey, "dev-only") {
		return fmt.Errorf("session_key must be set in production")
	}
	return nil
}
