// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/vitrine/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It applies
// the configured store deadlines and performs the initial catalog load.
//
// A failed initial load is logged and the app still starts with an empty
// catalog; admins can retry with POST /admin/properties/reload.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.TimeoutPing,
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Batch:  appCfg.TimeoutBatch,
	})

	n, err := deps.Sync.Reload(ctx)
	if err != nil {
		logger.Error("initial catalog load failed", zap.Error(err))
		return nil
	}
	logger.Info("catalog loaded", zap.Int("properties", n), zap.String("backend", appCfg.StoreBackend))
	return nil
}
