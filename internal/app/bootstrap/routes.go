// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	errorsfeature "github.com/dalemusser/vitrine/internal/app/features/errors"
	healthfeature "github.com/dalemusser/vitrine/internal/app/features/health"
	listingsfeature "github.com/dalemusser/vitrine/internal/app/features/listings"
	propertiesfeature "github.com/dalemusser/vitrine/internal/app/features/properties"
	"github.com/dalemusser/vitrine/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: the store, the Synchronizer and the backend clients in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// Vitrine mounts the public listings, the privileged admin catalog and the
// admin session endpoints. Every route sees the session middleware so that
// listings can tell public callers from privileged ones.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	if appCfg.AdminTokenHash != "" {
		if err := sessionMgr.SetAdminTokenHash(appCfg.AdminTokenHash); err != nil {
			logger.Error("admin token hash rejected", zap.Error(err))
			return nil, err
		}
	}

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	if len(appCfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   appCfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "If-Match"},
			ExposedHeaders:   []string{"Content-Disposition", "ETag"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Marks bearer-token and session callers as privileged.
	r.Use(sessionMgr.Load)

	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.Store, appCfg.StoreBackend, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Public catalog
	listingsHandler := listingsfeature.NewHandler(deps.Sync.Catalog(), appCfg.PublicPageSize, errLog, logger)
	r.Mount("/listings", listingsfeature.Routes(listingsHandler))

	// Admin catalog and sign-in
	propsHandler, err := propertiesfeature.NewHandler(deps.Sync, sessionMgr, errLog, logger)
	if err != nil {
		logger.Error("properties handler init failed", zap.Error(err))
		return nil, err
	}
	r.Mount("/admin/properties", propertiesfeature.Routes(propsHandler))
	r.Mount("/admin/session", propertiesfeature.SessionRoutes(propsHandler))

	return r, nil
}
