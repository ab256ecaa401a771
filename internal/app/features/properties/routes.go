// internal/app/features/properties/routes.go
package properties

import (
	"github.com/dalemusser/vitrine/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the admin catalog under whatever base path the caller
// chooses (typically "/admin/properties" from bootstrap). Every route
// requires a privileged caller.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequirePrivileged)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)

		// Bulk
		pr.Post("/import", h.HandleImport)
		pr.Get("/export", h.HandleExport)
		pr.Post("/reload", h.HandleReload)

		pr.Get("/{id}", h.ServeDetail)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)

		// Single-flag transitions
		pr.Post("/{id}/visibility", h.HandleToggleVisibility)
		pr.Post("/{id}/featured", h.HandleToggleFeatured)
		pr.Post("/{id}/status", h.HandleChangeStatus)
	})

	return r
}

// SessionRoutes mounts the admin sign-in endpoints (typically under
// "/admin/session").
func SessionRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleSignIn)
	r.Delete("/", h.HandleSignOut)
	r.Get("/", h.ServeSession)
	return r
}
