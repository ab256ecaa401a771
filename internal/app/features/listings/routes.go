// internal/app/features/listings/routes.go
package listings

import "github.com/go-chi/chi/v5"

// Routes mounts the listing endpoints (typically under "/listings").
// Visibility is decided per request from auth.IsPrivileged, so the
// router must sit behind SessionManager.Load.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/rentals", h.ServeRentals)
	r.Get("/{id}", h.ServeDetail)
	return r
}
