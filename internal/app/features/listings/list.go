// internal/app/features/listings/list.go
package listings

import (
	"net/http"

	"github.com/dalemusser/vitrine/internal/app/catalog"
	uierrors "github.com/dalemusser/vitrine/internal/app/features/errors"
	"github.com/dalemusser/vitrine/internal/app/system/auth"
	"github.com/dalemusser/vitrine/internal/app/system/filter"
	"github.com/dalemusser/vitrine/internal/app/system/paging"
	"github.com/dalemusser/vitrine/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ServeList handles GET /listings.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, filter.FromRequest(r))
}

// ServeRentals handles GET /listings/rentals. The kind filter is fixed to
// rent whatever the query says.
func (h *Handler) ServeRentals(w http.ResponseWriter, r *http.Request) {
	c := filter.FromRequest(r)
	c.Kind = filter.KindOf(models.KindRent)
	h.serve(w, r, c)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, c filter.Criteria) {
	privileged := auth.IsPrivileged(r)

	var v *catalog.View
	if privileged {
		v = catalog.NewPrivilegedView(h.Catalog, h.PageSize)
	} else {
		v = catalog.NewPublicView(h.Catalog, h.PageSize)
	}
	v.ApplyFilters(c)
	v.SetSearchQuery(c.Query)
	page := v.GetPage(paging.ParsePage(r))

	for i := range page.Items {
		if privileged {
			page.Items[i] = page.Items[i].Privileged()
		} else {
			page.Items[i] = page.Items[i].Redacted()
		}
	}

	h.Log.Debug("listings served",
		zap.Bool("privileged", privileged),
		zap.Int("page", page.Number),
		zap.Int("total_items", page.TotalItems))
	uierrors.WriteJSON(w, http.StatusOK, page)
}

// ServeDetail handles GET /listings/{id}. Non-public listings are reported
// as missing to public callers.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := h.Catalog.Get(id)
	privileged := auth.IsPrivileged(r)
	if !ok || (!privileged && !p.IsPublic) {
		h.ErrLog.Log(w, r, "listing not found", catalog.ErrNotFound)
		return
	}
	if privileged {
		p = p.Privileged()
	} else {
		p = p.Redacted()
	}
	uierrors.WriteJSON(w, http.StatusOK, p)
}
