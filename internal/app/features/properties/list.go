// internal/app/features/properties/list.go
package properties

import (
	"net/http"

	"github.com/dalemusser/vitrine/internal/app/catalog"
	uierrors "github.com/dalemusser/vitrine/internal/app/features/errors"
	"github.com/dalemusser/vitrine/internal/app/system/filter"
	"github.com/dalemusser/vitrine/internal/app/system/paging"
	"github.com/go-chi/chi/v5"
)

// adminView builds an unrestricted view from the request's filters. The
// page size is unlimited unless page_size is given.
func (h *Handler) adminView(r *http.Request) *catalog.View {
	c := filter.FromRequest(r)
	var v *catalog.View
	if size := paging.ParsePageSize(r, paging.Unlimited); size > 0 {
		v = catalog.NewPrivilegedView(h.Sync.Catalog(), size)
	} else {
		v = catalog.NewAdminView(h.Sync.Catalog())
	}
	v.ApplyFilters(c)
	v.SetSearchQuery(c.Query)
	return v
}

// ServeList handles GET /admin/properties.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	page := h.adminView(r).GetPage(paging.ParsePage(r))
	for i := range page.Items {
		page.Items[i] = page.Items[i].Privileged()
	}
	uierrors.WriteJSON(w, http.StatusOK, page)
}

// ServeDetail handles GET /admin/properties/{id}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Sync.Catalog().Get(chi.URLParam(r, "id"))
	if !ok {
		h.ErrLog.Log(w, r, "property not found", catalog.ErrNotFound)
		return
	}
	setETag(w, p)
	uierrors.WriteJSON(w, http.StatusOK, p.Privileged())
}
