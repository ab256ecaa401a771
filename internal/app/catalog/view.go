package catalog

import (
	"sync"

	"github.com/dalemusser/vitrine/internal/app/system/filter"
	"github.com/dalemusser/vitrine/internal/app/system/paging"
	"github.com/dalemusser/vitrine/internal/app/system/workbook"
	"github.com/dalemusser/vitrine/internal/domain/models"
)

// View is the filter/search/page state of one catalog screen. It reads
// the catalog on every call, so it always reflects confirmed writes.
type View struct {
	cat      *Catalog
	pageSize int
	scope    func(filter.Criteria) filter.Criteria

	mu       sync.Mutex
	criteria filter.Criteria
	query    string
	page     int
}

// NewPublicView returns a view for anonymous visitors: non-public listings
// are never included and the status defaults to active.
func NewPublicView(cat *Catalog, pageSize int) *View {
	return newView(cat, pageSize, publicScope)
}

// NewPrivilegedView returns a paged view without visibility restrictions.
func NewPrivilegedView(cat *Catalog, pageSize int) *View {
	return newView(cat, pageSize, nil)
}

// NewAdminView returns an unrestricted view with every match on one page.
func NewAdminView(cat *Catalog) *View {
	return newView(cat, paging.Unlimited, nil)
}

func newView(cat *Catalog, pageSize int, scope func(filter.Criteria) filter.Criteria) *View {
	return &View{cat: cat, pageSize: pageSize, scope: scope, page: 1}
}

func publicScope(c filter.Criteria) filter.Criteria {
	c.IsPublic = filter.Bool(true)
	if c.Status == nil || string(*c.Status) == filter.All {
		c.Status = filter.StatusOf(models.StatusActive)
	}
	return c
}

// ApplyFilters replaces the numeric/categorical constraints and resets the
// view to page 1. c.Query is ignored; use SetSearchQuery.
func (v *View) ApplyFilters(c filter.Criteria) {
	v.mu.Lock()
	defer v.mu.Unlock()
	c.Query = ""
	v.criteria = c
	v.page = 1
}

// SetSearchQuery replaces the free-text query and resets the view to page 1.
func (v *View) SetSearchQuery(q string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query = q
	v.page = 1
}

// Criteria returns the effective criteria, including the view's scope.
func (v *View) Criteria() filter.Criteria {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.effective()
}

func (v *View) effective() filter.Criteria {
	c := v.criteria.WithQuery(v.query)
	if v.scope != nil {
		c = v.scope(c)
	}
	return c
}

// Results returns every matching property in catalog order.
func (v *View) Results() []models.Property {
	c := v.Criteria()
	return filter.Apply(v.cat.All(), c)
}

// GetPage returns page n (clamped) and makes it the current page.
func (v *View) GetPage(n int) paging.Page[models.Property] {
	p := paging.Paginate(v.Results(), v.pageSize, n)
	v.mu.Lock()
	v.page = p.Number
	v.mu.Unlock()
	return p
}

// CurrentPage returns the current page.
func (v *View) CurrentPage() paging.Page[models.Property] {
	v.mu.Lock()
	n := v.page
	v.mu.Unlock()
	return v.GetPage(n)
}

// PageNumber returns the current page number.
func (v *View) PageNumber() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

// Export renders every result of the view, not just the current page.
func (v *View) Export(filename string, f workbook.Format) (Download, error) {
	return Export(v.Results(), filename, f)
}
