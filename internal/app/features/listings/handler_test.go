package listings_test

import (
	"net/http"
	"testing"

	uierrors "github.com/dalemusser/vitrine/internal/app/features/errors"
	"github.com/dalemusser/vitrine/internal/app/features/listings"
	"github.com/dalemusser/vitrine/internal/app/catalog"
	"github.com/dalemusser/vitrine/internal/app/system/paging"
	"github.com/dalemusser/vitrine/internal/domain/models"
	"github.com/dalemusser/vitrine/internal/testutil"
	"go.uber.org/zap"
)

func prop(id, title string, kind models.ListingKind, price float64, public bool) models.Property {
	p := testutil.Property(title)
	p.ID = id
	p.Kind = kind
	p.Price = price
	p.IsPublic = public
	p.Version = 1
	return p
}

func newHandler(pageSize int) *listings.Handler {
	cat := catalog.New(
		prop("1", "Apartamento em Pinheiros", models.KindSale, 850000, true),
		prop("2", "Kitnet perto da USP", models.KindRent, 1800, true),
		prop("3", "Casa em condomínio", models.KindSale, 1200000, false),
		prop("4", "Studio mobiliado", models.KindRent, 2500, true),
	)
	logger := zap.NewNop()
	return listings.NewHandler(cat, pageSize, uierrors.NewErrorLogger(logger), logger)
}

func get(t *testing.T, h *listings.Handler, target string, privileged bool) *testutil.ResponseRecorder {
	t.Helper()
	req := testutil.NewRequest(http.MethodGet, target)
	if privileged {
		req = testutil.Privileged(req)
	}
	rec := testutil.NewRecorder()
	listings.Routes(h).ServeHTTP(rec, req)
	return rec
}

func ids(items []models.Property) []string {
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = p.ID
	}
	return out
}

func TestServeList(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		privileged bool
		want       []string
	}{
		{"public hides private listings", "/", false, []string{"1", "2", "4"}},
		{"privileged sees everything", "/", true, []string{"1", "2", "3", "4"}},
		{"price window", "/?min_price=1000&max_price=3000", false, []string{"2", "4"}},
		{"search folds accents", "/?q=condominio", true, []string{"3"}},
		{"search pinheiros", "/?q=Pinheiros", false, []string{"1"}},
		{"rentals fixes kind", "/rentals?kind=sale", false, []string{"2", "4"}},
		{"rentals with price", "/rentals?max_price=2000", false, []string{"2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newHandler(0), tt.target, tt.privileged)
			rec.AssertStatus(t, http.StatusOK)

			var page paging.Page[models.Property]
			rec.DecodeJSON(t, &page)
			got := ids(page.Items)
			if len(got) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("ids = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestServeList_RedactsForPublic(t *testing.T) {
	rec := get(t, newHandler(0), "/", false)
	var page paging.Page[models.Property]
	rec.DecodeJSON(t, &page)
	for _, p := range page.Items {
		if p.FullAddress != "" || p.ContactEmail != "" || p.ContactPhone != "" {
			t.Errorf("listing %s leaked private fields: %+v", p.ID, p)
		}
	}

	rec = get(t, newHandler(0), "/", true)
	rec.DecodeJSON(t, &page)
	if page.Items[0].ContactEmail == "" {
		t.Error("privileged caller should see contact fields")
	}
}

func TestServeList_Paging(t *testing.T) {
	h := newHandler(2)

	rec := get(t, h, "/?page=2", false)
	var page paging.Page[models.Property]
	rec.DecodeJSON(t, &page)
	if page.Number != 2 || page.TotalPages != 2 || page.TotalItems != 3 {
		t.Errorf("page = %+v", page)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "4" {
		t.Errorf("page 2 items = %v", ids(page.Items))
	}

	rec = get(t, h, "/?page=99", false)
	rec.DecodeJSON(t, &page)
	if page.Number != 2 {
		t.Errorf("out of range page clamped to %d, want 2", page.Number)
	}
}

func TestServeDetail(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		privileged bool
		want       int
	}{
		{"public listing", "1", false, http.StatusOK},
		{"private listing hidden", "3", false, http.StatusNotFound},
		{"private listing for admin", "3", true, http.StatusOK},
		{"missing", "nope", true, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newHandler(0), "/"+tt.id, tt.privileged)
			rec.AssertStatus(t, tt.want)
		})
	}
}

func TestPrivileged_FullAddressDefaultsToPublic(t *testing.T) {
	p := prop("9", "Sobrado sem número", models.KindSale, 640000, true)
	p.FullAddress = ""
	logger := zap.NewNop()
	h := listings.NewHandler(catalog.New(p), 0, uierrors.NewErrorLogger(logger), logger)

	rec := get(t, h, "/9", true)
	rec.AssertStatus(t, http.StatusOK)
	var got models.Property
	rec.DecodeJSON(t, &got)
	if got.FullAddress != p.PublicAddress {
		t.Errorf("detail full_address = %q, want %q", got.FullAddress, p.PublicAddress)
	}

	rec = get(t, h, "/", true)
	var page paging.Page[models.Property]
	rec.DecodeJSON(t, &page)
	if len(page.Items) != 1 || page.Items[0].FullAddress != p.PublicAddress {
		t.Errorf("list items = %+v, want full_address %q", page.Items, p.PublicAddress)
	}

	rec = get(t, h, "/9", false)
	var public models.Property
	rec.DecodeJSON(t, &public)
	if public.FullAddress != "" {
		t.Errorf("public detail full_address = %q, want it hidden", public.FullAddress)
	}
}
