package testutil

import (
	"context"
	"net/http"

	"github.com/dalemusser/vitrine/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Draft returns a valid sale draft with the given title.
func Draft(title string) models.Draft {
	d := models.NewDraft()
	d.Title = title
	d.PublicAddress = "Vila Mariana, São Paulo"
	d.FullAddress = "Rua Domingos de Morais, 100, apto 42"
	d.Price = 850000
	d.Kind = models.KindSale
	d.Bedrooms = 2
	d.Bathrooms = 1
	d.AreaSqMeters = 68
	d.PrimaryImage = "https://img.example.com/1.jpg"
	d.Images = []string{"https://img.example.com/1.jpg"}
	d.ContactPhone = "+55 11 99999-0000"
	d.ContactEmail = "corretor@example.com"
	return d
}

// RentalDraft returns a valid rent draft with the given title and price.
func RentalDraft(title string, price float64) models.Draft {
	d := Draft(title)
	d.Kind = models.KindRent
	d.Price = price
	return d
}

// Property returns an unsaved property built from Draft(title).
func Property(title string) models.Property {
	var p models.Property
	p.Apply(Draft(title))
	return p
}
