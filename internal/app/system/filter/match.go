package filter

import (
	"strings"
	"unicode"

	"github.com/dalemusser/vitrine/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Match reports whether p satisfies c: the text query (if any) AND every
// set numeric/categorical constraint.
func Match(p models.Property, c Criteria) bool {
	return matchText(p, c.Query) && matchConstraints(p, c)
}

// Apply returns the elements of items that Match c, in their original
// order. The result never aliases items.
func Apply(items []models.Property, c Criteria) []models.Property {
	q := foldQuery(c.Query)
	out := make([]models.Property, 0, len(items))
	for _, p := range items {
		if matchFolded(p, q) && matchConstraints(p, c) {
			out = append(out, p)
		}
	}
	return out
}

func matchText(p models.Property, query string) bool {
	return matchFolded(p, foldQuery(query))
}

func foldQuery(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return ""
	}
	return Fold(q)
}

// Fold lowercases s and strips combining marks, so "São João" and
// "sao joao" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return text.Fold(stripped)
}

// matchFolded tests an already folded query against title, public address
// and description.
func matchFolded(p models.Property, q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(Fold(p.Title), q) {
		return true
	}
	if strings.Contains(Fold(p.PublicAddress), q) {
		return true
	}
	return p.Description != "" && strings.Contains(Fold(p.Description), q)
}

func matchConstraints(p models.Property, c Criteria) bool {
	if c.MinPrice != nil && p.Price < *c.MinPrice {
		return false
	}
	if c.MaxPrice != nil && p.Price > *c.MaxPrice {
		return false
	}
	if c.MinBedrooms != nil && p.Bedrooms < *c.MinBedrooms {
		return false
	}
	if c.MinBathrooms != nil && p.Bathrooms < *c.MinBathrooms {
		return false
	}
	if c.MinArea != nil && p.AreaSqMeters < *c.MinArea {
		return false
	}
	if c.MaxArea != nil && p.AreaSqMeters > *c.MaxArea {
		return false
	}
	if c.Kind != nil && string(*c.Kind) != All && p.Kind != *c.Kind {
		return false
	}
	if c.Status != nil && string(*c.Status) != All && p.Status != *c.Status {
		return false
	}
	if c.IsPublic != nil && p.IsPublic != *c.IsPublic {
		return false
	}
	return true
}
