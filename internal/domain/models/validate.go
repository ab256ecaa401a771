package models

import (
	"fmt"
	"math"
	"net/mail"
	"strings"

	"github.com/dalemusser/waffle/pantry/urlutil"
)

// FieldError describes one invalid field of a Draft.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Reason
}

// Normalize trims string fields, drops blank image refs and fills the
// status default. It does not touch IsPublic/Featured: callers decide those.
func Normalize(d Draft) Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.PublicAddress = strings.TrimSpace(d.PublicAddress)
	d.FullAddress = strings.TrimSpace(d.FullAddress)
	d.PrimaryImage = strings.TrimSpace(d.PrimaryImage)
	d.Description = strings.TrimSpace(d.Description)
	d.ContactPhone = strings.TrimSpace(d.ContactPhone)
	d.ContactEmail = strings.ToLower(strings.TrimSpace(d.ContactEmail))

	imgs := make([]string, 0, len(d.Images))
	for _, img := range d.Images {
		if img = strings.TrimSpace(img); img != "" {
			imgs = append(imgs, img)
		}
	}
	d.Images = imgs

	if d.Status == "" {
		d.Status = DefaultStatus
	}
	return d
}

// Validate checks d against the Property invariants and returns every
// violation found, in field order. A nil result means d is valid.
func Validate(d Draft) []FieldError {
	var errs []FieldError
	add := func(field, format string, args ...any) {
		errs = append(errs, FieldError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(d.Title) == "" {
		add("title", "is required")
	}
	if strings.TrimSpace(d.PublicAddress) == "" {
		add("public_address", "is required")
	}
	if !positive(d.Price) {
		add("price", "must be greater than zero")
	}
	if !d.Kind.Valid() {
		add("kind", "must be 'rent' or 'sale'")
	}
	if d.Bedrooms < 0 {
		add("bedrooms", "must not be negative")
	}
	if d.Bathrooms < 0 {
		add("bathrooms", "must not be negative")
	}
	if !positive(d.AreaSqMeters) {
		add("area_sq_meters", "must be greater than zero")
	}
	if strings.TrimSpace(d.PrimaryImage) == "" {
		add("primary_image", "is required")
	} else if !urlutil.IsValidAbsHTTPURL(d.PrimaryImage) {
		add("primary_image", "must be an absolute http(s) URL")
	}
	for i, img := range d.Images {
		if !urlutil.IsValidAbsHTTPURL(img) {
			add(fmt.Sprintf("images[%d]", i), "must be an absolute http(s) URL")
		}
	}
	if d.Status != "" && !d.Status.Valid() {
		add("status", "must be 'active', 'pending' or 'archived'")
	}
	if d.ContactEmail != "" {
		if _, err := mail.ParseAddress(d.ContactEmail); err != nil {
			add("contact_email", "is not a valid email address")
		}
	}
	return errs
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1) && !math.IsNaN(v)
}
