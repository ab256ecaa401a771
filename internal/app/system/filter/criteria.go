// Package filter holds the single predicate used to select properties by
// free text and numeric/categorical criteria. The public listing, the
// rentals listing and the admin table all filter through Match.
package filter

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dalemusser/vitrine/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

// All is the sentinel a UI sends for "no constraint" on a categorical
// field. It is never compared against a property value.
const All = "all"

// Criteria is an ephemeral filter. A nil field is unconstrained; a non-nil
// zero (e.g. MinBedrooms = 0) is a real constraint.
type Criteria struct {
	Query string `json:"q,omitempty"`

	MinPrice     *float64 `json:"min_price,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
	MinBedrooms  *int     `json:"min_bedrooms,omitempty"`
	MinBathrooms *int     `json:"min_bathrooms,omitempty"`
	MinArea      *float64 `json:"min_area,omitempty"`
	MaxArea      *float64 `json:"max_area,omitempty"`

	Kind     *models.ListingKind `json:"kind,omitempty"`
	Status   *models.Status      `json:"status,omitempty"`
	IsPublic *bool               `json:"is_public,omitempty"`
}

// Float returns a pointer to v, for building Criteria literals.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// KindOf returns a pointer to k.
func KindOf(k models.ListingKind) *models.ListingKind { return &k }

// StatusOf returns a pointer to s.
func StatusOf(s models.Status) *models.Status { return &s }

// IsZero reports whether c constrains nothing.
func (c Criteria) IsZero() bool {
	return strings.TrimSpace(c.Query) == "" && !c.HasConstraints()
}

// HasConstraints reports whether any numeric/categorical field is set.
func (c Criteria) HasConstraints() bool {
	return c.MinPrice != nil || c.MaxPrice != nil ||
		c.MinBedrooms != nil || c.MinBathrooms != nil ||
		c.MinArea != nil || c.MaxArea != nil ||
		c.Kind != nil || c.Status != nil || c.IsPublic != nil
}

// WithQuery returns a copy of c with the search text replaced.
func (c Criteria) WithQuery(q string) Criteria {
	c.Query = q
	return c
}

// Query parameter names understood by FromQuery and produced by Values.
const (
	ParamQuery        = "q"
	ParamMinPrice     = "min_price"
	ParamMaxPrice     = "max_price"
	ParamMinBedrooms  = "min_bedrooms"
	ParamMinBathrooms = "min_bathrooms"
	ParamMinArea      = "min_area"
	ParamMaxArea      = "max_area"
	ParamKind         = "kind"
	ParamStatus       = "status"
	ParamIsPublic     = "is_public"
)

// FromQuery parses criteria from URL query values. Blank values, "all" and
// values that do not parse are treated as unset.
func FromQuery(v url.Values) Criteria {
	return parse(func(key string) string { return strings.TrimSpace(v.Get(key)) })
}

// FromRequest parses criteria from the request's query string.
func FromRequest(r *http.Request) Criteria {
	return parse(func(key string) string { return query.Get(r, key) })
}

func parse(get func(string) string) Criteria {
	c := Criteria{Query: get(ParamQuery)}
	c.MinPrice = parseFloat(get(ParamMinPrice))
	c.MaxPrice = parseFloat(get(ParamMaxPrice))
	c.MinBedrooms = parseInt(get(ParamMinBedrooms))
	c.MinBathrooms = parseInt(get(ParamMinBathrooms))
	c.MinArea = parseFloat(get(ParamMinArea))
	c.MaxArea = parseFloat(get(ParamMaxArea))

	if s := get(ParamKind); !isAll(s) {
		if k, ok := models.ParseListingKind(s); ok {
			c.Kind = &k
		}
	}
	if s := get(ParamStatus); !isAll(s) {
		if st, ok := models.ParseStatus(s); ok {
			c.Status = &st
		}
	}
	if s := get(ParamIsPublic); !isAll(s) {
		if b, err := strconv.ParseBool(s); err == nil {
			c.IsPublic = &b
		}
	}
	return c
}

// Values encodes c back into query parameters. Unset fields are omitted.
func (c Criteria) Values() url.Values {
	v := url.Values{}
	if q := strings.TrimSpace(c.Query); q != "" {
		v.Set(ParamQuery, q)
	}
	setFloat := func(key string, f *float64) {
		if f != nil {
			v.Set(key, strconv.FormatFloat(*f, 'f', -1, 64))
		}
	}
	setInt := func(key string, n *int) {
		if n != nil {
			v.Set(key, strconv.Itoa(*n))
		}
	}
	setFloat(ParamMinPrice, c.MinPrice)
	setFloat(ParamMaxPrice, c.MaxPrice)
	setInt(ParamMinBedrooms, c.MinBedrooms)
	setInt(ParamMinBathrooms, c.MinBathrooms)
	setFloat(ParamMinArea, c.MinArea)
	setFloat(ParamMaxArea, c.MaxArea)
	if c.Kind != nil {
		v.Set(ParamKind, string(*c.Kind))
	}
	if c.Status != nil {
		v.Set(ParamStatus, string(*c.Status))
	}
	if c.IsPublic != nil {
		v.Set(ParamIsPublic, strconv.FormatBool(*c.IsPublic))
	}
	return v
}

func isAll(s string) bool {
	return s == "" || strings.EqualFold(s, All)
}

func parseFloat(s string) *float64 {
	if isAll(s) {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseInt(s string) *int {
	if isAll(s) {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
