// internal/domain/models/propertytypes.go
package models

import "strings"

// ListingKind says how a property's price is interpreted.
type ListingKind string

// Canonical listing kinds stored in Property.Kind.
const (
	KindRent ListingKind = "rent" // price is per month
	KindSale ListingKind = "sale" // price is the total sale price
)

// ListingKinds is the full set of allowed listing kinds.
var ListingKinds = []ListingKind{KindRent, KindSale}

// Valid reports whether k is one of ListingKinds.
func (k ListingKind) Valid() bool {
	return k == KindRent || k == KindSale
}

// Status is the lifecycle state of a listing. Archived listings are kept,
// there is no soft delete.
type Status string

const (
	StatusActive   Status = "active"
	StatusPending  Status = "pending"
	StatusArchived Status = "archived"
)

// Statuses is the full set of allowed lifecycle states.
var Statuses = []Status{StatusActive, StatusPending, StatusArchived}

// DefaultStatus is used when a draft does not carry a status.
const DefaultStatus = StatusActive

// Valid reports whether s is one of Statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusArchived:
		return true
	}
	return false
}

// ParseListingKind maps a canonical kind (any case) to a ListingKind.
func ParseListingKind(s string) (ListingKind, bool) {
	k := ListingKind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Valid()
}

// ParseStatus maps a canonical status (any case) to a Status.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}
