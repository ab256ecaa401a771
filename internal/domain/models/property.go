// internal/domain/models/property.go
package models

import "time"

// Property is a real-estate listing in the catalog.
//
// ID is assigned by the store on insert and never changes afterwards.
// FullAddress and the contact fields are only shown to privileged viewers;
// use Redacted before handing a Property to anyone else.
type Property struct {
	ID string `bson:"_id" json:"id"`

	Title         string `bson:"title" json:"title"`
	TitleCI       string `bson:"title_ci" json:"-"` // folded copy for indexed lookups
	PublicAddress string `bson:"public_address" json:"public_address"`
	FullAddress   string `bson:"full_address,omitempty" json:"full_address,omitempty"`

	Price        float64     `bson:"price" json:"price"`
	Kind         ListingKind `bson:"kind" json:"kind"`
	Bedrooms     int         `bson:"bedrooms" json:"bedrooms"`
	Bathrooms    int         `bson:"bathrooms" json:"bathrooms"`
	AreaSqMeters float64     `bson:"area_sq_meters" json:"area_sq_meters"`

	PrimaryImage string   `bson:"primary_image" json:"primary_image"`
	Images       []string `bson:"images" json:"images"`
	Description  string   `bson:"description,omitempty" json:"description,omitempty"`

	Status   Status `bson:"status" json:"status"`
	IsPublic bool   `bson:"is_public" json:"is_public"`
	Featured bool   `bson:"featured" json:"featured"`

	ContactPhone string `bson:"contact_phone,omitempty" json:"contact_phone,omitempty"`
	ContactEmail string `bson:"contact_email,omitempty" json:"contact_email,omitempty"`

	// Version increases with every confirmed write.
	Version int64 `bson:"version" json:"version"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// EffectiveFullAddress returns FullAddress, falling back to PublicAddress.
func (p Property) EffectiveFullAddress() string {
	if p.FullAddress != "" {
		return p.FullAddress
	}
	return p.PublicAddress
}

// Privileged returns the copy shown to privileged viewers, with
// FullAddress defaulted to PublicAddress when absent.
func (p Property) Privileged() Property {
	p.FullAddress = p.EffectiveFullAddress()
	return p
}

// Redacted returns a copy without the privileged-only fields.
func (p Property) Redacted() Property {
	p.FullAddress = ""
	p.ContactPhone = ""
	p.ContactEmail = ""
	return p
}

// Clone returns a deep copy (Images is not shared).
func (p Property) Clone() Property {
	if p.Images != nil {
		p.Images = append([]string(nil), p.Images...)
	}
	return p
}

// Apply copies the mutable fields of d onto p. ID, Version and timestamps
// are left alone.
func (p *Property) Apply(d Draft) {
	p.Title = d.Title
	p.PublicAddress = d.PublicAddress
	p.FullAddress = d.FullAddress
	p.Price = d.Price
	p.Kind = d.Kind
	p.Bedrooms = d.Bedrooms
	p.Bathrooms = d.Bathrooms
	p.AreaSqMeters = d.AreaSqMeters
	p.PrimaryImage = d.PrimaryImage
	p.Images = append([]string{}, d.Images...)
	p.Description = d.Description
	p.Status = d.Status
	p.IsPublic = d.IsPublic
	p.Featured = d.Featured
	p.ContactPhone = d.ContactPhone
	p.ContactEmail = d.ContactEmail
}

// Draft carries the mutable fields of a Property, as submitted by an admin
// form, the JSON API or a workbook row.
type Draft struct {
	Title         string      `json:"title"`
	PublicAddress string      `json:"public_address"`
	FullAddress   string      `json:"full_address,omitempty"`
	Price         float64     `json:"price"`
	Kind          ListingKind `json:"kind"`
	Bedrooms      int         `json:"bedrooms"`
	Bathrooms     int         `json:"bathrooms"`
	AreaSqMeters  float64     `json:"area_sq_meters"`
	PrimaryImage  string      `json:"primary_image"`
	Images        []string    `json:"images,omitempty"`
	Description   string      `json:"description,omitempty"`
	Status        Status      `json:"status,omitempty"`
	IsPublic      bool        `json:"is_public"`
	Featured      bool        `json:"featured"`
	ContactPhone  string      `json:"contact_phone,omitempty"`
	ContactEmail  string      `json:"contact_email,omitempty"`
}

// NewDraft returns a Draft with the catalog defaults: active and public.
func NewDraft() Draft {
	return Draft{Status: DefaultStatus, IsPublic: true}
}

// DraftOf returns the mutable fields of p as a Draft.
func DraftOf(p Property) Draft {
	return Draft{
		Title:         p.Title,
		PublicAddress: p.PublicAddress,
		FullAddress:   p.FullAddress,
		Price:         p.Price,
		Kind:          p.Kind,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		AreaSqMeters:  p.AreaSqMeters,
		PrimaryImage:  p.PrimaryImage,
		Images:        append([]string{}, p.Images...),
		Description:   p.Description,
		Status:        p.Status,
		IsPublic:      p.IsPublic,
		Featured:      p.Featured,
		ContactPhone:  p.ContactPhone,
		ContactEmail:  p.ContactEmail,
	}
}
