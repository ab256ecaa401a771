package catalog

import (
	"context"

	"github.com/dalemusser/vitrine/internal/domain/models"
)

// Store is the remote system of record for properties.
//
// Insert assigns ID, sets Version to 1 and stamps the timestamps. Update
// applies patch and bumps Version; when expectedVersion is non-zero and
// does not match the stored version it returns ErrConflict. Update and
// Delete return ErrNotFound for an unknown id.
type Store interface {
	Select(ctx context.Context) ([]models.Property, error)
	Insert(ctx context.Context, p models.Property) (models.Property, error)
	Update(ctx context.Context, id string, patch Patch, expectedVersion int64) (models.Property, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// Patch is a partial write. Draft replaces every mutable field; the
// pointer fields each replace a single flag.
type Patch struct {
	Draft    *models.Draft
	IsPublic *bool
	Featured *bool
	Status   *models.Status
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Draft == nil && p.IsPublic == nil && p.Featured == nil && p.Status == nil
}

// ApplyTo writes the patch onto prop. Version and timestamps are the
// store's business.
func (p Patch) ApplyTo(prop *models.Property) {
	if p.Draft != nil {
		prop.Apply(*p.Draft)
	}
	if p.IsPublic != nil {
		prop.IsPublic = *p.IsPublic
	}
	if p.Featured != nil {
		prop.Featured = *p.Featured
	}
	if p.Status != nil {
		prop.Status = *p.Status
	}
}
