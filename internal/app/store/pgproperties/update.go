package pgproperties

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/vitrine/internal/app/catalog"
	"github.com/dalemusser/waffle/pantry/text"
)

// updateBuilder assembles an UPDATE with positional arguments. $1 is
// always the id.
type updateBuilder struct {
	sets  []string
	where []string
	args  []any
}

func newUpdateBuilder(id string) *updateBuilder {
	return &updateBuilder{
		where: []string{"id = $1"},
		args:  []any{id},
	}
}

func (b *updateBuilder) next(arg any) int {
	b.args = append(b.args, arg)
	return len(b.args)
}

func (b *updateBuilder) set(column string, arg any) {
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, b.next(arg)))
}

func (b *updateBuilder) whereVersion(v int64) {
	b.where = append(b.where, fmt.Sprintf("version = $%d", b.next(v)))
}

func (b *updateBuilder) build() (string, []any) {
	sets := append(b.sets, "version = version + 1")
	sql := "UPDATE " + Table + " SET " + strings.Join(sets, ", ") +
		" WHERE " + strings.Join(b.where, " AND ") +
		" RETURNING " + columns
	return sql, b.args
}

// buildUpdate translates a patch into SQL. Flag-only patches touch only
// their own column.
func buildUpdate(id string, patch catalog.Patch, expectedVersion int64, now time.Time) (string, []any) {
	b := newUpdateBuilder(id)

	if d := patch.Draft; d != nil {
		images := d.Images
		if images == nil {
			images = []string{}
		}
		b.set("title", d.Title)
		b.set("title_ci", text.Fold(d.Title))
		b.set("public_address", d.PublicAddress)
		b.set("full_address", d.FullAddress)
		b.set("price", d.Price)
		b.set("kind", string(d.Kind))
		b.set("bedrooms", d.Bedrooms)
		b.set("bathrooms", d.Bathrooms)
		b.set("area_sq_meters", d.AreaSqMeters)
		b.set("primary_image", d.PrimaryImage)
		b.set("images", images)
		b.set("description", d.Description)
		b.set("status", string(d.Status))
		b.set("is_public", d.IsPublic)
		b.set("featured", d.Featured)
		b.set("contact_phone", d.ContactPhone)
		b.set("contact_email", d.ContactEmail)
	}
	if patch.IsPublic != nil {
		b.set("is_public", *patch.IsPublic)
	}
	if patch.Featured != nil {
		b.set("featured", *patch.Featured)
	}
	if patch.Status != nil {
		b.set("status", string(*patch.Status))
	}
	b.set("updated_at", now)

	if expectedVersion > 0 {
		b.whereVersion(expectedVersion)
	}
	return b.build()
}
