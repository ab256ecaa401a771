// Package pgproperties implements catalog.Store on PostgreSQL through a
// pgx connection pool.
package pgproperties

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/vitrine/internal/app/catalog"
	"github.com/dalemusser/vitrine/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const columns = `id, title, public_address, full_address, price, kind, bedrooms, bathrooms,
	area_sq_meters, primary_image, images, description, status, is_public, featured,
	contact_phone, contact_email, version, created_at, updated_at`

type Store struct {
	pool *pgxpool.Pool
}

var _ catalog.Store = (*Store)(nil)

// New wraps pool. It fails on a nil pool.
func New(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, errors.New("pgproperties: pool cannot be nil")
	}
	return &Store{pool: pool}, nil
}

// Select returns every property ordered by creation time.
func (s *Store) Select(ctx context.Context) ([]models.Property, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+columns+" FROM "+Table+" ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("select properties: %w", err)
	}
	defer rows.Close()

	out := []models.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select properties: %w", err)
	}
	return out, nil
}

// Insert stores p under a fresh UUID with Version 1.
func (s *Store) Insert(ctx context.Context, p models.Property) (models.Property, error) {
	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.TitleCI = text.Fold(p.Title)
	p.Version = 1
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Images == nil {
		p.Images = []string{}
	}

	_, err := s.pool.Exec(ctx, `INSERT INTO `+Table+` (
		id, title, title_ci, public_address, full_address, price, kind, bedrooms, bathrooms,
		area_sq_meters, primary_image, images, description, status, is_public, featured,
		contact_phone, contact_email, version, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		p.ID, p.Title, p.TitleCI, p.PublicAddress, p.FullAddress, p.Price, string(p.Kind),
		p.Bedrooms, p.Bathrooms, p.AreaSqMeters, p.PrimaryImage, p.Images, p.Description,
		string(p.Status), p.IsPublic, p.Featured, p.ContactPhone, p.ContactEmail,
		p.Version, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return models.Property{}, fmt.Errorf("insert property: %w", err)
	}
	return p, nil
}

// Update applies patch in a single statement. A non-zero expectedVersion
// joins the WHERE clause, so a stale write returns no row.
func (s *Store) Update(ctx context.Context, id string, patch catalog.Patch, expectedVersion int64) (models.Property, error) {
	sql, args := buildUpdate(id, patch, expectedVersion, time.Now().UTC())
	p, err := scanProperty(s.pool.QueryRow(ctx, sql, args...))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return models.Property{}, err
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM "+Table+" WHERE id = $1)", id).Scan(&exists); err != nil {
		return models.Property{}, fmt.Errorf("update property %s: %w", id, err)
	}
	if !exists {
		return models.Property{}, catalog.ErrNotFound
	}
	return models.Property{}, fmt.Errorf("property %s: %w", id, catalog.ErrConflict)
}

// Delete removes a property by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM "+Table+" WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete property %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func scanProperty(row pgx.Row) (models.Property, error) {
	var (
		p      models.Property
		kind   string
		status string
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.PublicAddress, &p.FullAddress, &p.Price, &kind,
		&p.Bedrooms, &p.Bathrooms, &p.AreaSqMeters, &p.PrimaryImage, &p.Images,
		&p.Description, &status, &p.IsPublic, &p.Featured, &p.ContactPhone,
		&p.ContactEmail, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return models.Property{}, err
	}
	p.Kind = models.ListingKind(kind)
	p.Status = models.Status(status)
	p.TitleCI = text.Fold(p.Title)
	return p, nil
}
