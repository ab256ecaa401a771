package pgproperties

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Table is the name of the PostgreSQL table holding properties.
const Table = "properties"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS properties (
	id             TEXT PRIMARY KEY,
	title          TEXT NOT NULL,
	title_ci       TEXT NOT NULL,
	public_address TEXT NOT NULL,
	full_address   TEXT NOT NULL DEFAULT '',
	price          DOUBLE PRECISION NOT NULL,
	kind           TEXT NOT NULL,
	bedrooms       INTEGER NOT NULL DEFAULT 0,
	bathrooms      INTEGER NOT NULL DEFAULT 0,
	area_sq_meters DOUBLE PRECISION NOT NULL,
	primary_image  TEXT NOT NULL DEFAULT '',
	images         TEXT[] NOT NULL DEFAULT '{}',
	description    TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL,
	is_public      BOOLEAN NOT NULL DEFAULT TRUE,
	featured       BOOLEAN NOT NULL DEFAULT FALSE,
	contact_phone  TEXT NOT NULL DEFAULT '',
	contact_email  TEXT NOT NULL DEFAULT '',
	version        BIGINT NOT NULL DEFAULT 1,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_properties_created ON properties (created_at, id);
CREATE INDEX IF NOT EXISTS idx_properties_status_public ON properties (status, is_public);
CREATE INDEX IF NOT EXISTS idx_properties_title_ci ON properties (title_ci);
`

// EnsureSchema creates the properties table and its indexes when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure %s schema: %w", Table, err)
	}
	return nil
}
