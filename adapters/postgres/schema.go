package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is the DDL for the tables this module owns. Statements are
// idempotent so EnsureSchema can run on every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS points (
		id BIGSERIAL PRIMARY KEY,
		exhibitor_id BIGINT NOT NULL,
		code TEXT NOT NULL,
		address TEXT NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		measurement TEXT,
		flow_count INTEGER,
		type_tags TEXT[] NOT NULL DEFAULT '{}',
		observation TEXT,
		reference_point TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS points_code_active_idx
		ON points (code) WHERE deleted_at IS NULL`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		point_id BIGINT NOT NULL REFERENCES points(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		price NUMERIC(12, 2) NOT NULL,
		period TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS point_images (
		id BIGSERIAL PRIMARY KEY,
		point_id BIGINT NOT NULL REFERENCES points(id) ON DELETE CASCADE,
		storage_key TEXT NOT NULL,
		ordering INTEGER NOT NULL DEFAULT 0,
		is_cover BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS map_layers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		visible BOOLEAN NOT NULL DEFAULT TRUE,
		markers JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the module's tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
