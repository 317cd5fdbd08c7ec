package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"oohdesk/domain/core"
	"oohdesk/domain/importer"
	"oohdesk/domain/inventory"
	"oohdesk/ports"
)

// pointRepository implements the InventoryRepository interface
type pointRepository struct {
	db *sqlx.DB
}

// NewPointRepository creates a new inventory point repository
func NewPointRepository(db *sqlx.DB) ports.InventoryRepository {
	return &pointRepository{db: db}
}

// BatchInsert inserts every row and its product lines in one transaction.
// Any failure rolls back the whole batch; no partial success is reported.
func (r *pointRepository) BatchInsert(ctx context.Context, exhibitorID core.ExhibitorID, rows []importer.ImportRow) ([]core.PointID, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("batch insert called with no rows")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const pointQuery = `INSERT INTO points (
		exhibitor_id, code, address, latitude, longitude,
		measurement, flow_count, type_tags, observation, reference_point,
		status, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'active', NOW(), NOW())
	RETURNING id`

	const productQuery = `INSERT INTO products (point_id, kind, price, period, created_at)
	VALUES ($1, $2, $3, NULLIF($4, ''), NOW())`

	ids := make([]core.PointID, 0, len(rows))
	for i, row := range rows {
		var id core.PointID
		err := tx.QueryRowContext(ctx, pointQuery,
			exhibitorID, row.Code, row.Address, row.Latitude, row.Longitude,
			nullableString(row.Measurement), row.FlowCount, pq.Array(row.TypeTags),
			nullableString(row.Observation), nullableString(row.ReferencePoint),
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to insert point %d (%s): %w", i, row.Code, err)
		}

		for _, product := range row.Products {
			if _, err := tx.ExecContext(ctx, productQuery, id, product.Kind, product.Price, string(product.Period)); err != nil {
				return nil, fmt.Errorf("failed to insert product %s for point %s: %w", product.Kind, row.Code, err)
			}
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit batch insert: %w", err)
	}
	return ids, nil
}

// ExistingCodes returns the subset of codes already present in the active
// inventory. Soft-deleted points do not count as collisions.
func (r *pointRepository) ExistingCodes(ctx context.Context, codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	const query = `SELECT code FROM points
	WHERE code = ANY($1) AND deleted_at IS NULL`

	var existing []string
	if err := r.db.SelectContext(ctx, &existing, query, pq.Array(codes)); err != nil {
		return nil, fmt.Errorf("failed to query existing codes: %w", err)
	}
	return existing, nil
}

// GetByID retrieves a single point for verification after import.
func (r *pointRepository) GetByID(ctx context.Context, id core.PointID) (*inventory.Point, error) {
	const query = `SELECT
		id, exhibitor_id, code, address, latitude, longitude,
		COALESCE(measurement, '') AS measurement, flow_count,
		COALESCE(observation, '') AS observation,
		COALESCE(reference_point, '') AS reference_point,
		status, created_at, type_tags
	FROM points WHERE id = $1 AND deleted_at IS NULL`

	row := r.db.QueryRowxContext(ctx, query, id)

	var p inventory.Point
	var tags pq.StringArray
	var createdAt time.Time
	err := row.Scan(
		&p.ID, &p.ExhibitorID, &p.Code, &p.Address, &p.Latitude, &p.Longitude,
		&p.Measurement, &p.FlowCount, &p.Observation, &p.ReferencePoint,
		&p.Status, &createdAt, &tags,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get point %d: %w", id, err)
	}
	p.CreatedAt = core.NewTimestamp(createdAt)
	p.TypeTags = []string(tags)
	return &p, nil
}

func nullableString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
