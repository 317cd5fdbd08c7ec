package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"oohdesk/domain/core"
	"oohdesk/domain/geo"
	"oohdesk/ports"
)

// layerRepository implements the LayerRepository interface
type layerRepository struct {
	db *sqlx.DB
}

// NewLayerRepository creates a new map layer repository
func NewLayerRepository(db *sqlx.DB) ports.LayerRepository {
	return &layerRepository{db: db}
}

// GetLayer retrieves a layer with its marker list.
func (r *layerRepository) GetLayer(ctx context.Context, id core.LayerID) (*geo.Layer, error) {
	const query = `SELECT id, name, visible, markers, created_at
	FROM map_layers WHERE id = $1`

	var layer geo.Layer
	var markersJSON []byte
	var createdAt time.Time

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&layer.ID, &layer.Name, &layer.Visible, &markersJSON, &createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("layer not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get layer: %w", err)
	}

	layer.CreatedAt = core.NewTimestamp(createdAt)
	if len(markersJSON) > 0 {
		if err := json.Unmarshal(markersJSON, &layer.Markers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal markers: %w", err)
		}
	}
	return &layer, nil
}

// LayerExists reports whether the layer is still present; geocode runs poll
// this between rows so a deleted layer stops the run.
func (r *layerRepository) LayerExists(ctx context.Context, id core.LayerID) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM map_layers WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check layer existence: %w", err)
	}
	return exists, nil
}

// ReplaceMarkers overwrites the layer's marker list.
func (r *layerRepository) ReplaceMarkers(ctx context.Context, id core.LayerID, markers []geo.Marker) error {
	markersJSON, err := json.Marshal(markers)
	if err != nil {
		return fmt.Errorf("failed to marshal markers: %w", err)
	}

	const query = `UPDATE map_layers SET markers = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, markersJSON)
	if err != nil {
		return fmt.Errorf("failed to replace markers: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("layer not found: %s", id)
	}
	return nil
}
