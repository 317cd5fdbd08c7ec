package ports

import (
	"context"

	"oohdesk/domain/core"
	"oohdesk/domain/importer"
)

// InventoryRepository persists validated import rows into the point
// inventory.
type InventoryRepository interface {
	// BatchInsert inserts all rows and their product lines inside one
	// transaction and returns the new point IDs in row order. The batch is
	// all-or-nothing: any row failure rolls the whole insert back.
	BatchInsert(ctx context.Context, exhibitorID core.ExhibitorID, rows []importer.ImportRow) ([]core.PointID, error)

	// ExistingCodes returns the subset of codes already present in the
	// active (not soft-deleted) inventory.
	ExistingCodes(ctx context.Context, codes []string) ([]string, error)
}
