package ports

import (
	"context"

	"oohdesk/domain/core"
	"oohdesk/domain/geo"
)

// LayerRepository persists map layers and their marker lists.
type LayerRepository interface {
	GetLayer(ctx context.Context, id core.LayerID) (*geo.Layer, error)

	// LayerExists is the cooperative-cancellation probe for long-running
	// geocode runs: deleting a layer mid-run stops processing.
	LayerExists(ctx context.Context, id core.LayerID) (bool, error)

	// ReplaceMarkers overwrites the layer's marker list with the
	// accumulated one.
	ReplaceMarkers(ctx context.Context, id core.LayerID, markers []geo.Marker) error
}
