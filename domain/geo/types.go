package geo

import "oohdesk/domain/core"

// Marker is one geocoded pin on a map layer.
type Marker struct {
	ID          core.MarkerID `json:"id"`
	Latitude    float64       `json:"latitude"`
	Longitude   float64       `json:"longitude"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
}

// Layer is a user-uploaded set of markers overlaid on the map, independent
// of inventory points.
type Layer struct {
	ID        core.LayerID   `json:"id"`
	Name      string         `json:"name"`
	Visible   bool           `json:"visible"`
	Markers   []Marker       `json:"markers"`
	CreatedAt core.Timestamp `json:"created_at"`
}

// GeocodeResult is the best match for a free-text address.
type GeocodeResult struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formatted_address"`
}
