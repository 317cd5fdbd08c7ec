package ports

import (
	"context"
	"errors"

	"oohdesk/domain/geo"
)

// ErrRateLimited signals the geocoding service rejected the call for quota
// reasons; callers back off and retry the same address.
var ErrRateLimited = errors.New("geocoding service rate limit exceeded")

// ErrNoMatch signals the service found no coordinate for the address.
var ErrNoMatch = errors.New("no geocoding match for address")

// Geocoder resolves a free-text address to its best-match coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geo.GeocodeResult, error)
}
