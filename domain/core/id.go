package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	SessionID ID
	LayerID   ID
	MarkerID  ID
)

// String conversions for domain IDs
func (id SessionID) String() string { return ID(id).String() }
func (id LayerID) String() string   { return ID(id).String() }
func (id MarkerID) String() string  { return ID(id).String() }

// PointID is the inventory store's numeric key for a persisted point.
type PointID int64

// ExhibitorID identifies the operator that owns a set of points.
type ExhibitorID int64

// ParseSessionID parses a string into SessionID
func ParseSessionID(s string) (SessionID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	return SessionID(s), nil
}

// ParseLayerID parses a string into LayerID
func ParseLayerID(s string) (LayerID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("layer ID cannot be empty")
	}
	return LayerID(s), nil
}
