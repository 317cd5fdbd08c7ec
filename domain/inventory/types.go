package inventory

import (
	"fmt"
	"strconv"
	"strings"

	"oohdesk/domain/core"
)

// Point is one physical advertising placement in an exhibitor's inventory.
type Point struct {
	ID             core.PointID      `json:"id" db:"id"`
	ExhibitorID    core.ExhibitorID  `json:"exhibitor_id" db:"exhibitor_id"`
	Code           string            `json:"code" db:"code"`
	Address        string            `json:"address" db:"address"`
	Latitude       float64           `json:"latitude" db:"latitude"`
	Longitude      float64           `json:"longitude" db:"longitude"`
	Measurement    string            `json:"measurement,omitempty" db:"measurement"`
	FlowCount      *int              `json:"flow_count,omitempty" db:"flow_count"`
	TypeTags       []string          `json:"type_tags,omitempty"`
	Observation    string            `json:"observation,omitempty" db:"observation"`
	ReferencePoint string            `json:"reference_point,omitempty" db:"reference_point"`
	Status         string            `json:"status" db:"status"`
	CreatedAt      core.Timestamp    `json:"created_at" db:"created_at"`
}

// ProductKind identifies a priced product line attached to a point.
type ProductKind string

const (
	ProductLocation ProductKind = "location" // the placement itself
	ProductPaper    ProductKind = "paper"    // printed paper production
	ProductTarp     ProductKind = "tarp"     // tarp/canvas production
)

// Period is the billing period of a location product line.
type Period string

const (
	PeriodBiweekly Period = "biweekly"
	PeriodMonthly  Period = "monthly"
	PeriodUnit     Period = "unit"
)

// ParsePeriod validates a period string against the closed enum.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodBiweekly, PeriodMonthly, PeriodUnit:
		return Period(s), nil
	}
	return "", fmt.Errorf("unknown period: %q", s)
}

// Product is one priced line on a point: what is sold, for how much,
// on which billing cycle. Period is set only for location products.
type Product struct {
	Kind   ProductKind `json:"kind" db:"kind"`
	Price  float64     `json:"price" db:"price"`
	Period Period      `json:"period,omitempty" db:"period"`
}

// MeasurementUnit is the unit a point's face is measured in.
type MeasurementUnit string

const (
	UnitMeters MeasurementUnit = "M"
	UnitPixels MeasurementUnit = "Px"
)

// Measurement is a point's face size as width x height.
type Measurement struct {
	Width  float64         `json:"width"`
	Height float64         `json:"height"`
	Unit   MeasurementUnit `json:"unit"`
}

// String renders the canonical "W x H unit" form.
func (m Measurement) String() string {
	return fmt.Sprintf("%s x %s %s",
		strconv.FormatFloat(m.Width, 'f', -1, 64),
		strconv.FormatFloat(m.Height, 'f', -1, 64),
		m.Unit)
}

// JoinTags renders a tag set in its stored comma-separated form.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
