package app

import (
	"strconv"

	"github.com/montanaflynn/stats"

	"oohdesk/domain/core"
	"oohdesk/domain/importer"
)

// ColumnSummary describes one mapped column for the review step.
type ColumnSummary struct {
	Column   int                `json:"column"`
	Header   string             `json:"header"`
	Kind     importer.FieldKind `json:"kind"`
	Filled   int                `json:"filled"`
	FillRate float64            `json:"fill_rate"`
}

// FlowSummary aggregates the flow-count column when one is mapped.
type FlowSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// SessionSummary is the review-step digest of a session: validation
// tallies, per-column fill, corrections, and flow statistics.
type SessionSummary struct {
	SessionID   core.SessionID        `json:"session_id"`
	RowCount    int                   `json:"row_count"`
	Counts      importer.Counts       `json:"counts"`
	CanProceed  bool                  `json:"can_proceed"`
	Missing     []importer.FieldKind  `json:"missing_required,omitempty"`
	Columns     []ColumnSummary       `json:"columns"`
	Corrections []importer.Correction `json:"corrections"`
	Flow        *FlowSummary          `json:"flow,omitempty"`
}

// Summary computes the review digest for a session.
func (s *ImportService) Summary(id core.SessionID) (*SessionSummary, error) {
	session, err := s.Session(id)
	if err != nil {
		return nil, err
	}

	summary := &SessionSummary{
		SessionID:   session.ID,
		RowCount:    len(session.Rows),
		Counts:      session.Counts(),
		CanProceed:  session.CanProceed(),
		Missing:     session.Mapping.MissingRequired(),
		Corrections: session.Corrections(),
	}

	for _, column := range session.Mapping.MappedColumns() {
		kind := session.Mapping.KindOf(column)
		filled := 0
		for _, row := range session.Rows {
			if row[column] != "" {
				filled++
			}
		}
		summary.Columns = append(summary.Columns, ColumnSummary{
			Column:   column,
			Header:   session.Headers[column],
			Kind:     kind,
			Filled:   filled,
			FillRate: float64(filled) / float64(len(session.Rows)),
		})
	}

	summary.Flow = flowSummary(session)
	return summary, nil
}

// flowSummary aggregates the flow column; nil when unmapped or empty.
func flowSummary(session *importer.Session) *FlowSummary {
	column, ok := session.Mapping.ColumnOf(importer.KindFlowCount)
	if !ok {
		return nil
	}

	var values stats.Float64Data
	for _, row := range session.Rows {
		if row[column] == "" {
			continue
		}
		if v, err := strconv.ParseFloat(row[column], 64); err == nil {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil
	}

	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	max, _ := stats.Max(values)
	return &FlowSummary{Mean: mean, Median: median, Max: max}
}
