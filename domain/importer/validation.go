package importer

import "sort"

// Severity classifies a cell's validation state.
type Severity string

const (
	SeverityValid   Severity = "valid"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// CellValidation is the derived validation state of one mapped cell. Cells
// in unmapped columns have no entry at all.
type CellValidation struct {
	Row      int      `json:"row"`
	Column   int      `json:"column"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message,omitempty"`
}

// cellKey identifies a cell by position.
type cellKey struct {
	row, column int
}

// ValidationTable holds per-cell validation state, recomputed from
// normalization outcomes only — never hand-authored.
type ValidationTable struct {
	cells map[cellKey]CellValidation
}

// NewValidationTable creates an empty table.
func NewValidationTable() *ValidationTable {
	return &ValidationTable{cells: make(map[cellKey]CellValidation)}
}

// classify derives a severity from a normalization result. A warning is
// emitted only for empty optional fields; required fields go straight to
// error when empty, and every other success is valid.
func classify(kind FieldKind, result Result) (Severity, string) {
	if !result.OK {
		return SeverityError, result.Error
	}
	if result.Value.Missing && !kind.IsRequired() && kind != KindIgnore {
		return SeverityWarning, "value not provided"
	}
	return SeverityValid, ""
}

// Set records the outcome of re-normalizing one cell.
func (t *ValidationTable) Set(row, column int, kind FieldKind, result Result) CellValidation {
	severity, message := classify(kind, result)
	entry := CellValidation{Row: row, Column: column, Severity: severity, Message: message}
	t.cells[cellKey{row, column}] = entry
	return entry
}

// Get returns the entry for a cell, with ok=false when the cell is unmapped.
func (t *ValidationTable) Get(row, column int) (CellValidation, bool) {
	entry, ok := t.cells[cellKey{row, column}]
	return entry, ok
}

// ClearColumn removes every entry for a column, across all rows. Used when
// a column is demoted to ignore.
func (t *ValidationTable) ClearColumn(column int) {
	for key := range t.cells {
		if key.column == column {
			delete(t.cells, key)
		}
	}
}

// ClearRow removes every entry for a row.
func (t *ValidationTable) ClearRow(row int) {
	for key := range t.cells {
		if key.row == row {
			delete(t.cells, key)
		}
	}
}

// Counts are the aggregate tallies over all tracked cells.
type Counts struct {
	Valid   int `json:"valid"`
	Warning int `json:"warning"`
	Error   int `json:"error"`
}

// Counts recomputes the aggregate tallies by full scan. Derived sums are
// never tracked incrementally, so they cannot drift from the cell states.
func (t *ValidationTable) Counts() Counts {
	var counts Counts
	for _, entry := range t.cells {
		switch entry.Severity {
		case SeverityValid:
			counts.Valid++
		case SeverityWarning:
			counts.Warning++
		case SeverityError:
			counts.Error++
		}
	}
	return counts
}

// Errors returns every error-severity entry, for surfacing in the grid.
func (t *ValidationTable) Errors() []CellValidation {
	var out []CellValidation
	for _, entry := range t.cells {
		if entry.Severity == SeverityError {
			out = append(out, entry)
		}
	}
	return out
}

// Issues returns every warning- and error-severity entry, ordered by row
// then column so output is stable.
func (t *ValidationTable) Issues() []CellValidation {
	var out []CellValidation
	for _, entry := range t.cells {
		if entry.Severity != SeverityValid {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Column < out[j].Column
	})
	return out
}

// Len returns the number of tracked cells.
func (t *ValidationTable) Len() int {
	return len(t.cells)
}
