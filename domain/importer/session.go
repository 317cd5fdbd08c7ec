package importer

import (
	"fmt"
	"sort"
	"time"

	"oohdesk/domain/core"
)

// SessionTTL is how long an abandoned session stays resumable.
const SessionTTL = 24 * time.Hour

// Correction records an automatic or manual change to a cell, for the
// review diff: what the sheet said, what the import will use.
type Correction struct {
	Row       int       `json:"row"`
	Column    int       `json:"column"`
	Kind      FieldKind `json:"kind"`
	Original  string    `json:"original"`
	Corrected string    `json:"corrected"`
}

// Session is one in-flight bulk import: the parsed sheet, the column
// mapping, per-cell validation state, and the corrections applied so far.
// It lives only in memory; nothing is durable until Commit. There is
// exactly one UI actor per session, so mutations are synchronous and
// last-write-wins with no locking.
type Session struct {
	ID            core.SessionID
	ExhibitorID   core.ExhibitorID
	ExhibitorName string
	CreatedAt     core.Timestamp

	Headers      []string
	Rows         [][]string // working values, canonicalized in place
	OriginalRows [][]string // immutable as-uploaded values

	Mapping     *ColumnMapping
	Validation  *ValidationTable
	corrections map[cellKey]Correction
}

// NewSession creates an empty session for an exhibitor.
func NewSession(exhibitorID core.ExhibitorID, exhibitorName string) *Session {
	return &Session{
		ID:            core.SessionID(core.NewID()),
		ExhibitorID:   exhibitorID,
		ExhibitorName: exhibitorName,
		CreatedAt:     core.Now(),
		Mapping:       NewColumnMapping(),
		Validation:    NewValidationTable(),
		corrections:   make(map[cellKey]Correction),
	}
}

// Expired reports whether the session has outlived its TTL.
func (s *Session) Expired() bool {
	return s.CreatedAt.Age() > SessionTTL
}

// SetData loads the parsed sheet into the session. Rows shorter than the
// header are padded so every cell is addressable; the original values are
// snapshotted before any normalization can touch them.
func (s *Session) SetData(headers []string, rows [][]string) error {
	if len(headers) == 0 {
		return fmt.Errorf("sheet has no header row")
	}
	if len(rows) == 0 {
		return fmt.Errorf("sheet has no data rows")
	}

	s.Headers = append([]string(nil), headers...)
	s.Rows = make([][]string, len(rows))
	s.OriginalRows = make([][]string, len(rows))
	for i, row := range rows {
		padded := make([]string, len(headers))
		copy(padded, row)
		s.Rows[i] = padded
		s.OriginalRows[i] = append([]string(nil), padded...)
	}

	s.Mapping = NewColumnMapping()
	s.Validation = NewValidationTable()
	s.corrections = make(map[cellKey]Correction)
	return nil
}

// AssignColumn binds a column to a field kind and re-normalizes every
// existing row's value in that column — not just newly entered ones.
// Demoting a column to ignore clears its validation entries and recorded
// corrections.
func (s *Session) AssignColumn(column int, kind FieldKind) error {
	if column < 0 || column >= len(s.Headers) {
		return fmt.Errorf("column %d out of range (sheet has %d columns)", column, len(s.Headers))
	}

	if kind == KindIgnore {
		s.Mapping.Clear(column)
		s.Validation.ClearColumn(column)
		s.clearColumnCorrections(column)
		return nil
	}

	if err := s.Mapping.Assign(column, kind); err != nil {
		return err
	}

	s.clearColumnCorrections(column)
	for row := range s.Rows {
		s.normalizeCell(row, column, kind)
	}
	return nil
}

// ApplyMapping assigns a full mapping at once, column order ascending.
func (s *Session) ApplyMapping(m *ColumnMapping) error {
	for _, column := range m.MappedColumns() {
		if err := s.AssignColumn(column, m.KindOf(column)); err != nil {
			return err
		}
	}
	return nil
}

// EditCell replaces one cell's raw value and re-validates it, returning the
// resulting validation state. Editing a cell in an unmapped column updates
// the value and returns nil: such cells carry no validation entry.
func (s *Session) EditCell(row, column int, value string) (*CellValidation, error) {
	if row < 0 || row >= len(s.Rows) {
		return nil, fmt.Errorf("row %d out of range (sheet has %d rows)", row, len(s.Rows))
	}
	if column < 0 || column >= len(s.Headers) {
		return nil, fmt.Errorf("column %d out of range (sheet has %d columns)", column, len(s.Headers))
	}

	kind := s.Mapping.KindOf(column)
	if kind == KindIgnore {
		s.Rows[row][column] = value
		return nil, nil
	}

	s.Rows[row][column] = value
	entry := s.normalizeCell(row, column, kind)
	return &entry, nil
}

// normalizeCell runs the field rule for one cell, writes the canonical
// value back into the working grid, and records the correction when the
// import value differs from the uploaded one.
func (s *Session) normalizeCell(row, column int, kind FieldKind) CellValidation {
	raw := s.Rows[row][column]
	result := Normalize(kind, raw)
	entry := s.Validation.Set(row, column, kind, result)

	if result.OK {
		canonical := result.Value.Canonical()
		if canonical != raw {
			s.Rows[row][column] = canonical
		}
		original := s.OriginalRows[row][column]
		key := cellKey{row, column}
		if canonical != original {
			s.corrections[key] = Correction{
				Row: row, Column: column, Kind: kind,
				Original: original, Corrected: canonical,
			}
		} else {
			delete(s.corrections, key)
		}
	}
	return entry
}

func (s *Session) clearColumnCorrections(column int) {
	for key := range s.corrections {
		if key.column == column {
			delete(s.corrections, key)
		}
	}
}

// Corrections returns the recorded corrections in grid order.
func (s *Session) Corrections() []Correction {
	out := make([]Correction, 0, len(s.corrections))
	for _, c := range s.corrections {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Column < out[j].Column
	})
	return out
}

// Counts returns the aggregate validation tallies.
func (s *Session) Counts() Counts {
	return s.Validation.Counts()
}

// CanProceed reports whether the import may move past validation: data is
// loaded, all four required kinds are mapped, and no cell carries an error.
func (s *Session) CanProceed() bool {
	if len(s.Rows) == 0 {
		return false
	}
	if len(s.Mapping.MissingRequired()) > 0 {
		return false
	}
	return s.Validation.Counts().Error == 0
}
