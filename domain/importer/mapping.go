package importer

import (
	"fmt"
	"sort"
)

// ColumnMapping tracks which domain field each spreadsheet column is bound
// to. At most one column may hold each non-ignore kind; binding a kind that
// is already taken is rejected outright rather than soft-warned, so the
// persisted data can never be ambiguous.
type ColumnMapping struct {
	byColumn map[int]FieldKind
	byKind   map[FieldKind]int
}

// NewColumnMapping creates an empty mapping.
func NewColumnMapping() *ColumnMapping {
	return &ColumnMapping{
		byColumn: make(map[int]FieldKind),
		byKind:   make(map[FieldKind]int),
	}
}

// Assign binds a column to a field kind. Assigning KindIgnore clears the
// column. Returns an error when the kind is already bound to another column.
func (m *ColumnMapping) Assign(column int, kind FieldKind) error {
	if column < 0 {
		return fmt.Errorf("column index cannot be negative: %d", column)
	}
	if !kind.IsValid() {
		return fmt.Errorf("unknown field kind: %q", kind)
	}

	if kind == KindIgnore {
		m.Clear(column)
		return nil
	}

	if existing, ok := m.byKind[kind]; ok && existing != column {
		return fmt.Errorf("field %s is already mapped to column %d", kind, existing)
	}

	m.Clear(column)
	m.byColumn[column] = kind
	m.byKind[kind] = column
	return nil
}

// Clear unbinds whatever kind the column currently holds.
func (m *ColumnMapping) Clear(column int) {
	if prev, ok := m.byColumn[column]; ok {
		delete(m.byKind, prev)
		delete(m.byColumn, column)
	}
}

// KindOf returns the kind bound to a column, or KindIgnore when unbound.
func (m *ColumnMapping) KindOf(column int) FieldKind {
	if kind, ok := m.byColumn[column]; ok {
		return kind
	}
	return KindIgnore
}

// ColumnOf returns the column bound to a kind, with ok=false when unbound.
func (m *ColumnMapping) ColumnOf(kind FieldKind) (int, bool) {
	column, ok := m.byKind[kind]
	return column, ok
}

// MappedColumns returns the bound column indexes in ascending order.
func (m *ColumnMapping) MappedColumns() []int {
	columns := make([]int, 0, len(m.byColumn))
	for column := range m.byColumn {
		columns = append(columns, column)
	}
	sort.Ints(columns)
	return columns
}

// MissingRequired lists required kinds that have no column bound yet.
func (m *ColumnMapping) MissingRequired() []FieldKind {
	var missing []FieldKind
	for _, kind := range RequiredKinds() {
		if _, ok := m.byKind[kind]; !ok {
			missing = append(missing, kind)
		}
	}
	return missing
}

// Snapshot returns a copy of the column → kind table for serialization.
func (m *ColumnMapping) Snapshot() map[int]FieldKind {
	out := make(map[int]FieldKind, len(m.byColumn))
	for column, kind := range m.byColumn {
		out[column] = kind
	}
	return out
}

// SuggestMapping pre-fills a mapping from spreadsheet headers. Conflicting
// suggestions keep the first (leftmost) column, matching how exhibitor
// sheets order their identifying columns.
func SuggestMapping(headers []string) *ColumnMapping {
	m := NewColumnMapping()
	for column, header := range headers {
		kind := SuggestKind(header)
		if kind == KindIgnore {
			continue
		}
		// Ignore the error: a later duplicate loses to the leftmost match.
		_ = m.Assign(column, kind)
	}
	return m
}
