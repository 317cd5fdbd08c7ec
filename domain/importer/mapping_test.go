package importer

import (
	"testing"
)

// TestAssignRejectsDuplicateKind tests that a kind cannot bind two columns
func TestAssignRejectsDuplicateKind(t *testing.T) {
	m := NewColumnMapping()
	if err := m.Assign(0, KindCode); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := m.Assign(1, KindCode); err == nil {
		t.Fatal("Expected error binding code to a second column")
	}
	if kind := m.KindOf(0); kind != KindCode {
		t.Errorf("Expected column 0 to stay mapped to code, got %s", kind)
	}
	if kind := m.KindOf(1); kind != KindIgnore {
		t.Errorf("Expected column 1 to stay unmapped, got %s", kind)
	}
}

// TestReassignSameColumn tests moving a column between kinds
func TestReassignSameColumn(t *testing.T) {
	m := NewColumnMapping()
	if err := m.Assign(0, KindCode); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// Re-mapping the same column to another kind frees the old kind
	if err := m.Assign(0, KindAddress); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := m.ColumnOf(KindCode); ok {
		t.Error("Expected code binding to be released")
	}
	if err := m.Assign(1, KindCode); err != nil {
		t.Errorf("Expected code to be assignable again: %v", err)
	}
}

// TestClearReleasesKind tests that clearing frees the bound kind
func TestClearReleasesKind(t *testing.T) {
	m := NewColumnMapping()
	_ = m.Assign(2, KindLatitude)
	m.Clear(2)
	if kind := m.KindOf(2); kind != KindIgnore {
		t.Errorf("Expected ignore after clear, got %s", kind)
	}
	if err := m.Assign(3, KindLatitude); err != nil {
		t.Errorf("Expected latitude to be assignable after clear: %v", err)
	}
}

// TestMissingRequired tests the required-kind gate
func TestMissingRequired(t *testing.T) {
	m := NewColumnMapping()
	if got := len(m.MissingRequired()); got != 4 {
		t.Fatalf("Expected 4 missing required kinds, got %d", got)
	}

	_ = m.Assign(0, KindCode)
	_ = m.Assign(1, KindAddress)
	_ = m.Assign(2, KindLatitude)
	if got := m.MissingRequired(); len(got) != 1 || got[0] != KindLongitude {
		t.Errorf("Expected only longitude missing, got %v", got)
	}

	_ = m.Assign(3, KindLongitude)
	if got := m.MissingRequired(); len(got) != 0 {
		t.Errorf("Expected nothing missing, got %v", got)
	}
}

// TestSuggestMapping tests header-based auto-mapping
func TestSuggestMapping(t *testing.T) {
	headers := []string{"Código", "Endereço", "Latitude", "Longitude", "Medidas", "Fluxo Diário", "Valor Locação", "Período Locação"}
	m := SuggestMapping(headers)

	expected := map[int]FieldKind{
		0: KindCode,
		1: KindAddress,
		2: KindLatitude,
		3: KindLongitude,
		4: KindMeasurement,
		5: KindFlowCount,
		6: KindPriceLocation,
		7: KindPeriodLocation,
	}
	for column, kind := range expected {
		if got := m.KindOf(column); got != kind {
			t.Errorf("Column %d (%s): expected %s, got %s", column, headers[column], kind, got)
		}
	}
}

// TestSuggestMappingLeftmostWins tests duplicate headers map only once
func TestSuggestMappingLeftmostWins(t *testing.T) {
	m := SuggestMapping([]string{"Código", "Código", "Endereço"})
	if kind := m.KindOf(0); kind != KindCode {
		t.Errorf("Expected leftmost código column mapped, got %s", kind)
	}
	if kind := m.KindOf(1); kind != KindIgnore {
		t.Errorf("Expected duplicate código column unmapped, got %s", kind)
	}
}
