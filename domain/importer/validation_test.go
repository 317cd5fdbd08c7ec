package importer

import (
	"testing"
)

// TestClassifySeverities tests the severity rules per outcome
func TestClassifySeverities(t *testing.T) {
	table := NewValidationTable()

	// Failed normalization is an error
	entry := table.Set(0, 0, KindCode, Normalize(KindCode, ""))
	if entry.Severity != SeverityError {
		t.Errorf("Expected error for empty code, got %s", entry.Severity)
	}

	// Empty optional cell is a warning, to draw the eye during review
	entry = table.Set(0, 1, KindFlowCount, Normalize(KindFlowCount, ""))
	if entry.Severity != SeverityWarning {
		t.Errorf("Expected warning for empty optional cell, got %s", entry.Severity)
	}

	// Populated valid cell
	entry = table.Set(0, 2, KindFlowCount, Normalize(KindFlowCount, "5000"))
	if entry.Severity != SeverityValid {
		t.Errorf("Expected valid, got %s", entry.Severity)
	}
}

// TestCountsFullScan tests that counts follow the current cell states
func TestCountsFullScan(t *testing.T) {
	table := NewValidationTable()
	table.Set(0, 0, KindCode, Normalize(KindCode, ""))
	table.Set(1, 0, KindCode, Normalize(KindCode, "OOH-01"))
	table.Set(2, 0, KindCode, Normalize(KindCode, ""))

	counts := table.Counts()
	if counts.Error != 2 || counts.Valid != 1 || counts.Warning != 0 {
		t.Fatalf("Expected 2 errors 1 valid, got %+v", counts)
	}

	// Fixing a cell replaces its entry; counts move with it
	table.Set(0, 0, KindCode, Normalize(KindCode, "OOH-02"))
	counts = table.Counts()
	if counts.Error != 1 || counts.Valid != 2 {
		t.Fatalf("Expected 1 error 2 valid after fix, got %+v", counts)
	}
}

// TestClearColumn tests that demoting a column drops its entries
func TestClearColumn(t *testing.T) {
	table := NewValidationTable()
	table.Set(0, 0, KindCode, Normalize(KindCode, "OOH-01"))
	table.Set(0, 1, KindAddress, Normalize(KindAddress, ""))
	table.Set(1, 1, KindAddress, Normalize(KindAddress, "Av. Central"))

	table.ClearColumn(1)
	if table.Len() != 1 {
		t.Errorf("Expected 1 entry after clearing column, got %d", table.Len())
	}
	if _, ok := table.Get(0, 1); ok {
		t.Error("Expected no entry for cleared cell")
	}
	if counts := table.Counts(); counts.Error != 0 {
		t.Errorf("Expected cleared column errors gone, got %+v", counts)
	}
}

// TestIssuesOrdering tests stable row-then-column ordering
func TestIssuesOrdering(t *testing.T) {
	table := NewValidationTable()
	table.Set(2, 0, KindCode, Normalize(KindCode, ""))
	table.Set(0, 3, KindAddress, Normalize(KindAddress, ""))
	table.Set(0, 1, KindFlowCount, Normalize(KindFlowCount, ""))
	table.Set(1, 0, KindCode, Normalize(KindCode, "ok")) // valid, excluded

	issues := table.Issues()
	if len(issues) != 3 {
		t.Fatalf("Expected 3 issues, got %d", len(issues))
	}
	if issues[0].Row != 0 || issues[0].Column != 1 {
		t.Errorf("Expected (0,1) first, got (%d,%d)", issues[0].Row, issues[0].Column)
	}
	if issues[2].Row != 2 {
		t.Errorf("Expected row 2 last, got %d", issues[2].Row)
	}
}
