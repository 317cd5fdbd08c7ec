package importer

import (
	"testing"

	"oohdesk/domain/inventory"
)

func readyRowsSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(1, "Exibidora Teste")
	headers := []string{"Código", "Endereço", "Latitude", "Longitude", "Valor Locação", "Período", "Valor Lona"}
	rows := [][]string{
		{"OOH-01", "Av. Paulista, 1000", "-23.5613", "-46.6558", "R$ 5.000,00", "bissemanal", "R$ 1.200,00"},
		{"OOH-02", "Rua Augusta, 500", "-23.5548", "-46.6621", "", "", ""},
	}
	if err := s.SetData(headers, rows); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}
	if err := s.ApplyMapping(SuggestMapping(headers)); err != nil {
		t.Fatalf("ApplyMapping failed: %v", err)
	}
	return s
}

// TestBuildRows tests materializing the grid into import rows
func TestBuildRows(t *testing.T) {
	s := readyRowsSession(t)

	rows, err := BuildRows(s)
	if err != nil {
		t.Fatalf("BuildRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.Code != "OOH-01" || first.Address != "Av. Paulista, 1000" {
		t.Errorf("Unexpected identity fields: %+v", first)
	}
	if first.Latitude != -23.5613 || first.Longitude != -46.6558 {
		t.Errorf("Unexpected coordinates: %v, %v", first.Latitude, first.Longitude)
	}

	// Location product carries the billing period; tarp does not
	if len(first.Products) != 2 {
		t.Fatalf("Expected 2 products, got %+v", first.Products)
	}
	var location, tarp *inventory.Product
	for i := range first.Products {
		switch first.Products[i].Kind {
		case inventory.ProductLocation:
			location = &first.Products[i]
		case inventory.ProductTarp:
			tarp = &first.Products[i]
		}
	}
	if location == nil || location.Price != 5000 || location.Period != inventory.PeriodBiweekly {
		t.Errorf("Unexpected location product: %+v", location)
	}
	if tarp == nil || tarp.Price != 1200 || tarp.Period != "" {
		t.Errorf("Unexpected tarp product: %+v", tarp)
	}

	// Empty optional prices produce no product lines at all
	if len(rows[1].Products) != 0 {
		t.Errorf("Expected no products for bare row, got %+v", rows[1].Products)
	}
}

// TestBuildRowsRefusesWhenBlocked tests the proceed gate on materialization
func TestBuildRowsRefusesWhenBlocked(t *testing.T) {
	s := readyRowsSession(t)
	if _, err := s.EditCell(0, 2, "invalid"); err != nil {
		t.Fatalf("EditCell failed: %v", err)
	}

	if _, err := BuildRows(s); err == nil {
		t.Fatal("Expected error building rows with a cell error present")
	}
}

// TestDuplicateCodesInFile tests in-file duplicate detection
func TestDuplicateCodesInFile(t *testing.T) {
	s := NewSession(1, "x")
	headers := []string{"Código", "Endereço", "Latitude", "Longitude"}
	rows := [][]string{
		{"A1", "r1", "-23.5613", "-46.6558"},
		{"A2", "r2", "-23.5548", "-46.6621"},
		{"A1", "r3", "-23.5861", "-46.6815"},
	}
	if err := s.SetData(headers, rows); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}
	_ = s.ApplyMapping(SuggestMapping(headers))

	duplicates := DuplicateCodesInFile(s)
	if len(duplicates) != 1 || duplicates[0] != "A1" {
		t.Errorf("Expected [A1], got %v", duplicates)
	}
}

// TestFlagCodeCollisions tests collision entries gate the import
func TestFlagCodeCollisions(t *testing.T) {
	s := NewSession(1, "x")
	headers := []string{"Código", "Endereço", "Latitude", "Longitude"}
	rows := [][]string{
		{"A1", "r1", "-23.5613", "-46.6558"},
		{"A2", "r2", "-23.5548", "-46.6621"},
	}
	if err := s.SetData(headers, rows); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}
	_ = s.ApplyMapping(SuggestMapping(headers))
	if !s.CanProceed() {
		t.Fatalf("Expected clean session, counts %+v", s.Counts())
	}

	// A1 pre-exists in the inventory
	flagged := FlagCodeCollisions(s, []string{"A1"})
	if flagged != 1 {
		t.Fatalf("Expected 1 flagged cell, got %d", flagged)
	}
	if s.CanProceed() {
		t.Fatal("Expected collision to block the import")
	}

	// Editing the colliding cell re-normalizes it and clears the flag
	if _, err := s.EditCell(0, 0, "A3"); err != nil {
		t.Fatalf("EditCell failed: %v", err)
	}
	if !s.CanProceed() {
		t.Fatalf("Expected import unblocked after rename, counts %+v", s.Counts())
	}
}
