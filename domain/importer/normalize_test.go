package importer

import (
	"testing"

	"oohdesk/domain/inventory"
)

// TestNormalizeCode tests code normalization: verbatim apart from trimming
func TestNormalizeCode(t *testing.T) {
	result := Normalize(KindCode, "  OOH-01  ")
	if !result.OK {
		t.Fatalf("Expected success, got error: %s", result.Error)
	}
	if result.Value.Text != "OOH-01" {
		t.Errorf("Expected 'OOH-01', got '%s'", result.Value.Text)
	}

	// Casing is preserved
	result = Normalize(KindCode, "ooh-01b")
	if result.Value.Text != "ooh-01b" {
		t.Errorf("Expected casing preserved, got '%s'", result.Value.Text)
	}
}

// TestNormalizeRequiredEmpty tests that required kinds reject empty cells
func TestNormalizeRequiredEmpty(t *testing.T) {
	for _, kind := range []FieldKind{KindCode, KindAddress, KindLatitude, KindLongitude} {
		result := Normalize(kind, "   ")
		if result.OK {
			t.Errorf("Expected error for empty %s, got success", kind)
		}
		if result.Error == "" {
			t.Errorf("Expected error message for empty %s", kind)
		}
	}
}

// TestNormalizeOptionalEmpty tests that optional kinds accept empty cells
func TestNormalizeOptionalEmpty(t *testing.T) {
	optional := []FieldKind{
		KindMeasurement, KindFlowCount, KindTypeTags, KindFreeText,
		KindReferencePoint, KindPriceLocation, KindPricePaper,
		KindPriceTarp, KindPeriodLocation,
	}
	for _, kind := range optional {
		result := Normalize(kind, "")
		if !result.OK {
			t.Errorf("Expected success for empty %s, got error: %s", kind, result.Error)
		}
		if !result.Value.Missing {
			t.Errorf("Expected Missing=true for empty %s", kind)
		}
	}
}

// TestNormalizeCoordinate tests Brazilian coordinate formats
func TestNormalizeCoordinate(t *testing.T) {
	tests := []struct {
		name     string
		kind     FieldKind
		input    string
		expected float64
		hasError bool
	}{
		{"plain decimal", KindLatitude, "-23.5613", -23.5613, false},
		{"comma decimal", KindLatitude, "-23,5613", -23.5613, false},
		{"quoted", KindLongitude, `"-46.6558"`, -46.6558, false},
		{"thousand dots", KindLongitude, "-46.655.881", 0, true}, // strips to -46655881, out of range
		{"dash placeholder", KindLatitude, "–", 0, true},
		{"latitude out of range", KindLatitude, "91.5", 0, true},
		{"longitude boundary", KindLongitude, "180", 180, false},
		{"longitude out of range", KindLongitude, "180.5", 0, true},
		{"not a number", KindLatitude, "centro", 0, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := Normalize(test.kind, test.input)
			if test.hasError {
				if result.OK {
					t.Fatalf("Expected error for %q, got %+v", test.input, result.Value)
				}
				return
			}
			if !result.OK {
				t.Fatalf("Unexpected error for %q: %s", test.input, result.Error)
			}
			if result.Value.Number == nil || *result.Value.Number != test.expected {
				t.Errorf("Expected %v, got %v", test.expected, result.Value.Number)
			}
		})
	}
}

// TestNormalizeFlowCount tests digit extraction from annotated counts
func TestNormalizeFlowCount(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		hasError bool
	}{
		{"12.500 pessoas", 12500, false},
		{"8.000", 8000, false},
		{"30000", 30000, false},
		{"aprox. 5.000/dia", 5000, false},
		{"-100", 0, true},
		{"nenhum", 0, true},
	}

	for _, test := range tests {
		result := Normalize(KindFlowCount, test.input)
		if test.hasError {
			if result.OK {
				t.Errorf("Expected error for %q", test.input)
			}
			continue
		}
		if !result.OK {
			t.Errorf("Unexpected error for %q: %s", test.input, result.Error)
			continue
		}
		if result.Value.Count == nil || *result.Value.Count != test.expected {
			t.Errorf("Expected %d for %q, got %v", test.expected, test.input, result.Value.Count)
		}
	}
}

// TestNormalizeMoney tests Brazilian currency parsing
func TestNormalizeMoney(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		hasError bool
	}{
		{"R$ 1.234,56", 1234.56, false},
		{"R$ 5.000,00", 5000, false},
		{"1234,5", 1234.5, false},
		{"18.000", 18000, false}, // trailing 3-digit group is thousands
		{"18.5", 18.5, false},
		{"2500", 2500, false},
		{"-50", 0, true},
		{"a combinar", 0, true},
	}

	for _, test := range tests {
		result := Normalize(KindPriceLocation, test.input)
		if test.hasError {
			if result.OK {
				t.Errorf("Expected error for %q", test.input)
			}
			continue
		}
		if !result.OK {
			t.Errorf("Unexpected error for %q: %s", test.input, result.Error)
			continue
		}
		if result.Value.Number == nil || *result.Value.Number != test.expected {
			t.Errorf("Expected %v for %q, got %v", test.expected, test.input, result.Value.Number)
		}
	}
}

// TestNormalizeMeasurement tests dimension parsing with units
func TestNormalizeMeasurement(t *testing.T) {
	result := Normalize(KindMeasurement, "9x3 m")
	if !result.OK || result.Value.Measurement == nil {
		t.Fatalf("Expected measurement, got %+v", result)
	}
	m := result.Value.Measurement
	if m.Width != 9 || m.Height != 3 || m.Unit != inventory.UnitMeters {
		t.Errorf("Expected 9x3 M, got %+v", m)
	}

	result = Normalize(KindMeasurement, "1920 X 1080 px")
	if !result.OK || result.Value.Measurement == nil {
		t.Fatalf("Expected measurement, got %+v", result)
	}
	if result.Value.Measurement.Unit != inventory.UnitPixels {
		t.Errorf("Expected pixel unit, got %s", result.Value.Measurement.Unit)
	}

	// Unparseable measurements pass through as text, never error
	result = Normalize(KindMeasurement, "formato especial")
	if !result.OK {
		t.Fatalf("Expected success for unparseable measurement, got error: %s", result.Error)
	}
	if result.Value.Text != "formato especial" {
		t.Errorf("Expected text carry-through, got '%s'", result.Value.Text)
	}
}

// TestNormalizePeriod tests billing period recognition
func TestNormalizePeriod(t *testing.T) {
	tests := []struct {
		input    string
		expected inventory.Period
		hasError bool
	}{
		{"bissemanal", inventory.PeriodBiweekly, false},
		{"Bi-semanal", inventory.PeriodBiweekly, false},
		{"quinzenal", inventory.PeriodBiweekly, false},
		{"15 dias", inventory.PeriodBiweekly, false},
		{"mensal", inventory.PeriodMonthly, false},
		{"Mensal", inventory.PeriodMonthly, false},
		{"30 dias", inventory.PeriodMonthly, false},
		{"unitário", inventory.PeriodUnit, false},
		{"semanal", "", true}, // weekly is not a valid billing period
		{"anual", "", true},
	}

	for _, test := range tests {
		result := Normalize(KindPeriodLocation, test.input)
		if test.hasError {
			if result.OK {
				t.Errorf("Expected error for %q, got %s", test.input, result.Value.Period)
			}
			continue
		}
		if !result.OK {
			t.Errorf("Unexpected error for %q: %s", test.input, result.Error)
			continue
		}
		if result.Value.Period != test.expected {
			t.Errorf("Expected %s for %q, got %s", test.expected, test.input, result.Value.Period)
		}
	}
}

// TestNormalizeTypeTags tests tag splitting and canonicalization
func TestNormalizeTypeTags(t *testing.T) {
	result := Normalize(KindTypeTags, "outdoor, frontlight; empena")
	if !result.OK {
		t.Fatalf("Unexpected error: %s", result.Error)
	}
	expected := []string{"Outdoor", "Frontlight", "Empena"}
	if len(result.Value.Tags) != len(expected) {
		t.Fatalf("Expected %d tags, got %v", len(expected), result.Value.Tags)
	}
	for i, tag := range expected {
		if result.Value.Tags[i] != tag {
			t.Errorf("Expected tag %q at %d, got %q", tag, i, result.Value.Tags[i])
		}
	}

	// "e" works as a conjunction separator
	result = Normalize(KindTypeTags, "outdoor e painel")
	if len(result.Value.Tags) != 2 {
		t.Errorf("Expected 2 tags from conjunction, got %v", result.Value.Tags)
	}

	// Misspellings close to a canonical name are corrected
	result = Normalize(KindTypeTags, "frontligth")
	if len(result.Value.Tags) != 1 || result.Value.Tags[0] != "Frontlight" {
		t.Errorf("Expected fuzzy match to Frontlight, got %v", result.Value.Tags)
	}
}

// TestNormalizeIdempotence tests that re-normalizing a canonical value is stable
func TestNormalizeIdempotence(t *testing.T) {
	cases := []struct {
		kind FieldKind
		raw  string
	}{
		{KindCode, "  OOH-01 "},
		{KindAddress, "Av. Paulista, 1000"},
		{KindLatitude, "-23,5613"},
		{KindLatitude, "-23.456"}, // canonical form must not re-trigger the thousands heuristic
		{KindLongitude, "-46.655.881"},
		{KindFlowCount, "12.500 pessoas"},
		{KindTypeTags, "outdoor; frontlight"},
		{KindMeasurement, "9x3 m"},
		{KindMeasurement, "formato especial"},
		{KindPriceLocation, "R$ 1.234,56"},
		{KindPeriodLocation, "bissemanal"},
		{KindFreeText, "ponto de alta visibilidade"},
	}

	for _, c := range cases {
		first := Normalize(c.kind, c.raw)
		if !first.OK {
			// Errors are sticky: the raw value stays in the grid unchanged
			continue
		}
		canonical := first.Value.Canonical()
		second := Normalize(c.kind, canonical)
		if !second.OK {
			t.Errorf("%s: canonical %q of %q failed re-normalization: %s", c.kind, canonical, c.raw, second.Error)
			continue
		}
		if second.Value.Canonical() != canonical {
			t.Errorf("%s: canonical not stable: %q -> %q -> %q", c.kind, c.raw, canonical, second.Value.Canonical())
		}
	}
}
