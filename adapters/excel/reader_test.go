package excel

import (
	"bytes"
	"strings"
	"testing"

	apperrors "oohdesk/internal/errors"
	"oohdesk/internal/testkit"
)

// TestReadXLSX tests parsing a real xlsx workbook
func TestReadXLSX(t *testing.T) {
	headers := testkit.SampleHeaders()
	rows := testkit.SampleRows()
	data := testkit.BuildXLSX(headers, rows)

	reader := NewDataReader(5 * 1024 * 1024)
	sheet, err := reader.Read(bytes.NewReader(data), "pontos.xlsx", int64(len(data)))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(sheet.Headers) != len(headers) {
		t.Fatalf("Expected %d headers, got %d", len(headers), len(sheet.Headers))
	}
	if sheet.Headers[0] != "Código" {
		t.Errorf("Expected first header 'Código', got %q", sheet.Headers[0])
	}
	if len(sheet.Rows) != len(rows) {
		t.Fatalf("Expected %d rows, got %d", len(rows), len(sheet.Rows))
	}
	if sheet.Rows[0][0] != "OOH-001" {
		t.Errorf("Unexpected first cell: %q", sheet.Rows[0][0])
	}
}

// TestReadSemicolonCSV tests the Brazilian Excel CSV dialect
func TestReadSemicolonCSV(t *testing.T) {
	data := []byte("Código;Endereço;Latitude\nOOH-01;Av. Paulista, 1000;-23.5613\n")

	reader := NewDataReader(1024)
	sheet, err := reader.Read(bytes.NewReader(data), "pontos.csv", int64(len(data)))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(sheet.Headers) != 3 {
		t.Fatalf("Expected 3 headers, got %v", sheet.Headers)
	}
	// Commas inside fields survive because the delimiter was sniffed as ';'
	if sheet.Rows[0][1] != "Av. Paulista, 1000" {
		t.Errorf("Expected address intact, got %q", sheet.Rows[0][1])
	}
}

// TestReadCommaCSV tests comma-delimited input
func TestReadCommaCSV(t *testing.T) {
	data := []byte("code,address\nOOH-01,Rua Augusta\n")

	reader := NewDataReader(1024)
	sheet, err := reader.Read(bytes.NewReader(data), "points.csv", int64(len(data)))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if sheet.Rows[0][0] != "OOH-01" || sheet.Rows[0][1] != "Rua Augusta" {
		t.Errorf("Unexpected row: %v", sheet.Rows[0])
	}
}

// TestReadWindows1252CSV tests charset conversion of legacy exports
func TestReadWindows1252CSV(t *testing.T) {
	// "Código;Endereço" and "São Paulo" encoded as Windows-1252
	data := []byte("C\xf3digo;Endere\xe7o;Observa\xe7\xe3o\nOOH-01;Avenida S\xe3o Jo\xe3o;pr\xe9dio azul\n")

	reader := NewDataReader(1024)
	sheet, err := reader.Read(bytes.NewReader(data), "legado.csv", int64(len(data)))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if sheet.Headers[0] != "Código" {
		t.Errorf("Expected converted header 'Código', got %q", sheet.Headers[0])
	}
	if sheet.Rows[0][1] != "Avenida São João" {
		t.Errorf("Expected converted address, got %q", sheet.Rows[0][1])
	}
}

// TestReadStripsBOM tests Excel's "CSV UTF-8" byte order mark
func TestReadStripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("code,address\nOOH-01,Rua A\n")...)

	reader := NewDataReader(1024)
	sheet, err := reader.Read(bytes.NewReader(data), "bom.csv", int64(len(data)))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if sheet.Headers[0] != "code" {
		t.Errorf("Expected BOM stripped from first header, got %q", sheet.Headers[0])
	}
}

// TestReadRejectsOversizedDeclared tests the size ceiling on declared sizes
func TestReadRejectsOversizedDeclared(t *testing.T) {
	reader := NewDataReader(10)
	_, err := reader.Read(strings.NewReader("irrelevant"), "big.csv", 11)
	if apperrors.GetCode(err) != apperrors.CodeFileTooLarge {
		t.Errorf("Expected FILE_TOO_LARGE, got %v", err)
	}
}

// TestReadRejectsOversizedStream tests the ceiling on undeclared sizes
func TestReadRejectsOversizedStream(t *testing.T) {
	reader := NewDataReader(10)
	_, err := reader.Read(strings.NewReader("0123456789abcdef"), "big.csv", -1)
	if apperrors.GetCode(err) != apperrors.CodeFileTooLarge {
		t.Errorf("Expected FILE_TOO_LARGE, got %v", err)
	}
}

// TestReadRequiresDataRow tests the header-plus-one-row minimum
func TestReadRequiresDataRow(t *testing.T) {
	data := []byte("code,address\n")
	reader := NewDataReader(1024)
	_, err := reader.Read(bytes.NewReader(data), "empty.csv", int64(len(data)))
	if apperrors.GetCode(err) != apperrors.CodeParseFailure {
		t.Errorf("Expected PARSE_FAILURE, got %v", err)
	}
}

// TestReadRejectsUnknownExtension tests the extension dispatch
func TestReadRejectsUnknownExtension(t *testing.T) {
	reader := NewDataReader(1024)
	_, err := reader.Read(strings.NewReader("data"), "points.pdf", 4)
	if apperrors.GetCode(err) != apperrors.CodeParseFailure {
		t.Errorf("Expected PARSE_FAILURE, got %v", err)
	}
}

// TestReadPadsRaggedRows tests that short rows align with the header width
func TestReadPadsRaggedRows(t *testing.T) {
	data := []byte("a;b;c\n1;2\n1;2;3;4\n")
	reader := NewDataReader(1024)
	sheet, err := reader.Read(bytes.NewReader(data), "ragged.csv", int64(len(data)))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	for i, row := range sheet.Rows {
		if len(row) != 3 {
			t.Errorf("Row %d: expected width 3, got %d", i, len(row))
		}
	}
	if sheet.Rows[0][2] != "" {
		t.Errorf("Expected padding cell empty, got %q", sheet.Rows[0][2])
	}
}
