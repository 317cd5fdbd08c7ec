package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "oohdesk/internal/errors"
)

// SheetData is a parsed spreadsheet: one header row plus the raw data rows,
// column-index aligned with the headers.
type SheetData struct {
	Headers []string
	Rows    [][]string
}

// DataReader parses uploaded spreadsheets into SheetData. It handles xlsx
// containers and comma/semicolon separated CSV, with a size ceiling
// enforced before any parsing happens.
type DataReader struct {
	maxBytes int64
}

// NewDataReader creates a reader with the given upload ceiling in bytes.
func NewDataReader(maxBytes int64) *DataReader {
	return &DataReader{maxBytes: maxBytes}
}

// ReadFile parses a spreadsheet from disk, dispatching on extension.
func (r *DataReader) ReadFile(path string) (*SheetData, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("spreadsheet not found: %s", path)
	}
	if info.Size() > r.maxBytes {
		return nil, apperrors.FileTooLarge(fmt.Sprintf("file is %d bytes, ceiling is %d", info.Size(), r.maxBytes))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.ParseFailure("failed to open spreadsheet", err)
	}
	defer f.Close()

	return r.Read(f, filepath.Base(path), info.Size())
}

// Read parses a spreadsheet from a stream, such as a multipart upload. The
// declared size is checked against the ceiling before reading; an
// undeclared size (-1) still cannot exceed the ceiling because reading is
// capped one byte past it.
func (r *DataReader) Read(src io.Reader, filename string, size int64) (*SheetData, error) {
	if size > r.maxBytes {
		return nil, apperrors.FileTooLarge(fmt.Sprintf("file is %d bytes, ceiling is %d", size, r.maxBytes))
	}

	data, err := io.ReadAll(io.LimitReader(src, r.maxBytes+1))
	if err != nil {
		return nil, apperrors.ParseFailure("failed to read upload", err)
	}
	if int64(len(data)) > r.maxBytes {
		return nil, apperrors.FileTooLarge(fmt.Sprintf("file exceeds %d byte ceiling", r.maxBytes))
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return r.parseCSV(data)
	case ".xlsx", ".xlsm", ".xls":
		return r.parseExcel(data)
	default:
		return nil, apperrors.ParseFailure(fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), nil)
	}
}

// parseExcel reads the first sheet of an xlsx container.
func (r *DataReader) parseExcel(data []byte) (*SheetData, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.ParseFailure("failed to open Excel file", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.ParseFailure("workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.ParseFailure(fmt.Sprintf("failed to read sheet %q", sheets[0]), err)
	}

	return processRows(rows)
}

// parseCSV reads separated values after converting the payload to UTF-8;
// exhibitor exports are frequently Windows-1252. The delimiter is sniffed
// from the header line since Brazilian Excel exports CSV with semicolons.
func (r *DataReader) parseCSV(data []byte) (*SheetData, error) {
	utf8Data, err := ConvertToUTF8(data)
	if err != nil {
		return nil, apperrors.ParseFailure("unsupported character encoding", err)
	}

	reader := csv.NewReader(bytes.NewReader(utf8Data))
	reader.Comma = sniffDelimiter(utf8Data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.ParseFailure("failed to read CSV file", err)
	}

	return processRows(rows)
}

func sniffDelimiter(data []byte) rune {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		line = data[:idx]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

// processRows splits raw rows into trimmed headers plus data rows. A sheet
// needs at least a header row and one data row to be importable.
func processRows(rows [][]string) (*SheetData, error) {
	if len(rows) < 2 {
		return nil, apperrors.ParseFailure("spreadsheet must have a header row and at least one data row", nil)
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]string, len(headers))
		for j := range headers {
			if j < len(row) {
				cells[j] = strings.TrimSpace(row[j])
			}
		}
		dataRows = append(dataRows, cells)
	}

	return &SheetData{Headers: headers, Rows: dataRows}, nil
}
