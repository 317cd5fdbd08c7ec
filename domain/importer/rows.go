package importer

import (
	"fmt"

	"oohdesk/domain/inventory"
)

// ImportRow is one validated candidate point, ready for the batch insert.
type ImportRow struct {
	Code           string              `json:"code"`
	Address        string              `json:"address"`
	Latitude       float64             `json:"latitude"`
	Longitude      float64             `json:"longitude"`
	Measurement    string              `json:"measurement,omitempty"`
	FlowCount      *int                `json:"flow_count,omitempty"`
	TypeTags       []string            `json:"type_tags,omitempty"`
	Observation    string              `json:"observation,omitempty"`
	ReferencePoint string              `json:"reference_point,omitempty"`
	Products       []inventory.Product `json:"products,omitempty"`
}

// BuildRows materializes the session's working grid into import rows. The
// session must be able to proceed: required kinds mapped, zero errors.
func BuildRows(s *Session) ([]ImportRow, error) {
	if !s.CanProceed() {
		counts := s.Counts()
		return nil, fmt.Errorf("import cannot proceed: %d cell errors, missing required fields %v",
			counts.Error, s.Mapping.MissingRequired())
	}

	rows := make([]ImportRow, 0, len(s.Rows))
	for rowIdx := range s.Rows {
		row, err := buildRow(s, rowIdx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowIdx, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func buildRow(s *Session, rowIdx int) (ImportRow, error) {
	var out ImportRow
	var period inventory.Period
	var locationPrice *float64

	for _, column := range s.Mapping.MappedColumns() {
		kind := s.Mapping.KindOf(column)
		result := Normalize(kind, s.Rows[rowIdx][column])
		if !result.OK {
			return out, fmt.Errorf("column %d (%s): %s", column, kind, result.Error)
		}
		v := result.Value
		if v.Missing {
			continue
		}

		switch kind {
		case KindCode:
			out.Code = v.Text
		case KindAddress:
			out.Address = v.Text
		case KindLatitude:
			out.Latitude = *v.Number
		case KindLongitude:
			out.Longitude = *v.Number
		case KindMeasurement:
			out.Measurement = v.Canonical()
		case KindFlowCount:
			out.FlowCount = v.Count
		case KindTypeTags:
			out.TypeTags = v.Tags
		case KindFreeText:
			out.Observation = v.Text
		case KindReferencePoint:
			out.ReferencePoint = v.Text
		case KindPeriodLocation:
			period = v.Period
		case KindPriceLocation:
			locationPrice = v.Number
		case KindPricePaper:
			out.Products = append(out.Products, inventory.Product{
				Kind: inventory.ProductPaper, Price: *v.Number,
			})
		case KindPriceTarp:
			out.Products = append(out.Products, inventory.Product{
				Kind: inventory.ProductTarp, Price: *v.Number,
			})
		}
	}

	// The billing period applies to the location product only.
	if locationPrice != nil {
		out.Products = append(out.Products, inventory.Product{
			Kind: inventory.ProductLocation, Price: *locationPrice, Period: period,
		})
	}
	return out, nil
}

// DuplicateCodesInFile returns codes that appear on more than one row of
// the sheet, using the working (canonical) values of the code column.
func DuplicateCodesInFile(s *Session) []string {
	column, ok := s.Mapping.ColumnOf(KindCode)
	if !ok {
		return nil
	}
	seen := make(map[string]int)
	var duplicates []string
	for _, row := range s.Rows {
		code := row[column]
		if code == "" {
			continue
		}
		seen[code]++
		if seen[code] == 2 {
			duplicates = append(duplicates, code)
		}
	}
	return duplicates
}

// Codes returns every non-empty code in the sheet, in row order, for the
// duplicate-code preflight against the inventory store.
func Codes(s *Session) []string {
	column, ok := s.Mapping.ColumnOf(KindCode)
	if !ok {
		return nil
	}
	codes := make([]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		if code := row[column]; code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// FlagCodeCollisions marks code cells as errors when the code collides
// with the active inventory or repeats inside the file. The entries live in
// the validation table like any other error, so they gate CanProceed and
// clear naturally when the cell is edited and re-normalized.
func FlagCodeCollisions(s *Session, existing []string) int {
	column, ok := s.Mapping.ColumnOf(KindCode)
	if !ok {
		return 0
	}

	existingSet := make(map[string]struct{}, len(existing))
	for _, code := range existing {
		existingSet[code] = struct{}{}
	}
	inFile := make(map[string]struct{})
	for _, code := range DuplicateCodesInFile(s) {
		inFile[code] = struct{}{}
	}

	flagged := 0
	for rowIdx, row := range s.Rows {
		code := row[column]
		if code == "" {
			continue
		}
		if _, dup := inFile[code]; dup {
			s.Validation.Set(rowIdx, column, KindCode, failure(KindCode, "code appears more than once in this file"))
			flagged++
			continue
		}
		if _, exists := existingSet[code]; exists {
			s.Validation.Set(rowIdx, column, KindCode, failure(KindCode, "code already exists in the inventory"))
			flagged++
		}
	}
	return flagged
}
