package importer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"oohdesk/domain/inventory"
)

// Result is the outcome of normalizing one raw cell value. It is a pure
// function of (kind, raw): no hidden state, deterministic, and idempotent —
// re-normalizing a canonical value yields the same value.
type Result struct {
	OK    bool   `json:"ok"`
	Value Value  `json:"value"`
	Error string `json:"error,omitempty"`
}

// Value is the typed outcome of a successful normalization. Exactly one of
// the typed fields is populated, matching the kind; Missing marks an empty
// optional cell.
type Value struct {
	Kind        FieldKind              `json:"kind"`
	Missing     bool                   `json:"missing,omitempty"`
	Text        string                 `json:"text,omitempty"`
	Number      *float64               `json:"number,omitempty"`
	Count       *int                   `json:"count,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
	Measurement *inventory.Measurement `json:"measurement,omitempty"`
	Period      inventory.Period       `json:"period,omitempty"`
}

func success(v Value) Result {
	return Result{OK: true, Value: v}
}

func failure(kind FieldKind, msg string) Result {
	return Result{OK: false, Value: Value{Kind: kind}, Error: msg}
}

func missing(kind FieldKind) Result {
	return Result{OK: true, Value: Value{Kind: kind, Missing: true}}
}

// Normalize maps a raw spreadsheet cell to a typed, validated domain value
// for the given field kind. Errors are returned structurally; it never panics.
func Normalize(kind FieldKind, raw string) Result {
	trimmed := strings.TrimSpace(raw)

	switch kind {
	case KindIgnore:
		return success(Value{Kind: kind, Missing: trimmed == ""})
	case KindCode:
		if trimmed == "" {
			return failure(kind, "code is required")
		}
		// Codes are kept verbatim apart from trimming: exhibitors rely on
		// exact casing for cross-referencing their own inventory sheets.
		return success(Value{Kind: kind, Text: trimmed})
	case KindAddress:
		if trimmed == "" {
			return failure(kind, "address is required")
		}
		return success(Value{Kind: kind, Text: trimmed})
	case KindFreeText, KindReferencePoint:
		if trimmed == "" {
			return missing(kind)
		}
		return success(Value{Kind: kind, Text: trimmed})
	case KindLatitude:
		return normalizeCoordinate(kind, trimmed, 90)
	case KindLongitude:
		return normalizeCoordinate(kind, trimmed, 180)
	case KindMeasurement:
		return normalizeMeasurement(trimmed)
	case KindFlowCount:
		return normalizeFlowCount(trimmed)
	case KindTypeTags:
		return normalizeTypeTags(trimmed)
	case KindPriceLocation, KindPricePaper, KindPriceTarp:
		return normalizeMoney(kind, trimmed)
	case KindPeriodLocation:
		return normalizePeriod(trimmed)
	}
	return failure(kind, fmt.Sprintf("unknown field kind: %s", kind))
}

// Canonical renders the value back into its grid text form. Normalizing the
// canonical form returns an equal value.
func (v Value) Canonical() string {
	if v.Missing {
		return ""
	}
	switch v.Kind {
	case KindLatitude, KindLongitude:
		if v.Number != nil {
			return formatCoordinate(*v.Number)
		}
	case KindFlowCount:
		if v.Count != nil {
			return strconv.Itoa(*v.Count)
		}
	case KindTypeTags:
		return strings.Join(v.Tags, ", ")
	case KindMeasurement:
		if v.Measurement != nil {
			return v.Measurement.String()
		}
		return v.Text
	case KindPriceLocation, KindPricePaper, KindPriceTarp:
		if v.Number != nil {
			return strconv.FormatFloat(*v.Number, 'f', 2, 64)
		}
	case KindPeriodLocation:
		return string(v.Period)
	}
	return v.Text
}

var thousandDotPattern = regexp.MustCompile(`\.\d{3}($|\.)`)

func normalizeCoordinate(kind FieldKind, raw string, limit float64) Result {
	if raw == "" {
		return failure(kind, "coordinate is required")
	}
	str := strings.NewReplacer(`"`, "", "'", "").Replace(raw)
	str = strings.TrimSpace(str)
	if str == "" || str == "-" || str == "–" || str == "—" {
		return failure(kind, "invalid coordinate")
	}

	// A dot followed by a three-digit group is a thousands separator left
	// over from spreadsheet display formatting ("-46.655.881"), not a
	// decimal point ("-46.655881").
	if thousandDotPattern.MatchString(str) {
		str = strings.ReplaceAll(str, ".", "")
	}
	str = strings.ReplaceAll(str, ",", ".")

	num, err := strconv.ParseFloat(str, 64)
	if err != nil || math.IsInf(num, 0) || math.IsNaN(num) {
		return failure(kind, "invalid coordinate")
	}
	if num < -limit || num > limit {
		return failure(kind, fmt.Sprintf("coordinate out of range [%.0f, %.0f]", -limit, limit))
	}
	return success(Value{Kind: kind, Number: &num})
}

// formatCoordinate renders a coordinate so that re-normalizing it is stable.
// Exactly three decimal digits would re-trigger the thousands heuristic, so
// that width gets a trailing zero.
func formatCoordinate(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 == 3 {
		s += "0"
	}
	return s
}

var measurementPattern = regexp.MustCompile(`(\d+\.?\d*)\s*[xX×]\s*(\d+\.?\d*)`)
var measurementUnitPattern = regexp.MustCompile(`(?i)\s*(PIXELS?|METROS?|PX|M)\s*`)

func normalizeMeasurement(raw string) Result {
	if raw == "" {
		return missing(KindMeasurement)
	}
	clean := strings.ToUpper(raw)

	unit := inventory.UnitMeters
	if strings.Contains(clean, "PX") || strings.Contains(clean, "PIXEL") {
		unit = inventory.UnitPixels
	}
	clean = measurementUnitPattern.ReplaceAllString(clean, "")
	clean = strings.ReplaceAll(clean, ",", ".")

	match := measurementPattern.FindStringSubmatch(clean)
	if match == nil {
		// Measurement is optional: an unparseable value is carried through
		// as free text rather than rejected.
		return success(Value{Kind: KindMeasurement, Text: strings.TrimSpace(raw)})
	}

	width, err1 := strconv.ParseFloat(match[1], 64)
	height, err2 := strconv.ParseFloat(match[2], 64)
	if err1 != nil || err2 != nil {
		return success(Value{Kind: KindMeasurement, Text: strings.TrimSpace(raw)})
	}

	m := &inventory.Measurement{Width: width, Height: height, Unit: unit}
	return success(Value{Kind: KindMeasurement, Measurement: m})
}

func normalizeFlowCount(raw string) Result {
	if raw == "" {
		return missing(KindFlowCount)
	}
	negative := strings.HasPrefix(raw, "-")
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if negative {
		return failure(KindFlowCount, "flow count cannot be negative")
	}
	if digits.Len() == 0 {
		return failure(KindFlowCount, "invalid flow count")
	}
	num, err := strconv.Atoi(digits.String())
	if err != nil {
		return failure(KindFlowCount, "invalid flow count")
	}
	return success(Value{Kind: KindFlowCount, Count: &num})
}

var tagSplitPattern = regexp.MustCompile(`[,;/]|\s+e\s+`)

func normalizeTypeTags(raw string) Result {
	if raw == "" {
		return success(Value{Kind: KindTypeTags, Missing: true, Tags: []string{}})
	}
	parts := tagSplitPattern.Split(raw, -1)
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tags = append(tags, canonicalTag(part))
	}
	if len(tags) == 0 {
		return success(Value{Kind: KindTypeTags, Missing: true, Tags: []string{}})
	}
	return success(Value{Kind: KindTypeTags, Tags: tags})
}

func normalizeMoney(kind FieldKind, raw string) Result {
	if raw == "" {
		return missing(kind)
	}
	str := strings.NewReplacer("R$", "", "$", "", " ", "", " ", "").Replace(raw)

	hasComma := strings.Contains(str, ",")
	hasDot := strings.Contains(str, ".")
	switch {
	case hasComma && hasDot:
		// Brazilian format: 5.000,00
		str = strings.ReplaceAll(str, ".", "")
		str = strings.ReplaceAll(str, ",", ".")
	case hasComma:
		str = strings.ReplaceAll(str, ",", ".")
	case hasDot:
		// Trailing three-digit group is a thousands separator: 18.000
		if regexp.MustCompile(`\.\d{3}$`).MatchString(str) {
			str = strings.ReplaceAll(str, ".", "")
		}
	}

	num, err := strconv.ParseFloat(str, 64)
	if err != nil || math.IsInf(num, 0) || math.IsNaN(num) {
		return failure(kind, "invalid price")
	}
	if num < 0 {
		return failure(kind, "price cannot be negative")
	}
	rounded := math.Round(num*100) / 100
	return success(Value{Kind: kind, Number: &rounded})
}

func normalizePeriod(raw string) Result {
	if raw == "" {
		return missing(KindPeriodLocation)
	}
	s := foldAccents(strings.ToLower(raw))
	switch {
	// "semanal" alone is not a valid period: weekly billing does not exist
	// for location products, only the bi-weekly cycle does.
	case strings.Contains(s, "bi"),
		strings.Contains(s, "quinzen"),
		strings.Contains(s, "15 dia"),
		strings.Contains(s, "15dia"):
		return success(Value{Kind: KindPeriodLocation, Period: inventory.PeriodBiweekly})
	case strings.Contains(s, "mensal"),
		strings.Contains(s, "mes"),
		strings.Contains(s, "month"),
		strings.Contains(s, "30 dia"):
		return success(Value{Kind: KindPeriodLocation, Period: inventory.PeriodMonthly})
	case strings.Contains(s, "unit"), strings.Contains(s, "unidade"), strings.Contains(s, "unitario"):
		return success(Value{Kind: KindPeriodLocation, Period: inventory.PeriodUnit})
	}
	return failure(KindPeriodLocation, fmt.Sprintf("unknown billing period: %q", strings.TrimSpace(raw)))
}

// foldAccents strips combining marks so "rodoviário" matches "rodoviario".
func foldAccents(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
